package storage

import (
	"context"

	"github.com/KingdomVR/kvr-go-database/internal/model"
)

// Mutator adjusts an account in place inside a version-checked update.
// It must not change Username; a resulting negative balance aborts the
// commit with ErrInsufficientFunds.
type Mutator func(acct *model.Account) error

// PairMutator adjusts two accounts in place inside a single atomic commit.
// Accounts are passed in the order the caller named them, not lock order.
type PairMutator func(first, second *model.Account) error

// AccountStore defines the interface for account persistence.
//
// Every write is transactional: the account record and the PIN index
// (pin -> username) change together or not at all. Version-checked
// updates fail with model.ErrConflict when the stored version no longer
// matches the expected one, and callers are expected to re-read and
// retry.
type AccountStore interface {
	// Account operations
	CreateAccount(ctx context.Context, acct *model.Account) error
	GetAccount(ctx context.Context, username model.Username) (*model.Account, error)
	DeleteAccount(ctx context.Context, username model.Username) error
	ListAccounts(ctx context.Context) ([]*model.Account, error)

	// PIN index operations
	LookupPIN(ctx context.Context, pin string) (model.Username, error)

	// UpdateAccount applies mutate to the account under optimistic
	// concurrency control. If mutate changes the PIN, the index entry is
	// reassigned in the same transaction and the update fails with
	// model.ErrPinInUse when the new PIN belongs to a different account.
	UpdateAccount(ctx context.Context, username model.Username, expectedVersion uint64, mutate Mutator) (*model.Account, error)

	// UpdateAccountPair applies mutate to both accounts as one atomic
	// commit; either both updated records become visible or neither
	// does. Implementations acquire keys in lexicographic username
	// order regardless of argument order. PIN changes are not permitted
	// through this path.
	UpdateAccountPair(ctx context.Context, first model.Username, firstVersion uint64, second model.Username, secondVersion uint64, mutate PairMutator) (*model.Account, *model.Account, error)
}
