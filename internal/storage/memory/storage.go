package memory

import (
	"context"
	"sync"

	"github.com/KingdomVR/kvr-go-database/internal/model"
	"github.com/KingdomVR/kvr-go-database/internal/storage"
)

// Storage is an in-memory implementation of the account store.
//
// A single mutex guards both the account map and the PIN index, so every
// write is trivially transactional. Accounts are copied on the way in and
// out; callers never share memory with the store.
type Storage struct {
	mu sync.RWMutex

	accounts map[model.Username]*model.Account
	pinIndex map[string]model.Username
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		accounts: make(map[model.Username]*model.Account),
		pinIndex: make(map[string]model.Username),
	}
}

// Ensure Storage implements the interface
var _ storage.AccountStore = (*Storage)(nil)

func (s *Storage) CreateAccount(ctx context.Context, acct *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[acct.Username]; ok {
		return model.ErrAccountExists
	}
	if owner, ok := s.pinIndex[acct.PIN]; ok && owner != acct.Username {
		return model.ErrPinInUse
	}

	stored := *acct
	if stored.Version == 0 {
		stored.Version = 1
	}
	s.accounts[stored.Username] = &stored
	s.pinIndex[stored.PIN] = stored.Username
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, username model.Username) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[username]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	out := *acct
	return &out, nil
}

func (s *Storage) DeleteAccount(ctx context.Context, username model.Username) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[username]
	if !ok {
		return model.ErrAccountNotFound
	}
	delete(s.pinIndex, acct.PIN)
	delete(s.accounts, username)
	return nil
}

func (s *Storage) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]*model.Account, 0, len(s.accounts))
	for _, acct := range s.accounts {
		out := *acct
		accounts = append(accounts, &out)
	}
	return accounts, nil
}

func (s *Storage) LookupPIN(ctx context.Context, pin string) (model.Username, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	username, ok := s.pinIndex[pin]
	if !ok {
		return "", model.ErrPinNotFound
	}
	return username, nil
}

func (s *Storage) UpdateAccount(ctx context.Context, username model.Username, expectedVersion uint64, mutate storage.Mutator) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.accounts[username]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	if current.Version != expectedVersion {
		return nil, model.ErrConflict
	}

	next := *current
	if err := mutate(&next); err != nil {
		return nil, err
	}
	next.Username = current.Username // immutable
	if next.Balance < 0 {
		return nil, model.ErrInsufficientFunds
	}

	if next.PIN != current.PIN {
		if owner, ok := s.pinIndex[next.PIN]; ok && owner != username {
			return nil, model.ErrPinInUse
		}
		delete(s.pinIndex, current.PIN)
		s.pinIndex[next.PIN] = username
	}

	next.Version = current.Version + 1
	s.accounts[username] = &next

	out := next
	return &out, nil
}

func (s *Storage) UpdateAccountPair(ctx context.Context, first model.Username, firstVersion uint64, second model.Username, secondVersion uint64, mutate storage.PairMutator) (*model.Account, *model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[first]
	if !ok {
		return nil, nil, model.ErrAccountNotFound
	}
	b, ok := s.accounts[second]
	if !ok {
		return nil, nil, model.ErrAccountNotFound
	}
	if a.Version != firstVersion || b.Version != secondVersion {
		return nil, nil, model.ErrConflict
	}

	nextA, nextB := *a, *b
	if err := mutate(&nextA, &nextB); err != nil {
		return nil, nil, err
	}
	// Identity and PIN are off-limits through the pair path
	nextA.Username, nextA.PIN = a.Username, a.PIN
	nextB.Username, nextB.PIN = b.Username, b.PIN
	if nextA.Balance < 0 || nextB.Balance < 0 {
		return nil, nil, model.ErrInsufficientFunds
	}

	nextA.Version = a.Version + 1
	nextB.Version = b.Version + 1
	s.accounts[first] = &nextA
	s.accounts[second] = &nextB

	outA, outB := nextA, nextB
	return &outA, &outB, nil
}
