package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/KingdomVR/kvr-go-database/internal/dependencies/clock"
	"github.com/KingdomVR/kvr-go-database/internal/model"
	"github.com/KingdomVR/kvr-go-database/internal/storage"
)

// maxUpdateAttempts bounds the optimistic retry loop for admin updates.
const maxUpdateAttempts = 5

// Service provisions and removes accounts. It sits outside the
// authenticated flow: callers are trusted administrative collaborators.
type Service struct {
	store  storage.AccountStore
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a new registry Service
func New(store storage.AccountStore, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		clock:  clk,
		logger: logger,
	}
}

// Register creates a new account with the given starting balance and score
func (s *Service) Register(ctx context.Context, username model.Username, pin string, balance float64, score int64) (*model.Account, error) {
	if err := model.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := model.ValidatePIN(pin); err != nil {
		return nil, err
	}
	if math.IsNaN(balance) || math.IsInf(balance, 0) || balance < 0 {
		return nil, fmt.Errorf("%w: starting balance must be a non-negative number", model.ErrInvalidAmount)
	}
	if score < 0 {
		return nil, fmt.Errorf("%w: starting score must be non-negative", model.ErrInvalidAmount)
	}

	now := s.clock.Now()
	acct := &model.Account{
		Username:  username,
		PIN:       pin,
		Balance:   balance,
		Score:     score,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateAccount(ctx, acct); err != nil {
		return nil, err
	}

	created, err := s.store.GetAccount(ctx, username)
	if err != nil {
		return nil, err
	}

	s.logger.Info("account registered", slog.String("username", string(username)))
	return created, nil
}

// AccountUpdate names the fields an administrative update may change.
// Nil fields are left untouched.
type AccountUpdate struct {
	PIN     *string
	Balance *float64
	Score   *int64
}

// Update applies an administrative field update to an account. This is
// the write path for external collaborators that record game results:
// score changes land here. A PIN reassignment goes through the same
// transactional index maintenance as a user-initiated PIN change, and
// conflicting writers are retried with fresh state.
func (s *Service) Update(ctx context.Context, username model.Username, upd AccountUpdate) (*model.Account, error) {
	if upd.PIN == nil && upd.Balance == nil && upd.Score == nil {
		return nil, fmt.Errorf("%w: no fields to update", model.ErrInvalidAmount)
	}
	if upd.PIN != nil {
		if err := model.ValidatePIN(*upd.PIN); err != nil {
			return nil, err
		}
	}
	if upd.Balance != nil {
		if math.IsNaN(*upd.Balance) || math.IsInf(*upd.Balance, 0) || *upd.Balance < 0 {
			return nil, fmt.Errorf("%w: balance must be a non-negative number", model.ErrInvalidAmount)
		}
	}
	if upd.Score != nil && *upd.Score < 0 {
		return nil, fmt.Errorf("%w: score must be non-negative", model.ErrInvalidAmount)
	}

	var updated *model.Account
	backoff := retry.WithMaxRetries(maxUpdateAttempts-1, retry.NewConstant(2*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		acct, err := s.store.GetAccount(ctx, username)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		updated, err = s.store.UpdateAccount(ctx, username, acct.Version, func(a *model.Account) error {
			if upd.PIN != nil {
				a.PIN = *upd.PIN
			}
			if upd.Balance != nil {
				a.Balance = *upd.Balance
			}
			if upd.Score != nil {
				a.Score = *upd.Score
			}
			a.UpdatedAt = now
			return nil
		})
		if errors.Is(err, model.ErrConflict) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account updated", slog.String("username", string(username)))
	return updated, nil
}

// Remove deletes an account and its PIN index entry
func (s *Service) Remove(ctx context.Context, username model.Username) error {
	if err := s.store.DeleteAccount(ctx, username); err != nil {
		return err
	}
	s.logger.Info("account removed", slog.String("username", string(username)))
	return nil
}

// Lookup returns an account by username
func (s *Service) Lookup(ctx context.Context, username model.Username) (*model.Account, error) {
	return s.store.GetAccount(ctx, username)
}
