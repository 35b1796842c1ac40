package transfer

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sethvargo/go-retry"

	"github.com/KingdomVR/kvr-go-database/internal/dependencies/clock"
	"github.com/KingdomVR/kvr-go-database/internal/model"
	"github.com/KingdomVR/kvr-go-database/internal/observability"
	"github.com/KingdomVR/kvr-go-database/internal/services/auth"
	"github.com/KingdomVR/kvr-go-database/internal/storage"
)

// DefaultMaxAttempts bounds the optimistic retry loop for one transfer.
const DefaultMaxAttempts = 5

// Service executes coin transfers between accounts as atomic units
type Service struct {
	store    storage.AccountStore
	sessions *auth.Service
	clock    clock.Clock
	logger   *slog.Logger

	maxAttempts uint64
}

// Config holds configuration for the transfer service
type Config struct {
	// MaxAttempts caps how often a conflicting transfer is retried
	// before ErrTransferFailed is surfaced. Zero means DefaultMaxAttempts.
	MaxAttempts uint64
}

// New creates a new transfer Service
func New(store storage.AccountStore, sessions *auth.Service, clk clock.Clock, cfg Config, logger *slog.Logger) *Service {
	attempts := cfg.MaxAttempts
	if attempts == 0 {
		attempts = DefaultMaxAttempts
	}
	return &Service{
		store:       store,
		sessions:    sessions,
		clock:       clk,
		logger:      logger,
		maxAttempts: attempts,
	}
}

// Transfer moves amount coins from the session's account to the named
// recipient. The two balance changes commit as one transaction; a
// conflicting concurrent writer aborts the attempt, and the whole
// read-verify-write cycle is retried with fresh versions up to the
// configured bound. On success the refreshed sender account is returned.
func (s *Service) Transfer(ctx context.Context, token string, to model.Username, amount float64) (*model.Account, error) {
	session, err := s.sessions.Verify(token)
	if err != nil {
		return nil, err
	}

	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		observability.RecordTransfer("invalid")
		return nil, model.ErrInvalidTransfer
	}
	if to == session.Username {
		observability.RecordTransfer("invalid")
		return nil, model.ErrInvalidTransfer
	}

	transferID := ulid.Make().String()

	var sender *model.Account
	backoff := retry.WithMaxRetries(s.maxAttempts-1, retry.NewConstant(2*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		from, err := s.store.GetAccount(ctx, session.Username)
		if err != nil {
			return err
		}
		recipient, err := s.store.GetAccount(ctx, to)
		if err != nil {
			return err
		}

		if from.Balance < amount {
			return model.ErrInsufficientFunds
		}

		now := s.clock.Now()
		updated, _, err := s.store.UpdateAccountPair(ctx,
			from.Username, from.Version,
			recipient.Username, recipient.Version,
			func(src, dst *model.Account) error {
				src.Balance -= amount
				dst.Balance += amount
				src.UpdatedAt = now
				dst.UpdatedAt = now
				return nil
			})
		if err != nil {
			if errors.Is(err, model.ErrConflict) {
				observability.RecordTransferConflict()
				return retry.RetryableError(err)
			}
			return err
		}

		sender = updated
		return nil
	})
	if err != nil {
		outcome := "error"
		switch {
		case errors.Is(err, model.ErrConflict):
			// Retry budget spent; surface as terminal
			err = model.ErrTransferFailed
			outcome = "conflict_exhausted"
		case errors.Is(err, model.ErrInsufficientFunds):
			outcome = "insufficient_funds"
		case errors.Is(err, model.ErrAccountNotFound):
			outcome = "not_found"
		}
		observability.RecordTransfer(outcome)
		return nil, err
	}

	observability.RecordTransfer("success")
	s.logger.Info("transfer committed",
		slog.String("transfer_id", transferID),
		slog.String("from", string(session.Username)),
		slog.String("to", string(to)),
		slog.Float64("amount", amount),
	)
	return sender, nil
}
