package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sethvargo/go-retry"

	"github.com/KingdomVR/kvr-go-database/internal/dependencies/clock"
	"github.com/KingdomVR/kvr-go-database/internal/model"
	"github.com/KingdomVR/kvr-go-database/internal/observability"
	"github.com/KingdomVR/kvr-go-database/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

// maxPinChangeAttempts bounds the optimistic retry loop for PIN changes.
const maxPinChangeAttempts = 5

// Session represents an authenticated session.
// Sessions live only in process memory and do not survive a restart.
type Session struct {
	Token     string
	Username  model.Username
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service handles PIN authentication and session management
type Service struct {
	store  storage.AccountStore
	clock  clock.Clock
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	sessionDuration time.Duration
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
	}
}

// New creates a new auth Service
func New(store storage.AccountStore, clk clock.Clock, cfg Config, logger *slog.Logger) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	return &Service{
		store:           store,
		clock:           clk,
		logger:          logger,
		sessions:        make(map[string]*Session),
		sessionDuration: cfg.SessionDuration,
	}
}

// Authenticate resolves the PIN through the index, loads the account, and
// issues a session when the resolved identity matches the supplied
// username. "PIN unknown" and "PIN belongs to a different account" are
// deliberately indistinguishable so callers cannot enumerate accounts.
func (s *Service) Authenticate(ctx context.Context, username model.Username, pin string) (*Session, *model.Account, error) {
	resolved, err := s.store.LookupPIN(ctx, pin)
	if err != nil {
		if errors.Is(err, model.ErrPinNotFound) {
			observability.RecordLogin("invalid_credentials")
			return nil, nil, ErrInvalidCredentials
		}
		observability.RecordLogin("error")
		return nil, nil, err
	}

	if resolved != username {
		observability.RecordLogin("invalid_credentials")
		return nil, nil, ErrInvalidCredentials
	}

	acct, err := s.store.GetAccount(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			// Stale index entry; treat like a bad PIN
			observability.RecordLogin("invalid_credentials")
			return nil, nil, ErrInvalidCredentials
		}
		observability.RecordLogin("error")
		return nil, nil, err
	}

	if subtle.ConstantTimeCompare([]byte(acct.PIN), []byte(pin)) != 1 {
		observability.RecordLogin("invalid_credentials")
		return nil, nil, ErrInvalidCredentials
	}

	session := s.createSession(username)
	observability.RecordLogin("success")
	s.logger.Info("session issued", slog.String("username", string(username)))
	return session, acct, nil
}

// Verify checks a session token and returns the session it belongs to.
// Expired sessions are evicted on access.
func (s *Service) Verify(token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		if _, still := s.sessions[token]; still {
			delete(s.sessions, token)
			observability.SessionClosed()
		}
		s.mu.Unlock()
		return nil, ErrInvalidSession
	}

	return session, nil
}

// Revoke removes a session. Revoking an unknown or already-revoked token
// is a no-op.
func (s *Service) Revoke(token string) {
	s.mu.Lock()
	if _, ok := s.sessions[token]; ok {
		delete(s.sessions, token)
		observability.SessionClosed()
	}
	s.mu.Unlock()
}

// ChangePIN re-verifies oldPIN against the session's own account before
// reassigning the PIN. The account update and the index reassignment
// commit in one transaction; conflicts are retried with fresh state up
// to a bounded number of attempts.
func (s *Service) ChangePIN(ctx context.Context, token, oldPIN, newPIN string) (*model.Account, error) {
	session, err := s.Verify(token)
	if err != nil {
		return nil, err
	}

	if err := model.ValidatePIN(newPIN); err != nil {
		return nil, err
	}

	var updated *model.Account
	backoff := retry.WithMaxRetries(maxPinChangeAttempts-1, retry.NewConstant(2*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		acct, err := s.store.GetAccount(ctx, session.Username)
		if err != nil {
			return err
		}

		// The old PIN must belong to the authenticated account itself,
		// not merely to some account
		if subtle.ConstantTimeCompare([]byte(acct.PIN), []byte(oldPIN)) != 1 {
			return ErrInvalidCredentials
		}

		now := s.clock.Now()
		updated, err = s.store.UpdateAccount(ctx, session.Username, acct.Version, func(a *model.Account) error {
			a.PIN = newPIN
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

	s.logger.Info("pin changed", slog.String("username", string(session.Username)))
	return updated, nil
}

// GetAccount returns a fresh copy of the session's own account
func (s *Service) GetAccount(ctx context.Context, token string) (*model.Account, error) {
	session, err := s.Verify(token)
	if err != nil {
		return nil, err
	}
	return s.store.GetAccount(ctx, session.Username)
}

// createSession creates and registers a new session
func (s *Service) createSession(username model.Username) *Session {
	now := s.clock.Now()
	session := &Session{
		Token:     "sess_" + ulid.Make().String(),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()
	observability.SessionOpened()

	return session
}

// CleanExpiredSessions removes expired sessions (call periodically)
func (s *Service) CleanExpiredSessions() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
			observability.SessionClosed()
		}
	}
}
