package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KingdomVR/kvr-go-database/internal/dependencies/mocks"
	"github.com/KingdomVR/kvr-go-database/internal/model"
	"github.com/KingdomVR/kvr-go-database/internal/storage/memory"
	"github.com/KingdomVR/kvr-go-database/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, DefaultConfig(), testutil.NopLogger())
	s.ctx = context.Background()

	s.createAccount("alice", "1234", 100)
	s.createAccount("bob", "5678", 50)
}

func (s *ServiceSuite) createAccount(username, pin string, balance float64) {
	err := s.storage.CreateAccount(s.ctx, &model.Account{
		Username:  model.Username(username),
		PIN:       pin,
		Balance:   balance,
		CreatedAt: s.clock.Now(),
		UpdatedAt: s.clock.Now(),
	})
	s.Require().NoError(err)
}

// Authenticate tests

func (s *ServiceSuite) TestAuthenticateSucceeds() {
	session, acct, err := s.service.Authenticate(s.ctx, "alice", "1234")
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.Equal(model.Username("alice"), session.Username)
	s.Equal(100.0, acct.Balance)
}

func (s *ServiceSuite) TestAuthenticateUnknownPIN() {
	_, _, err := s.service.Authenticate(s.ctx, "alice", "0000")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestAuthenticateWrongAccountPIN() {
	// Bob's PIN with alice's username must fail identically to a
	// nonexistent PIN
	_, _, err := s.service.Authenticate(s.ctx, "alice", "5678")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestAuthenticateUnknownUsername() {
	_, _, err := s.service.Authenticate(s.ctx, "mallory", "1234")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestAuthenticateSessionIsValid() {
	session, _, _ := s.service.Authenticate(s.ctx, "alice", "1234")

	verified, err := s.service.Verify(session.Token)
	s.Require().NoError(err)
	s.Equal(model.Username("alice"), verified.Username)
}

// Verify tests

func (s *ServiceSuite) TestVerifyUnknownToken() {
	_, err := s.service.Verify("sess_bogus")
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestVerifyExpiredSession() {
	session, _, _ := s.service.Authenticate(s.ctx, "alice", "1234")

	s.clock.Advance(25 * time.Hour)

	_, err := s.service.Verify(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestVerifySessionValidUntilExpiry() {
	session, _, _ := s.service.Authenticate(s.ctx, "alice", "1234")

	s.clock.Advance(23 * time.Hour)

	_, err := s.service.Verify(session.Token)
	s.NoError(err)
}

// Revoke tests

func (s *ServiceSuite) TestRevoke() {
	session, _, _ := s.service.Authenticate(s.ctx, "alice", "1234")

	s.service.Revoke(session.Token)

	_, err := s.service.Verify(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestRevokeIsIdempotent() {
	session, _, _ := s.service.Authenticate(s.ctx, "alice", "1234")

	s.service.Revoke(session.Token)
	s.service.Revoke(session.Token)
	s.service.Revoke("sess_bogus")
}

// GetAccount tests

func (s *ServiceSuite) TestGetAccount() {
	session, _, _ := s.service.Authenticate(s.ctx, "alice", "1234")

	acct, err := s.service.GetAccount(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal(model.Username("alice"), acct.Username)
	s.Equal(100.0, acct.Balance)
}

func (s *ServiceSuite) TestGetAccountInvalidSession() {
	_, err := s.service.GetAccount(s.ctx, "sess_bogus")
	s.ErrorIs(err, ErrInvalidSession)
}

// ChangePIN tests

func (s *ServiceSuite) TestChangePIN() {
	session, _, _ := s.service.Authenticate(s.ctx, "alice", "1234")

	updated, err := s.service.ChangePIN(s.ctx, session.Token, "1234", "9999")
	s.Require().NoError(err)
	s.Equal("9999", updated.PIN)

	// New PIN resolves to alice, old one is gone
	username, err := s.storage.LookupPIN(s.ctx, "9999")
	s.Require().NoError(err)
	s.Equal(model.Username("alice"), username)

	_, err = s.storage.LookupPIN(s.ctx, "1234")
	s.ErrorIs(err, model.ErrPinNotFound)
}

func (s *ServiceSuite) TestChangePINOldLoginStopsWorking() {
	session, _, _ := s.service.Authenticate(s.ctx, "alice", "1234")
	_, err := s.service.ChangePIN(s.ctx, session.Token, "1234", "9999")
	s.Require().NoError(err)

	_, _, err = s.service.Authenticate(s.ctx, "alice", "1234")
	s.ErrorIs(err, ErrInvalidCredentials)

	_, _, err = s.service.Authenticate(s.ctx, "alice", "9999")
	s.NoError(err)
}

func (s *ServiceSuite) TestChangePINWrongOldPIN() {
	session, _, _ := s.service.Authenticate(s.ctx, "alice", "1234")

	_, err := s.service.ChangePIN(s.ctx, session.Token, "4321", "9999")
	s.ErrorIs(err, ErrInvalidCredentials)

	// PIN unchanged
	username, _ := s.storage.LookupPIN(s.ctx, "1234")
	s.Equal(model.Username("alice"), username)
}

func (s *ServiceSuite) TestChangePINTakenByAnotherAccount() {
	session, _, _ := s.service.Authenticate(s.ctx, "alice", "1234")

	_, err := s.service.ChangePIN(s.ctx, session.Token, "1234", "5678")
	s.ErrorIs(err, model.ErrPinInUse)
}

func (s *ServiceSuite) TestChangePINInvalidFormat() {
	session, _, _ := s.service.Authenticate(s.ctx, "alice", "1234")

	_, err := s.service.ChangePIN(s.ctx, session.Token, "1234", "12")
	s.ErrorIs(err, model.ErrInvalidPIN)

	_, err = s.service.ChangePIN(s.ctx, session.Token, "1234", "abcd")
	s.ErrorIs(err, model.ErrInvalidPIN)
}

func (s *ServiceSuite) TestChangePINInvalidSession() {
	_, err := s.service.ChangePIN(s.ctx, "sess_bogus", "1234", "9999")
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestChangePINSessionSurvives() {
	session, _, _ := s.service.Authenticate(s.ctx, "alice", "1234")
	_, err := s.service.ChangePIN(s.ctx, session.Token, "1234", "9999")
	s.Require().NoError(err)

	_, err = s.service.Verify(session.Token)
	s.NoError(err)
}

// CleanExpiredSessions tests

func (s *ServiceSuite) TestCleanExpiredSessions() {
	stale, _, _ := s.service.Authenticate(s.ctx, "alice", "1234")

	s.clock.Advance(25 * time.Hour)
	fresh, _, _ := s.service.Authenticate(s.ctx, "bob", "5678")

	s.service.CleanExpiredSessions()

	_, err := s.service.Verify(stale.Token)
	s.ErrorIs(err, ErrInvalidSession)

	_, err = s.service.Verify(fresh.Token)
	s.NoError(err)
}
