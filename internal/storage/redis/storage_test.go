package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/KingdomVR/kvr-go-database/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) newAccount(username, pin string, balance float64) *model.Account {
	return &model.Account{
		Username:  model.Username(username),
		PIN:       pin,
		Balance:   balance,
		CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Create / Get tests

func (s *StorageSuite) TestCreateAndGetAccount() {
	err := s.storage.CreateAccount(s.ctx, s.newAccount("alice", "1234", 100))
	s.Require().NoError(err)

	acct, err := s.storage.GetAccount(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.Username("alice"), acct.Username)
	s.Equal("1234", acct.PIN)
	s.Equal(100.0, acct.Balance)
	s.Equal(uint64(1), acct.Version)
}

func (s *StorageSuite) TestCreateDuplicateUsername() {
	_ = s.storage.CreateAccount(s.ctx, s.newAccount("alice", "1234", 100))

	err := s.storage.CreateAccount(s.ctx, s.newAccount("alice", "5678", 50))
	s.ErrorIs(err, model.ErrAccountExists)
}

func (s *StorageSuite) TestCreateDuplicatePIN() {
	_ = s.storage.CreateAccount(s.ctx, s.newAccount("alice", "1234", 100))

	err := s.storage.CreateAccount(s.ctx, s.newAccount("bob", "1234", 50))
	s.ErrorIs(err, model.ErrPinInUse)
}

func (s *StorageSuite) TestGetAccountNotFound() {
	_, err := s.storage.GetAccount(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

// Delete tests

func (s *StorageSuite) TestDeleteAccount() {
	_ = s.storage.CreateAccount(s.ctx, s.newAccount("alice", "1234", 100))

	err := s.storage.DeleteAccount(s.ctx, "alice")
	s.Require().NoError(err)

	_, err = s.storage.GetAccount(s.ctx, "alice")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StorageSuite) TestDeleteAccountFreesPIN() {
	_ = s.storage.CreateAccount(s.ctx, s.newAccount("alice", "1234", 100))
	_ = s.storage.DeleteAccount(s.ctx, "alice")

	_, err := s.storage.LookupPIN(s.ctx, "1234")
	s.ErrorIs(err, model.ErrPinNotFound)

	err = s.storage.CreateAccount(s.ctx, s.newAccount("bob", "1234", 50))
	s.NoError(err)
}

func (s *StorageSuite) TestDeleteAccountNotFound() {
	err := s.storage.DeleteAccount(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

// List / PIN index tests

func (s *StorageSuite) TestListAccounts() {
	_ = s.storage.CreateAccount(s.ctx, s.newAccount("alice", "1234", 100))
	_ = s.storage.CreateAccount(s.ctx, s.newAccount("bob", "5678", 50))

	accounts, err := s.storage.ListAccounts(s.ctx)
	s.Require().NoError(err)
	s.Len(accounts, 2)
}

func (s *StorageSuite) TestListAccountsEmpty() {
	accounts, err := s.storage.ListAccounts(s.ctx)
	s.Require().NoError(err)
	s.Empty(accounts)
}

func (s *StorageSuite) TestLookupPIN() {
	_ = s.storage.CreateAccount(s.ctx, s.newAccount("alice", "1234", 100))

	username, err := s.storage.LookupPIN(s.ctx, "1234")
	s.Require().NoError(err)
	s.Equal(model.Username("alice"), username)
}

func (s *StorageSuite) TestLookupPINNotFound() {
	_, err := s.storage.LookupPIN(s.ctx, "0000")
	s.ErrorIs(err, model.ErrPinNotFound)
}

// UpdateAccount tests

func (s *StorageSuite) TestUpdateAccount() {
	_ = s.storage.CreateAccount(s.ctx, s.newAccount("alice", "1234", 100))

	updated, err := s.storage.UpdateAccount(s.ctx, "alice", 1, func(a *model.Account) error {
		a.Balance = 75
		return nil
	})
	s.Require().NoError(err)
	s.Equal(75.0, updated.Balance)
	s.Equal(uint64(2), updated.Version)

	acct, _ := s.storage.GetAccount(s.ctx, "alice")
	s.Equal(75.0, acct.Balance)
}

func (s *StorageSuite) TestUpdateAccountVersionMismatch() {
	_ = s.storage.CreateAccount(s.ctx, s.newAccount("alice", "1234", 100))

	_, err := s.storage.UpdateAccount(s.ctx, "alice", 7, func(a *model.Account) error {
		a.Balance = 75
		return nil
	})
	s.ErrorIs(err, model.ErrConflict)
}

func (s *StorageSuite) TestUpdateAccountNotFound() {
	_, err := s.storage.UpdateAccount(s.ctx, "nonexistent", 1, func(a *model.Account) error {
		return nil
	})
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StorageSuite) TestUpdateAccountRejectsNegativeBalance() {
	_ = s.storage.CreateAccount(s.ctx, s.newAccount("alice", "1234", 100))

	_, err := s.storage.UpdateAccount(s.ctx, "alice", 1, func(a *model.Account) error {
		a.Balance = -1
		return nil
	})
	s.ErrorIs(err, model.ErrInsufficientFunds)

	acct, _ := s.storage.GetAccount(s.ctx, "alice")
	s.Equal(100.0, acct.Balance)
}

func (s *StorageSuite) TestUpdateAccountReassignsPIN() {
	_ = s.storage.CreateAccount(s.ctx, s.newAccount("alice", "1234", 100))

	_, err := s.storage.UpdateAccount(s.ctx, "alice", 1, func(a *model.Account) error {
		a.PIN = "9999"
		return nil
	})
	s.Require().NoError(err)

	username, err := s.storage.LookupPIN(s.ctx, "9999")
	s.Require().NoError(err)
	s.Equal(model.Username("alice"), username)

	_, err = s.storage.LookupPIN(s.ctx, "1234")
	s.ErrorIs(err, model.ErrPinNotFound)
}

func (s *StorageSuite) TestUpdateAccountPINInUse() {
	_ = s.storage.CreateAccount(s.ctx, s.newAccount("alice", "1234", 100))
	_ = s.storage.CreateAccount(s.ctx, s.newAccount("bob", "5678", 50))

	_, err := s.storage.UpdateAccount(s.ctx, "alice", 1, func(a *model.Account) error {
		a.PIN = "5678"
		return nil
	})
	s.ErrorIs(err, model.ErrPinInUse)

	username, _ := s.storage.LookupPIN(s.ctx, "1234")
	s.Equal(model.Username("alice"), username)
}

func (s *StorageSuite) TestUpdateAccountMutatorError() {
	_ = s.storage.CreateAccount(s.ctx, s.newAccount("alice", "1234", 100))

	_, err := s.storage.UpdateAccount(s.ctx, "alice", 1, func(a *model.Account) error {
		return model.ErrInvalidAmount
	})
	s.ErrorIs(err, model.ErrInvalidAmount)
}

// UpdateAccountPair tests

func (s *StorageSuite) TestUpdateAccountPair() {
	_ = s.storage.CreateAccount(s.ctx, s.newAccount("alice", "1234", 100))
	_ = s.storage.CreateAccount(s.ctx, s.newAccount("bob", "5678", 50))

	sender, recipient, err := s.storage.UpdateAccountPair(s.ctx, "alice", 1, "bob", 1,
		func(from, to *model.Account) error {
			from.Balance -= 30
			to.Balance += 30
			return nil
		})
	s.Require().NoError(err)
	s.Equal(70.0, sender.Balance)
	s.Equal(80.0, recipient.Balance)
	s.Equal(uint64(2), sender.Version)
	s.Equal(uint64(2), recipient.Version)

	alice, _ := s.storage.GetAccount(s.ctx, "alice")
	bob, _ := s.storage.GetAccount(s.ctx, "bob")
	s.Equal(70.0, alice.Balance)
	s.Equal(80.0, bob.Balance)
}

func (s *StorageSuite) TestUpdateAccountPairVersionMismatch() {
	_ = s.storage.CreateAccount(s.ctx, s.newAccount("alice", "1234", 100))
	_ = s.storage.CreateAccount(s.ctx, s.newAccount("bob", "5678", 50))

	_, _, err := s.storage.UpdateAccountPair(s.ctx, "alice", 1, "bob", 3,
		func(from, to *model.Account) error {
			return nil
		})
	s.ErrorIs(err, model.ErrConflict)
}

func (s *StorageSuite) TestUpdateAccountPairRejectsOverdraft() {
	_ = s.storage.CreateAccount(s.ctx, s.newAccount("alice", "1234", 20))
	_ = s.storage.CreateAccount(s.ctx, s.newAccount("bob", "5678", 50))

	_, _, err := s.storage.UpdateAccountPair(s.ctx, "alice", 1, "bob", 1,
		func(from, to *model.Account) error {
			from.Balance -= 30
			to.Balance += 30
			return nil
		})
	s.ErrorIs(err, model.ErrInsufficientFunds)

	alice, _ := s.storage.GetAccount(s.ctx, "alice")
	bob, _ := s.storage.GetAccount(s.ctx, "bob")
	s.Equal(20.0, alice.Balance)
	s.Equal(50.0, bob.Balance)
}

func (s *StorageSuite) TestUpdateAccountPairPINImmutable() {
	_ = s.storage.CreateAccount(s.ctx, s.newAccount("alice", "1234", 100))
	_ = s.storage.CreateAccount(s.ctx, s.newAccount("bob", "5678", 50))

	sender, _, err := s.storage.UpdateAccountPair(s.ctx, "alice", 1, "bob", 1,
		func(from, to *model.Account) error {
			from.PIN = "0000"
			return nil
		})
	s.Require().NoError(err)
	s.Equal("1234", sender.PIN)

	username, _ := s.storage.LookupPIN(s.ctx, "1234")
	s.Equal(model.Username("alice"), username)
}
