package leaderboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KingdomVR/kvr-go-database/internal/model"
	"github.com/KingdomVR/kvr-go-database/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.service = New(s.storage)
	s.ctx = context.Background()
}

func (s *ServiceSuite) createAccount(username, pin string, score int64) {
	err := s.storage.CreateAccount(s.ctx, &model.Account{
		Username: model.Username(username),
		PIN:      pin,
		Score:    score,
	})
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestSnapshotRanksByScore() {
	s.createAccount("alice", "1234", 10)
	s.createAccount("bob", "5678", 30)
	s.createAccount("carol", "9012", 20)

	entries, err := s.service.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)

	s.Equal(model.Username("bob"), entries[0].Username)
	s.Equal(int64(30), entries[0].Score)
	s.Equal(model.Username("carol"), entries[1].Username)
	s.Equal(model.Username("alice"), entries[2].Username)
}

func (s *ServiceSuite) TestSnapshotBreaksTiesByUsername() {
	s.createAccount("carol", "9012", 20)
	s.createAccount("alice", "1234", 10)
	s.createAccount("bob", "5678", 20)

	entries, err := s.service.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)

	s.Equal(model.Username("bob"), entries[0].Username)
	s.Equal(model.Username("carol"), entries[1].Username)
	s.Equal(model.Username("alice"), entries[2].Username)
}

func (s *ServiceSuite) TestSnapshotEmpty() {
	entries, err := s.service.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Empty(entries)
}
