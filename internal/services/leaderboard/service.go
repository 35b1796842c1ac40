package leaderboard

import (
	"context"
	"sort"

	"github.com/KingdomVR/kvr-go-database/internal/model"
	"github.com/KingdomVR/kvr-go-database/internal/storage"
)

// Entry is one row of the ranked leaderboard
type Entry struct {
	Username model.Username
	Score    int64
}

// Service produces ranked score snapshots.
// It is read-only: it never mutates accounts or touches sessions.
type Service struct {
	store storage.AccountStore
}

// New creates a new leaderboard Service
func New(store storage.AccountStore) *Service {
	return &Service{store: store}
}

// Snapshot returns all accounts ordered by score descending, with ties
// broken by username ascending for determinism. Each call reads fresh
// state; results are not cached.
func (s *Service) Snapshot(ctx context.Context) ([]Entry, error) {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(accounts))
	for _, acct := range accounts {
		entries = append(entries, Entry{
			Username: acct.Username,
			Score:    acct.Score,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Username < entries[j].Username
	})

	return entries, nil
}
