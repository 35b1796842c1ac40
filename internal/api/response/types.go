package response

import (
	"github.com/KingdomVR/kvr-go-database/internal/model"
	"github.com/KingdomVR/kvr-go-database/internal/services/auth"
	"github.com/KingdomVR/kvr-go-database/internal/services/leaderboard"
)

// Account represents an account in API responses.
// The PIN is deliberately absent: no response body ever carries it.
type Account struct {
	Username    string  `json:"username"`
	Kvrcoin     float64 `json:"kvrcoin"`
	ChessPoints int64   `json:"chess_points"`
}

// AccountFromModel converts a model.Account to a response Account
func AccountFromModel(a *model.Account) Account {
	return Account{
		Username:    string(a.Username),
		Kvrcoin:     a.Balance,
		ChessPoints: a.Score,
	}
}

// AuthResponse is the response for the login endpoint
type AuthResponse struct {
	SessionToken string  `json:"session_token"`
	Account      Account `json:"account"`
}

// AuthResponseFromSession creates an AuthResponse from a session and account
func AuthResponseFromSession(s *auth.Session, acct *model.Account) AuthResponse {
	return AuthResponse{
		SessionToken: s.Token,
		Account:      AccountFromModel(acct),
	}
}

// LeaderboardEntry is one ranked row
type LeaderboardEntry struct {
	Username    string `json:"username"`
	ChessPoints int64  `json:"chess_points"`
}

// LeaderboardResponse is the response for the leaderboard endpoint
type LeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// LeaderboardFromEntries converts service entries to the response shape
func LeaderboardFromEntries(entries []leaderboard.Entry) LeaderboardResponse {
	out := make([]LeaderboardEntry, len(entries))
	for i, e := range entries {
		out[i] = LeaderboardEntry{
			Username:    string(e.Username),
			ChessPoints: e.Score,
		}
	}
	return LeaderboardResponse{Entries: out}
}
