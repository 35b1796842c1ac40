package handler

import (
	"net/http"

	"github.com/KingdomVR/kvr-go-database/internal/api/apierr"
	"github.com/KingdomVR/kvr-go-database/internal/api/response"
	"github.com/KingdomVR/kvr-go-database/internal/services/leaderboard"
)

// LeaderboardHandler handles the ranked score endpoint
type LeaderboardHandler struct {
	leaderboardService *leaderboard.Service
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(leaderboardService *leaderboard.Service) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
	}
}

// Get handles GET /api/v1/leaderboard
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboardService.Snapshot(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromEntries(entries))
}
