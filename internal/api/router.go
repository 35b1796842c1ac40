package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KingdomVR/kvr-go-database/internal/api/handler"
	"github.com/KingdomVR/kvr-go-database/internal/api/middleware"
	"github.com/KingdomVR/kvr-go-database/internal/services/auth"
	"github.com/KingdomVR/kvr-go-database/internal/services/leaderboard"
	"github.com/KingdomVR/kvr-go-database/internal/services/registry"
	"github.com/KingdomVR/kvr-go-database/internal/services/transfer"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger             *slog.Logger
	AuthService        *auth.Service
	TransferService    *transfer.Service
	LeaderboardService *leaderboard.Service
	RegistryService    *registry.Service

	// AdminAPIKey guards account provisioning endpoints; empty disables them
	AdminAPIKey string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	accountHandler := handler.NewAccountHandler(cfg.AuthService, cfg.RegistryService)
	transferHandler := handler.NewTransferHandler(cfg.TransferService)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.LeaderboardService)

	// Create middleware
	authed := middleware.Auth(cfg.AuthService)
	apiKeyed := middleware.APIKey(cfg.AdminAPIKey)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Auth
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.Handle("/auth/logout", authed(http.HandlerFunc(authHandler.Logout))).Methods(http.MethodPost)

	// Accounts. /accounts/me is registered before /accounts/{username}
	// so self-lookup is never captured by the public route.
	api.Handle("/accounts/me", authed(http.HandlerFunc(accountHandler.GetMe))).Methods(http.MethodGet)
	api.Handle("/accounts/me/pin", authed(http.HandlerFunc(accountHandler.ChangePin))).Methods(http.MethodPost)
	api.HandleFunc("/accounts/{username}", accountHandler.Get).Methods(http.MethodGet)

	// Provisioning and admin updates (API-key guarded). Score changes
	// from game-result collaborators arrive through the PATCH route.
	api.Handle("/accounts", apiKeyed(http.HandlerFunc(accountHandler.Create))).Methods(http.MethodPost)
	api.Handle("/accounts/{username}", apiKeyed(http.HandlerFunc(accountHandler.Update))).Methods(http.MethodPatch)
	api.Handle("/accounts/{username}", apiKeyed(http.HandlerFunc(accountHandler.Delete))).Methods(http.MethodDelete)

	// Transfers
	api.Handle("/transfers", authed(http.HandlerFunc(transferHandler.Create))).Methods(http.MethodPost)

	// Public reads
	api.HandleFunc("/leaderboard", leaderboardHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
