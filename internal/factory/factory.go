package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/KingdomVR/kvr-go-database/internal/dependencies/clock"
	"github.com/KingdomVR/kvr-go-database/internal/services/auth"
	"github.com/KingdomVR/kvr-go-database/internal/services/leaderboard"
	"github.com/KingdomVR/kvr-go-database/internal/services/registry"
	"github.com/KingdomVR/kvr-go-database/internal/services/transfer"
	"github.com/KingdomVR/kvr-go-database/internal/storage"
	"github.com/KingdomVR/kvr-go-database/internal/storage/memory"
	redisstorage "github.com/KingdomVR/kvr-go-database/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Store storage.AccountStore

	// External dependencies
	Clock clock.Clock

	// Services
	AuthService        *auth.Service
	TransferService    *transfer.Service
	LeaderboardService *leaderboard.Service
	RegistryService    *registry.Service
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// TransferConfig holds configuration for the transfer engine (optional)
	TransferConfig transfer.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.AccountStore
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()

	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}

	return newWithDependencies(store, clk, authCfg, cfg.TransferConfig, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.AccountStore, clk clock.Clock, authCfg auth.Config, transferCfg transfer.Config, logger *slog.Logger) *App {
	authService := auth.New(store, clk, authCfg, logger)
	transferService := transfer.New(store, authService, clk, transferCfg, logger)
	leaderboardService := leaderboard.New(store)
	registryService := registry.New(store, clk, logger)

	return &App{
		Store:              store,
		Clock:              clk,
		AuthService:        authService,
		TransferService:    transferService,
		LeaderboardService: leaderboardService,
		RegistryService:    registryService,
	}
}
