package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/tetranet/tetranet/internal/dependencies/clock"
	"github.com/tetranet/tetranet/internal/dependencies/random"
	"github.com/tetranet/tetranet/internal/registry"
	"github.com/tetranet/tetranet/internal/services/lobby"
	"github.com/tetranet/tetranet/internal/storage"
	"github.com/tetranet/tetranet/internal/storage/memory"
	redisstorage "github.com/tetranet/tetranet/internal/storage/redis"
	"github.com/tetranet/tetranet/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Store

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Registry        *registry.Registry
	LobbyController *lobby.Controller
	WSHandler       *ws.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the match-history backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Store
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

	return newWithDependencies(store, clock.New(), random.New(), logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Store, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	reg := registry.New(logger)
	lobbyController := lobby.NewController(reg, store, clk, rnd, logger)
	wsHandler := ws.NewHandler(lobbyController, logger)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		Registry:        reg,
		LobbyController: lobbyController,
		WSHandler:       wsHandler,
	}
}
