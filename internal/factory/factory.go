package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/roomrank/internal/config"
	"github.com/mcoot/roomrank/internal/dependencies/clock"
	"github.com/mcoot/roomrank/internal/dependencies/random"
	"github.com/mcoot/roomrank/internal/services/invitation"
	"github.com/mcoot/roomrank/internal/services/ranking"
	"github.com/mcoot/roomrank/internal/services/rooms"
	"github.com/mcoot/roomrank/internal/services/scores"
	"github.com/mcoot/roomrank/internal/storage"
	"github.com/mcoot/roomrank/internal/storage/memory"
	redisstorage "github.com/mcoot/roomrank/internal/storage/redis"
	"github.com/mcoot/roomrank/internal/storage/sqlstore"
)

// Storage type constants
const (
	StorageTypeMemory   = config.StorageMemory
	StorageTypeRedis    = config.StorageRedis
	StorageTypeSQLite   = config.StorageSQLite
	StorageTypePostgres = config.StoragePostgres
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Rooms       *rooms.Service
	Scores      *scores.Service
	Invitations *invitation.Service
	Ranking     *ranking.Service
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// DatabaseURL is the Postgres DSN (required if StorageType is "postgres")
	DatabaseURL string
	DBMaxConns  int
	// RoomCapacity of newly created rooms; zero means model.DefaultRoomCapacity
	RoomCapacity int
	// HallOfFameMode scopes the hall of fame; empty means auto
	HallOfFameMode ranking.HallOfFameMode
}

// ConfigFromEnv maps the server's environment configuration onto a factory Config
func ConfigFromEnv(cfg config.Config, logger *slog.Logger) (Config, error) {
	mode, err := ranking.ParseHallOfFameMode(cfg.HallOfFameMode)
	if err != nil {
		return Config{}, err
	}

	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = cfg.RedisURL
	if cfg.RedisPrefix != "" {
		redisCfg.KeyPrefix = cfg.RedisPrefix
	}

	return Config{
		Logger:         logger,
		StorageType:    cfg.StorageType,
		RedisConfig:    &redisCfg,
		SQLitePath:     cfg.SQLitePath,
		DatabaseURL:    cfg.DatabaseURL,
		DBMaxConns:     cfg.DBMaxConns,
		RoomCapacity:   cfg.RoomCapacity,
		HallOfFameMode: mode,
	}, nil
}

// New creates a new application with all dependencies wired. The caller owns
// App.Storage and must Close it on shutdown.
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := newWithDependencies(store, clock.New(), random.New(), cfg.RoomCapacity, cfg.HallOfFameMode, logger)
	return app, nil
}

func openStorage(ctx context.Context, cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		store, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StorageTypeSQLite:
		store, err := sqlstore.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StorageTypePostgres:
		store, err := sqlstore.OpenPostgres(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be memory, redis, sqlite or postgres", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	capacity int,
	mode ranking.HallOfFameMode,
	logger *slog.Logger,
) *App {
	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		Rooms:       rooms.New(store, clk, rnd, capacity, logger),
		Scores:      scores.New(store, clk, logger),
		Invitations: invitation.New(store, clk, logger),
		Ranking:     ranking.New(store, mode, logger),
	}
}
