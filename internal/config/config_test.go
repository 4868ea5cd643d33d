package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StorageMemory, cfg.StorageType)
	assert.Equal(t, 48, cfg.RoomCapacity)
	assert.Equal(t, "auto", cfg.HallOfFameMode)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.TracingEnabled())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_TYPE", " SQLite ")
	t.Setenv("SQLITE_PATH", "/tmp/rooms.db")
	t.Setenv("ROOM_CAPACITY", "2")
	t.Setenv("HALL_OF_FAME_MODE", "global")
	t.Setenv("REQUEST_TIMEOUT", "250ms")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OTEL_ENDPOINT", "http://collector:4318")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, StorageSQLite, cfg.StorageType)
	assert.Equal(t, "/tmp/rooms.db", cfg.SQLitePath)
	assert.Equal(t, 2, cfg.RoomCapacity)
	assert.Equal(t, 250*time.Millisecond, cfg.RequestTimeout)
	assert.True(t, cfg.TracingEnabled())

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadRejectsMalformedNumber(t *testing.T) {
	t.Setenv("PORT", "eighty")

	_, err := Load()
	assert.ErrorContains(t, err, "parse env")
}

func TestTracingCanBeDisabled(t *testing.T) {
	t.Setenv("OTEL_ENDPOINT", "http://collector:4318")
	t.Setenv("OTEL_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.TracingEnabled())
}

func validConfig() Config {
	return Config{
		Port:           8080,
		StorageType:    StorageMemory,
		RoomCapacity:   48,
		HallOfFameMode: "auto",
		LogLevel:       "info",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"port out of range", func(c *Config) { c.Port = 70000 }, "PORT"},
		{"unknown storage", func(c *Config) { c.StorageType = "mongo" }, "STORAGE_TYPE"},
		{"redis without url", func(c *Config) { c.StorageType = StorageRedis }, "REDIS_URL"},
		{"sqlite without path", func(c *Config) { c.StorageType = StorageSQLite }, "SQLITE_PATH"},
		{"postgres without url", func(c *Config) {
			c.StorageType = StoragePostgres
			c.DBMaxConns = 5
		}, "DATABASE_URL"},
		{"postgres without pool", func(c *Config) {
			c.StorageType = StoragePostgres
			c.DatabaseURL = "postgres://localhost/roomrank"
		}, "DB_MAX_CONNS"},
		{"zero capacity", func(c *Config) { c.RoomCapacity = 0 }, "ROOM_CAPACITY"},
		{"unknown mode", func(c *Config) { c.HallOfFameMode = "weekly" }, "HALL_OF_FAME_MODE"},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -time.Second }, "REQUEST_TIMEOUT"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.Port = 0
	cfg.RoomCapacity = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "PORT")
	assert.ErrorContains(t, err, "ROOM_CAPACITY")
}
