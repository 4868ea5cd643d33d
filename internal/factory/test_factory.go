package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/roomrank/internal/dependencies/mocks"
	"github.com/mcoot/roomrank/internal/services/ranking"
	"github.com/mcoot/roomrank/internal/storage"
	"github.com/mcoot/roomrank/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// TestOptions tweak NewTestAppWith
type TestOptions struct {
	// Storage defaults to a fresh in-memory store
	Storage      storage.Storage
	RoomCapacity int
	Mode         ranking.HallOfFameMode
	Logger       *slog.Logger
}

// NewTestApp creates an App backed by memory storage with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWith(TestOptions{})
}

// NewTestAppWith creates a TestApp with the given overrides
func NewTestAppWith(opts TestOptions) *TestApp {
	store := opts.Storage
	if store == nil {
		store = memory.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, opts.RoomCapacity, opts.Mode, logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
