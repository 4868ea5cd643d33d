package redis

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/roomrank/internal/model"
	"github.com/mcoot/roomrank/internal/storage"
	"github.com/mcoot/roomrank/internal/storage/storagetest"
)

func newTestStorage(t *testing.T) (*Storage, *miniredis.Miniredis) {
	t.Helper()
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	s := NewWithClient(client, DefaultConfig())
	t.Cleanup(func() { _ = s.Close() })
	return s, mini
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, &storagetest.Suite{
		NewStorage: func(t *testing.T) storage.Storage {
			s, _ := newTestStorage(t)
			return s
		},
	})
}

func TestKeysUsePrefix(t *testing.T) {
	s, mini := newTestStorage(t)
	ctx := t.Context()

	_, err := s.SubmitScore(ctx, model.ScoreUpdate{Address: "alice", Score: 42, TokenBalance: 1.5})
	require.NoError(t, err)
	_, err = s.AssignRoom(ctx, "alice", model.NewRoom{Name: "room-a", Capacity: 2})
	require.NoError(t, err)

	assert.True(t, mini.Exists("roomrank:player:alice"))
	assert.True(t, mini.Exists("roomrank:room:1"))
	assert.Equal(t, "1", mini.HGet("roomrank:membership", "alice"))
	assert.Equal(t, "1.5", mini.HGet("roomrank:player:alice", "token_balance"))

	score, err := mini.ZScore("roomrank:ranking", "alice")
	require.NoError(t, err)
	assert.Equal(t, float64(42), score)
}

func TestSeparatePrefixesDoNotCollide(t *testing.T) {
	mini := miniredis.RunT(t)
	a := NewWithClient(redis.NewClient(&redis.Options{Addr: mini.Addr()}), Config{KeyPrefix: "a"})
	b := NewWithClient(redis.NewClient(&redis.Options{Addr: mini.Addr()}), Config{KeyPrefix: "b"})
	ctx := t.Context()

	_, err := a.SubmitScore(ctx, model.ScoreUpdate{Address: "alice", Score: 1})
	require.NoError(t, err)

	_, err = b.GetPlayer(ctx, "alice")
	assert.ErrorIs(t, err, model.ErrPlayerNotFound)
}

func TestAssignRoomRejectsDuplicateName(t *testing.T) {
	s, _ := newTestStorage(t)
	ctx := t.Context()

	_, err := s.AssignRoom(ctx, "alice", model.NewRoom{Name: "room-a", Capacity: 1})
	require.NoError(t, err)

	// room 1 is now full, so bob needs a new room but reuses the name
	_, err = s.AssignRoom(ctx, "bob", model.NewRoom{Name: "room-a", Capacity: 1})
	assert.ErrorIs(t, err, model.ErrCapacityExhausted)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(Config{URL: "not a url"})
	assert.Error(t, err)
}

func TestNewConnects(t *testing.T) {
	mini := miniredis.RunT(t)
	cfg := DefaultConfig()
	cfg.URL = "redis://" + mini.Addr()

	s, err := New(cfg)
	require.NoError(t, err)
	defer s.Close()

	rooms, err := s.ListRooms(t.Context())
	require.NoError(t, err)
	assert.Empty(t, rooms)
}
