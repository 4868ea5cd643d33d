package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/roomrank/internal/model"
	"github.com/mcoot/roomrank/internal/storage"
	"github.com/mcoot/roomrank/internal/storage/storagetest"
)

func TestStorageSuite(t *testing.T) {
	suite.Run(t, &storagetest.Suite{
		NewStorage: func(t *testing.T) storage.Storage {
			return New()
		},
	})
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	s := New()
	ctx := t.Context()

	_, err := s.SubmitScore(ctx, model.ScoreUpdate{Address: "alice", Score: 10})
	require.NoError(t, err)
	p, err := s.GetPlayer(ctx, "alice")
	require.NoError(t, err)
	p.Score = 1000

	again, err := s.GetPlayer(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(10), again.Score)

	_, err = s.AssignRoom(ctx, "alice", model.NewRoom{Name: "r", Capacity: 2})
	require.NoError(t, err)
	room, err := s.GetRoom(ctx, 1)
	require.NoError(t, err)
	room.Occupants = 99

	again2, err := s.GetRoom(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, again2.Occupants)
}

func TestAssignRoomWithoutCapacityFails(t *testing.T) {
	s := New()
	_, err := s.AssignRoom(t.Context(), "alice", model.NewRoom{Name: "r"})
	assert.ErrorIs(t, err, model.ErrCapacityExhausted)
}
