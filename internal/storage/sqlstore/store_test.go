package sqlstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/roomrank/internal/model"
	"github.com/mcoot/roomrank/internal/storage"
	"github.com/mcoot/roomrank/internal/storage/storagetest"
)

func openTestSQLite(t *testing.T) *Store {
	t.Helper()
	store, err := OpenSQLite(t.Context(), filepath.Join(t.TempDir(), "roomrank.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStorageSuite(t *testing.T) {
	suite.Run(t, &storagetest.Suite{
		NewStorage: func(t *testing.T) storage.Storage {
			return openTestSQLite(t)
		},
	})
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	_, err := OpenSQLite(t.Context(), "  ")
	assert.Error(t, err)
}

func TestReopenKeepsDataAndSkipsAppliedMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roomrank.db")
	ctx := t.Context()

	store, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	_, err = store.SubmitScore(ctx, model.ScoreUpdate{Address: "alice", Score: 7, TokenBalance: 2.25})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	p, err := store.GetPlayer(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.Score)
	assert.Equal(t, 2.25, p.TokenBalance)

	var applied int
	require.NoError(t, store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	assert.Equal(t, 1, applied)
}

func TestSQLiteRoomCapacityConstraint(t *testing.T) {
	store := openTestSQLite(t)
	_, err := store.AssignRoom(t.Context(), "alice", model.NewRoom{Name: "room-a"})
	assert.ErrorIs(t, err, model.ErrCapacityExhausted)

	rooms, err := store.ListRooms(t.Context())
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestExtractUpMigration(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (id INT);\n-- +migrate Down\nDROP TABLE a;\n"
	assert.Equal(t, "\nCREATE TABLE a (id INT);\n", extractUpMigration(content))
	assert.Equal(t, "SELECT 1;", extractUpMigration("SELECT 1;"))
}
