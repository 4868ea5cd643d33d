package sqlstore

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/roomrank/internal/model"
)

func setupMockPostgres(t *testing.T) (sqlmock.Sqlmock, *Store) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return mock, &Store{db: db, d: postgresDialect}
}

func TestRebind(t *testing.T) {
	query := "SELECT a FROM t WHERE b = ? AND c = ?"
	assert.Equal(t, "SELECT a FROM t WHERE b = $1 AND c = $2", postgresDialect.rebind(query))
	assert.Equal(t, query, sqliteDialect.rebind(query))
}

func TestPostgresUniqueViolation(t *testing.T) {
	assert.True(t, isPostgresUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, isPostgresUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isPostgresUniqueViolation(errors.New("duplicate key")))
}

func TestPostgresSubmitScoreUsesGreatest(t *testing.T) {
	mock, store := setupMockPostgres(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("score = GREATEST(players.score, excluded.score)")).
		WithArgs("alice", int64(10), 1.5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE invitations SET bonus_applied = 1")).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"inviter_address"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT score, games_played FROM players WHERE address = $1")).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"score", "games_played"}).AddRow(12, 3))
	mock.ExpectCommit()

	res, err := store.SubmitScore(t.Context(), model.ScoreUpdate{Address: "alice", Score: 10, TokenBalance: 1.5})
	require.NoError(t, err)
	assert.Equal(t, int64(12), res.BestScore)
	assert.Equal(t, int64(3), res.GamesPlayed)
	assert.Nil(t, res.Referral)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSubmitScoreCreditsReferral(t *testing.T) {
	mock, store := setupMockPostgres(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO players").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE invitations SET bonus_applied = 1")).
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows([]string{"inviter_address"}).AddRow("alice"))
	mock.ExpectExec(regexp.QuoteMeta("bonus_received = 1")).
		WithArgs("bob", int64(50), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("score = players.score + excluded.score")).
		WithArgs("alice", int64(50), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT score, games_played").
		WillReturnRows(sqlmock.NewRows([]string{"score", "games_played"}).AddRow(151, 1))
	mock.ExpectCommit()

	res, err := store.SubmitScore(t.Context(), model.ScoreUpdate{Address: "bob", Score: 101, ReferralBonus: 50})
	require.NoError(t, err)
	require.NotNil(t, res.Referral)
	assert.Equal(t, model.Address("alice"), res.Referral.Inviter)
	assert.Equal(t, int64(50), res.Referral.Amount)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAssignRoomLocksAndCreates(t *testing.T) {
	mock, store := setupMockPostgres(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("LOCK TABLE rooms IN EXCLUSIVE MODE")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT room_id FROM players_in_room WHERE address = $1")).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"room_id"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM rooms WHERE status = $1")).
		WithArgs("open").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO rooms")).
		WithArgs("room-a", 48, "open", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE rooms SET")).
		WithArgs("full", "open", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO players_in_room")).
		WithArgs("alice", int64(1), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	a, err := store.AssignRoom(t.Context(), "alice", model.NewRoom{Name: "room-a", Capacity: 48})
	require.NoError(t, err)
	assert.Equal(t, model.RoomID(1), a.RoomID)
	assert.True(t, a.Created)
	assert.False(t, a.Existing)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAssignRoomRetriesWhenRoomFills(t *testing.T) {
	mock, store := setupMockPostgres(t)

	mock.ExpectBegin()
	mock.ExpectExec("LOCK TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT room_id").WillReturnRows(sqlmock.NewRows([]string{"room_id"}))
	mock.ExpectQuery("SELECT id FROM rooms").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectExec("UPDATE rooms SET").WithArgs("full", "open", int64(3)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id FROM rooms").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectExec("UPDATE rooms SET").WithArgs("full", "open", int64(4)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO players_in_room").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	a, err := store.AssignRoom(t.Context(), "alice", model.NewRoom{Name: "room-a", Capacity: 48})
	require.NoError(t, err)
	assert.Equal(t, model.RoomID(4), a.RoomID)
	assert.False(t, a.Created)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateInvitationDuplicate(t *testing.T) {
	mock, store := setupMockPostgres(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invitations")).
		WithArgs("bob", "alice", sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505"})

	err := store.CreateInvitation(t.Context(), &model.Invitation{Invitee: "bob", Inviter: "alice"})
	assert.ErrorIs(t, err, model.ErrDuplicateInvitation)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresApplyBonusWithoutInvitationRollsBack(t *testing.T) {
	mock, store := setupMockPostgres(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM invitations WHERE invitee_address = $1")).
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}))
	mock.ExpectRollback()

	award, err := store.ApplyReferralBonus(t.Context(), model.BonusRequest{Invitee: "bob", Bonus: 50})
	assert.ErrorIs(t, err, model.ErrNoValidInvitation)
	assert.Nil(t, award)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTopPlayersSortsAddressesBytewise(t *testing.T) {
	mock, store := setupMockPostgres(t)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY score DESC, address COLLATE "C" ASC LIMIT $1`)).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"address", "score"}).
			AddRow("alice", 30).
			AddRow("bob", 20))

	top, err := store.TopPlayers(t.Context(), 10)
	require.NoError(t, err)
	assert.Equal(t, []model.Standing{{Address: "alice", Score: 30}, {Address: "bob", Score: 20}}, top)

	assert.NoError(t, mock.ExpectationsWereMet())
}
