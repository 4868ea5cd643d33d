// Package sqlstore provides the SQL-backed storage implementation, running on
// SQLite (modernc.org/sqlite) or PostgreSQL (lib/pq). Every mutating method runs
// in a single transaction.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/mcoot/roomrank/internal/model"
	"github.com/mcoot/roomrank/internal/storage"
	"github.com/mcoot/roomrank/internal/storage/sqlstore/migrations"
)

// maxAssignAttempts bounds the retries when an open room fills between
// selecting it and claiming a seat.
const maxAssignAttempts = 5

// Store persists players, rooms and invitations in a SQL database.
type Store struct {
	db *sql.DB
	d  dialect
}

// Ensure Store implements the interface
var _ storage.Storage = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// OpenSQLite opens a SQLite store at path and applies embedded migrations.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// SQLite allows one writer; a single connection keeps transactions
	// from failing with SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)
	return open(ctx, db, sqliteDialect)
}

// OpenPostgres opens a PostgreSQL store and applies embedded migrations.
func OpenPostgres(ctx context.Context, url string, maxConns int) (*Store, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("database url is required")
	}
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres db: %w", err)
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(maxConns)
	}
	return open(ctx, db, postgresDialect)
}

func open(ctx context.Context, db *sql.DB, d dialect) (*Store, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", d.name, err)
	}
	if err := applyMigrations(ctx, db, d, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db, d: d}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// withTx runs fn in a transaction, committing if fn returns nil.
// fn must not use s.db: SQLite runs with a single connection.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Player operations

func (s *Store) SubmitScore(ctx context.Context, update model.ScoreUpdate) (*model.ScoreResult, error) {
	result := &model.ScoreResult{Address: update.Address}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, s.d.rebind(fmt.Sprintf(
			`INSERT INTO players (address, score, token_balance, games_played, bonus_received, updated_at)
			 VALUES (?, ?, ?, 1, 0, ?)
			 ON CONFLICT (address) DO UPDATE SET
			   score = %s(players.score, excluded.score),
			   token_balance = excluded.token_balance,
			   games_played = players.games_played + 1,
			   updated_at = excluded.updated_at`, s.d.greatest)),
			string(update.Address),
			update.Score,
			update.TokenBalance,
			toMillis(update.At),
		)
		if err != nil {
			return fmt.Errorf("upsert player: %w", err)
		}

		award, err := s.applyBonusTx(ctx, tx, update.Address, update.ReferralBonus, update.At)
		if err != nil {
			return err
		}
		result.Referral = award

		err = tx.QueryRowContext(ctx,
			s.d.rebind(`SELECT score, games_played FROM players WHERE address = ?`),
			string(update.Address),
		).Scan(&result.BestScore, &result.GamesPlayed)
		if err != nil {
			return fmt.Errorf("read player: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("submit score: %w", err)
	}
	return result, nil
}

func (s *Store) GetPlayer(ctx context.Context, address model.Address) (*model.Player, error) {
	var (
		p         = model.Player{Address: address}
		bonus     int64
		updatedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		s.d.rebind(`SELECT score, token_balance, games_played, bonus_received, updated_at
		 FROM players WHERE address = ?`),
		string(address),
	).Scan(&p.Score, &p.TokenBalance, &p.GamesPlayed, &bonus, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("get player: %w", err)
	}
	p.BonusReceived = bonus != 0
	p.UpdatedAt = fromMillis(updatedAt)
	return &p, nil
}

// Room operations

func (s *Store) AssignRoom(ctx context.Context, address model.Address, newRoom model.NewRoom) (*model.Assignment, error) {
	var assignment *model.Assignment
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if s.d.lockRooms != "" {
			if _, err := tx.ExecContext(ctx, s.d.lockRooms); err != nil {
				return fmt.Errorf("lock rooms: %w", err)
			}
		}

		var existing int64
		err := tx.QueryRowContext(ctx,
			s.d.rebind(`SELECT room_id FROM players_in_room WHERE address = ?`),
			string(address),
		).Scan(&existing)
		switch {
		case err == nil:
			assignment = &model.Assignment{RoomID: model.RoomID(existing), Existing: true}
			return nil
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("lookup membership: %w", err)
		}

		roomID, created, err := s.claimSeatTx(ctx, tx, newRoom)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			s.d.rebind(`INSERT INTO players_in_room (address, room_id, joined_at) VALUES (?, ?, ?)`),
			string(address),
			int64(roomID),
			toMillis(newRoom.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert membership: %w", err)
		}
		assignment = &model.Assignment{RoomID: roomID, Created: created}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

// claimSeatTx increments occupancy of the lowest-id open room, creating a
// room from newRoom when none has space.
func (s *Store) claimSeatTx(ctx context.Context, tx *sql.Tx, newRoom model.NewRoom) (model.RoomID, bool, error) {
	for range maxAssignAttempts {
		var (
			id      int64
			created bool
		)
		err := tx.QueryRowContext(ctx,
			s.d.rebind(`SELECT id FROM rooms WHERE status = ? AND occupants < capacity ORDER BY id LIMIT 1`),
			string(model.RoomStatusOpen),
		).Scan(&id)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			id, err = s.createRoomTx(ctx, tx, newRoom)
			if err != nil {
				return 0, false, err
			}
			created = true
		case err != nil:
			return 0, false, fmt.Errorf("find open room: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			s.d.rebind(`UPDATE rooms SET
			   occupants = occupants + 1,
			   status = CASE WHEN occupants + 1 >= capacity THEN ? ELSE ? END
			 WHERE id = ? AND occupants < capacity`),
			string(model.RoomStatusFull),
			string(model.RoomStatusOpen),
			id,
		)
		if err != nil {
			return 0, false, fmt.Errorf("claim seat: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, false, fmt.Errorf("claim seat: %w", err)
		}
		if n == 1 {
			return model.RoomID(id), created, nil
		}
	}
	return 0, false, fmt.Errorf("%w: no seat after %d attempts", model.ErrCapacityExhausted, maxAssignAttempts)
}

func (s *Store) createRoomTx(ctx context.Context, tx *sql.Tx, newRoom model.NewRoom) (int64, error) {
	if newRoom.Capacity <= 0 {
		return 0, fmt.Errorf("%w: room capacity must be positive", model.ErrCapacityExhausted)
	}
	var id int64
	err := tx.QueryRowContext(ctx,
		s.d.rebind(`INSERT INTO rooms (name, capacity, occupants, status, created_at)
		 VALUES (?, ?, 0, ?, ?) RETURNING id`),
		newRoom.Name,
		newRoom.Capacity,
		string(model.RoomStatusOpen),
		toMillis(newRoom.CreatedAt),
	).Scan(&id)
	if err != nil {
		if s.d.isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: room name %q already taken", model.ErrCapacityExhausted, newRoom.Name)
		}
		return 0, fmt.Errorf("create room: %w", err)
	}
	return id, nil
}

func (s *Store) GetPlayerRoom(ctx context.Context, address model.Address) (model.RoomID, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		s.d.rebind(`SELECT room_id FROM players_in_room WHERE address = ?`),
		string(address),
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, model.ErrNotInRoom
		}
		return 0, fmt.Errorf("get player room: %w", err)
	}
	return model.RoomID(id), nil
}

const roomColumns = `id, name, capacity, occupants, status, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (*model.Room, error) {
	var (
		r         model.Room
		id        int64
		status    string
		createdAt int64
	)
	if err := row.Scan(&id, &r.Name, &r.Capacity, &r.Occupants, &status, &createdAt); err != nil {
		return nil, err
	}
	r.ID = model.RoomID(id)
	r.Status = model.RoomStatus(status)
	r.CreatedAt = fromMillis(createdAt)
	return &r, nil
}

func (s *Store) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	room, err := scanRoom(s.db.QueryRowContext(ctx,
		s.d.rebind(`SELECT `+roomColumns+` FROM rooms WHERE id = ?`),
		int64(id),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrRoomNotFound
		}
		return nil, fmt.Errorf("get room: %w", err)
	}
	return room, nil
}

func (s *Store) ListRooms(ctx context.Context) ([]*model.Room, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+roomColumns+` FROM rooms ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	rooms := make([]*model.Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rooms: %w", err)
	}
	return rooms, nil
}

// Invitation operations

func (s *Store) CreateInvitation(ctx context.Context, inv *model.Invitation) error {
	_, err := s.db.ExecContext(ctx,
		s.d.rebind(`INSERT INTO invitations (invitee_address, inviter_address, bonus_applied, created_at)
		 VALUES (?, ?, 0, ?)`),
		string(inv.Invitee),
		string(inv.Inviter),
		toMillis(inv.CreatedAt),
	)
	if err != nil {
		if s.d.isUniqueViolation(err) {
			return model.ErrDuplicateInvitation
		}
		return fmt.Errorf("create invitation: %w", err)
	}
	return nil
}

func (s *Store) GetInvitation(ctx context.Context, invitee model.Address) (*model.Invitation, error) {
	var (
		inviter   string
		applied   int64
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		s.d.rebind(`SELECT inviter_address, bonus_applied, created_at FROM invitations WHERE invitee_address = ?`),
		string(invitee),
	).Scan(&inviter, &applied, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNoValidInvitation
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	return &model.Invitation{
		Invitee:      invitee,
		Inviter:      model.Address(inviter),
		BonusApplied: applied != 0,
		CreatedAt:    fromMillis(createdAt),
	}, nil
}

func (s *Store) CountInvitations(ctx context.Context, inviter model.Address) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		s.d.rebind(`SELECT COUNT(*) FROM invitations WHERE inviter_address = ?`),
		string(inviter),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count invitations: %w", err)
	}
	return n, nil
}

func (s *Store) ApplyReferralBonus(ctx context.Context, req model.BonusRequest) (*model.BonusAward, error) {
	var award *model.BonusAward
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			s.d.rebind(`SELECT 1 FROM invitations WHERE invitee_address = ?`),
			string(req.Invitee),
		).Scan(&exists)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return model.ErrNoValidInvitation
			}
			return fmt.Errorf("lookup invitation: %w", err)
		}
		award, err = s.applyBonusTx(ctx, tx, req.Invitee, req.Bonus, req.At)
		return err
	})
	if err != nil {
		return nil, err
	}
	return award, nil
}

// applyBonusTx flips the invitee's pending invitation to applied and credits
// both sides. The conditional UPDATE is the commit point: concurrent callers
// serialize on the invitation row and only one sees it unapplied.
func (s *Store) applyBonusTx(ctx context.Context, tx *sql.Tx, invitee model.Address, bonus int64, at time.Time) (*model.BonusAward, error) {
	var inviter string
	err := tx.QueryRowContext(ctx,
		s.d.rebind(`UPDATE invitations SET bonus_applied = 1
		 WHERE invitee_address = ? AND bonus_applied = 0
		 RETURNING inviter_address`),
		string(invitee),
	).Scan(&inviter)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("mark invitation applied: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		s.d.rebind(`INSERT INTO players (address, score, token_balance, games_played, bonus_received, updated_at)
		 VALUES (?, ?, 0, 0, 1, ?)
		 ON CONFLICT (address) DO UPDATE SET
		   score = players.score + excluded.score,
		   bonus_received = 1`),
		string(invitee),
		bonus,
		toMillis(at),
	)
	if err != nil {
		return nil, fmt.Errorf("credit invitee: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		s.d.rebind(`INSERT INTO players (address, score, token_balance, games_played, bonus_received, updated_at)
		 VALUES (?, ?, 0, 0, 0, ?)
		 ON CONFLICT (address) DO UPDATE SET
		   score = players.score + excluded.score`),
		inviter,
		bonus,
		toMillis(at),
	)
	if err != nil {
		return nil, fmt.Errorf("credit inviter: %w", err)
	}

	return &model.BonusAward{Invitee: invitee, Inviter: model.Address(inviter), Amount: bonus}, nil
}

// Ranking operations

func (s *Store) TopPlayers(ctx context.Context, limit int) ([]model.Standing, error) {
	query := `SELECT address, score FROM players ORDER BY score DESC, address` + s.d.addressOrder + ` ASC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryStandings(ctx, s.d.rebind(query), args...)
}

func (s *Store) TopPlayersInRoom(ctx context.Context, roomID model.RoomID, limit int) ([]model.Standing, error) {
	query := `SELECT p.address, p.score
		 FROM players_in_room m
		 JOIN players p ON p.address = m.address
		 WHERE m.room_id = ?
		 ORDER BY p.score DESC, p.address` + s.d.addressOrder + ` ASC`
	args := []any{int64(roomID)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryStandings(ctx, s.d.rebind(query), args...)
}

func (s *Store) queryStandings(ctx context.Context, query string, args ...any) ([]model.Standing, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query standings: %w", err)
	}
	defer rows.Close()

	standings := make([]model.Standing, 0)
	for rows.Next() {
		var (
			address string
			score   int64
		)
		if err := rows.Scan(&address, &score); err != nil {
			return nil, fmt.Errorf("scan standing: %w", err)
		}
		standings = append(standings, model.Standing{Address: model.Address(address), Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate standings: %w", err)
	}
	return standings, nil
}
