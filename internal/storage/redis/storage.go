package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/roomrank/internal/model"
	"github.com/mcoot/roomrank/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Multi-key mutations run as Lua scripts so each one is atomic on the server.
type Storage struct {
	client *redis.Client
	cfg    Config
	keys   keys
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultConfig().KeyPrefix
	}
	return &Storage{
		client: client,
		cfg:    cfg,
		keys:   keys{prefix: prefix},
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SubmitScore(ctx context.Context, update model.ScoreUpdate) (*model.ScoreResult, error) {
	res, err := submitScoreScript.Run(ctx, s.client, nil,
		s.keys.prefix,
		string(update.Address),
		update.Score,
		formatFloat(update.TokenBalance),
		update.ReferralBonus,
		millis(update.At),
	).Slice()
	if err != nil {
		return nil, fmt.Errorf("submit score: %w", err)
	}
	if len(res) < 2 {
		return nil, fmt.Errorf("submit score: unexpected script reply %v", res)
	}

	best, err := toInt64(res[0])
	if err != nil {
		return nil, fmt.Errorf("submit score: best score: %w", err)
	}
	games, err := toInt64(res[1])
	if err != nil {
		return nil, fmt.Errorf("submit score: games played: %w", err)
	}

	result := &model.ScoreResult{
		Address:     update.Address,
		BestScore:   best,
		GamesPlayed: games,
	}
	if len(res) > 2 {
		result.Referral = &model.BonusAward{
			Invitee: update.Address,
			Inviter: model.Address(fmt.Sprint(res[2])),
			Amount:  update.ReferralBonus,
		}
	}
	return result, nil
}

func (s *Storage) GetPlayer(ctx context.Context, address model.Address) (*model.Player, error) {
	fields, err := s.client.HGetAll(ctx, s.keys.player(address)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, model.ErrPlayerNotFound
	}
	return parsePlayer(address, fields)
}

// Room operations

func (s *Storage) AssignRoom(ctx context.Context, address model.Address, newRoom model.NewRoom) (*model.Assignment, error) {
	res, err := assignRoomScript.Run(ctx, s.client, nil,
		s.keys.prefix,
		string(address),
		newRoom.Name,
		newRoom.Capacity,
		millis(newRoom.CreatedAt),
	).Int64Slice()
	if err != nil {
		if strings.Contains(err.Error(), "CAPACITY") {
			return nil, fmt.Errorf("%w: %s", model.ErrCapacityExhausted, err.Error())
		}
		return nil, fmt.Errorf("assign room: %w", err)
	}
	if len(res) != 3 {
		return nil, fmt.Errorf("assign room: unexpected script reply %v", res)
	}
	return &model.Assignment{
		RoomID:   model.RoomID(res[0]),
		Existing: res[1] == 1,
		Created:  res[2] == 1,
	}, nil
}

func (s *Storage) GetPlayerRoom(ctx context.Context, address model.Address) (model.RoomID, error) {
	id, err := s.client.HGet(ctx, s.keys.memberships(), string(address)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, model.ErrNotInRoom
		}
		return 0, err
	}
	return model.RoomID(id), nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	fields, err := s.client.HGetAll(ctx, s.keys.room(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, model.ErrRoomNotFound
	}
	return parseRoom(id, fields)
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	ids, err := s.client.ZRange(ctx, s.keys.rooms(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Room{}, nil
	}

	pipe := s.client.Pipeline()
	roomIDs := make([]model.RoomID, len(ids))
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, raw := range ids {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("list rooms: bad room id %q: %w", raw, err)
		}
		roomIDs[i] = model.RoomID(n)
		cmds[i] = pipe.HGetAll(ctx, s.keys.room(roomIDs[i]))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	rooms := make([]*model.Room, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		room, err := parseRoom(roomIDs[i], fields)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

// Invitation operations

func (s *Storage) CreateInvitation(ctx context.Context, inv *model.Invitation) error {
	created, err := createInvitationScript.Run(ctx, s.client, nil,
		s.keys.prefix,
		string(inv.Invitee),
		string(inv.Inviter),
		millis(inv.CreatedAt),
	).Int()
	if err != nil {
		return fmt.Errorf("create invitation: %w", err)
	}
	if created == 0 {
		return model.ErrDuplicateInvitation
	}
	return nil
}

func (s *Storage) GetInvitation(ctx context.Context, invitee model.Address) (*model.Invitation, error) {
	fields, err := s.client.HGetAll(ctx, s.keys.invitation(invitee)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, model.ErrNoValidInvitation
	}
	createdAt, err := parseMillis(fields["created_at"])
	if err != nil {
		return nil, fmt.Errorf("invitation %s: %w", invitee, err)
	}
	return &model.Invitation{
		Invitee:      invitee,
		Inviter:      model.Address(fields["inviter"]),
		BonusApplied: fields["bonus_applied"] == "1",
		CreatedAt:    createdAt,
	}, nil
}

func (s *Storage) CountInvitations(ctx context.Context, inviter model.Address) (int, error) {
	n, err := s.client.SCard(ctx, s.keys.invitees(inviter)).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *Storage) ApplyReferralBonus(ctx context.Context, req model.BonusRequest) (*model.BonusAward, error) {
	res, err := applyBonusScript.Run(ctx, s.client, nil,
		s.keys.prefix,
		string(req.Invitee),
		req.Bonus,
		millis(req.At),
	).Slice()
	if err != nil {
		return nil, fmt.Errorf("apply referral bonus: %w", err)
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("apply referral bonus: empty script reply")
	}
	status, err := toInt64(res[0])
	if err != nil {
		return nil, fmt.Errorf("apply referral bonus: %w", err)
	}

	switch {
	case status < 0:
		return nil, model.ErrNoValidInvitation
	case status == 0 || len(res) < 2:
		return nil, nil
	}
	return &model.BonusAward{
		Invitee: req.Invitee,
		Inviter: model.Address(fmt.Sprint(res[1])),
		Amount:  req.Bonus,
	}, nil
}

// Ranking operations

// TopPlayers reads the ranking ZSET. Redis orders equal scores by member
// descending under ZREVRANGE, so every member tied with the last returned
// score is fetched and the cut is redone with address ascending.
func (s *Storage) TopPlayers(ctx context.Context, limit int) ([]model.Standing, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	top, err := s.client.ZRevRangeWithScores(ctx, s.keys.ranking(), 0, stop).Result()
	if err != nil {
		return nil, err
	}
	if limit <= 0 || len(top) < limit {
		return storage.SortStandings(zToStandings(top), limit), nil
	}

	cutoff := top[len(top)-1].Score
	tied, err := s.client.ZRangeByScoreWithScores(ctx, s.keys.ranking(), &redis.ZRangeBy{
		Min: formatFloat(cutoff),
		Max: formatFloat(cutoff),
	}).Result()
	if err != nil {
		return nil, err
	}

	standings := make([]model.Standing, 0, len(top)+len(tied))
	for _, z := range top {
		if z.Score > cutoff {
			standings = append(standings, zToStanding(z))
		}
	}
	standings = append(standings, zToStandings(tied)...)
	return storage.SortStandings(standings, limit), nil
}

func (s *Storage) TopPlayersInRoom(ctx context.Context, roomID model.RoomID, limit int) ([]model.Standing, error) {
	members, err := s.client.SMembers(ctx, s.keys.roomMembers(roomID)).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return []model.Standing{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(members))
	for i, m := range members {
		cmds[i] = pipe.HGet(ctx, s.keys.player(model.Address(m)), "score")
	}
	// redis.Nil for members without a score is expected
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	standings := make([]model.Standing, 0, len(members))
	for i, cmd := range cmds {
		score, err := cmd.Int64()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("room %d member %s: %w", roomID, members[i], err)
		}
		standings = append(standings, model.Standing{Address: model.Address(members[i]), Score: score})
	}
	return storage.SortStandings(standings, limit), nil
}

// Helpers

func parsePlayer(address model.Address, fields map[string]string) (*model.Player, error) {
	score, err := strconv.ParseInt(fields["score"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("player %s score: %w", address, err)
	}
	balance, err := strconv.ParseFloat(fields["token_balance"], 64)
	if err != nil {
		return nil, fmt.Errorf("player %s token balance: %w", address, err)
	}
	games, err := strconv.ParseInt(fields["games_played"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("player %s games played: %w", address, err)
	}
	updatedAt, err := parseMillis(fields["updated_at"])
	if err != nil {
		return nil, fmt.Errorf("player %s: %w", address, err)
	}
	return &model.Player{
		Address:       address,
		Score:         score,
		TokenBalance:  balance,
		GamesPlayed:   games,
		BonusReceived: fields["bonus_received"] == "1",
		UpdatedAt:     updatedAt,
	}, nil
}

func parseRoom(id model.RoomID, fields map[string]string) (*model.Room, error) {
	capacity, err := strconv.Atoi(fields["capacity"])
	if err != nil {
		return nil, fmt.Errorf("room %d capacity: %w", id, err)
	}
	occupants, err := strconv.Atoi(fields["occupants"])
	if err != nil {
		return nil, fmt.Errorf("room %d occupants: %w", id, err)
	}
	createdAt, err := parseMillis(fields["created_at"])
	if err != nil {
		return nil, fmt.Errorf("room %d: %w", id, err)
	}
	return &model.Room{
		ID:        id,
		Name:      fields["name"],
		Capacity:  capacity,
		Occupants: occupants,
		Status:    model.RoomStatus(fields["status"]),
		CreatedAt: createdAt,
	}, nil
}

func zToStanding(z redis.Z) model.Standing {
	return model.Standing{Address: model.Address(fmt.Sprint(z.Member)), Score: int64(z.Score)}
}

func zToStandings(zs []redis.Z) []model.Standing {
	standings := make([]model.Standing, len(zs))
	for i, z := range zs {
		standings[i] = zToStanding(z)
	}
	return standings
}

// toInt64 converts a script reply element, which is an integer reply or a
// bulk string holding a decimal integer.
func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected reply type %T", v)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func millis(t time.Time) int64 {
	return t.UnixMilli()
}

func parseMillis(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q: %w", raw, err)
	}
	return time.UnixMilli(ms).UTC(), nil
}
