package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/roomrank/internal/model"
	"github.com/mcoot/roomrank/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// A single mutex makes every method one atomic unit.
type Storage struct {
	mu sync.RWMutex

	players     map[model.Address]*model.Player
	rooms       []*model.Room // index i holds room id i+1
	memberships map[model.Address]model.RoomID
	roomMembers map[model.RoomID][]model.Address
	invitations map[model.Address]*model.Invitation
	roomNames   map[string]struct{}
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:     make(map[model.Address]*model.Player),
		memberships: make(map[model.Address]model.RoomID),
		roomMembers: make(map[model.RoomID][]model.Address),
		invitations: make(map[model.Address]*model.Invitation),
		roomNames:   make(map[string]struct{}),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op
func (s *Storage) Close() error {
	return nil
}

// Player operations

func (s *Storage) SubmitScore(ctx context.Context, update model.ScoreUpdate) (*model.ScoreResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.players[update.Address]
	if !ok {
		player = &model.Player{Address: update.Address}
		s.players[update.Address] = player
	}
	player.Score = max(player.Score, update.Score)
	player.TokenBalance = update.TokenBalance
	player.GamesPlayed++
	player.UpdatedAt = update.At

	award := s.applyBonusLocked(update.Address, update.ReferralBonus, update.At)

	return &model.ScoreResult{
		Address:     player.Address,
		BestScore:   player.Score,
		GamesPlayed: player.GamesPlayed,
		Referral:    award,
	}, nil
}

func (s *Storage) GetPlayer(ctx context.Context, address model.Address) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[address]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	cp := *player
	return &cp, nil
}

// Room operations

func (s *Storage) AssignRoom(ctx context.Context, address model.Address, newRoom model.NewRoom) (*model.Assignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.memberships[address]; ok {
		return &model.Assignment{RoomID: id, Existing: true}, nil
	}

	var room *model.Room
	for _, r := range s.rooms {
		if r.IsOpen() {
			room = r
			break
		}
	}

	created := false
	if room == nil {
		if newRoom.Capacity <= 0 {
			return nil, model.ErrCapacityExhausted
		}
		if _, taken := s.roomNames[newRoom.Name]; taken {
			return nil, model.ErrCapacityExhausted
		}
		room = &model.Room{
			ID:        model.RoomID(len(s.rooms) + 1),
			Name:      newRoom.Name,
			Capacity:  newRoom.Capacity,
			Status:    model.RoomStatusOpen,
			CreatedAt: newRoom.CreatedAt,
		}
		s.rooms = append(s.rooms, room)
		s.roomNames[room.Name] = struct{}{}
		created = true
	}

	room.Occupants++
	room.Status = model.StatusFor(room.Occupants, room.Capacity)
	s.memberships[address] = room.ID
	s.roomMembers[room.ID] = append(s.roomMembers[room.ID], address)

	return &model.Assignment{RoomID: room.ID, Created: created}, nil
}

func (s *Storage) GetPlayerRoom(ctx context.Context, address model.Address) (model.RoomID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.memberships[address]
	if !ok {
		return 0, model.ErrNotInRoom
	}
	return id, nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id < 1 || int(id) > len(s.rooms) {
		return nil, model.ErrRoomNotFound
	}
	cp := *s.rooms[id-1]
	return &cp, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]*model.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		cp := *r
		rooms = append(rooms, &cp)
	}
	return rooms, nil
}

// Invitation operations

func (s *Storage) CreateInvitation(ctx context.Context, inv *model.Invitation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.invitations[inv.Invitee]; exists {
		return model.ErrDuplicateInvitation
	}
	cp := *inv
	s.invitations[inv.Invitee] = &cp
	return nil
}

func (s *Storage) GetInvitation(ctx context.Context, invitee model.Address) (*model.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invitations[invitee]
	if !ok {
		return nil, model.ErrNoValidInvitation
	}
	cp := *inv
	return &cp, nil
}

func (s *Storage) CountInvitations(ctx context.Context, inviter model.Address) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, inv := range s.invitations {
		if inv.Inviter == inviter {
			count++
		}
	}
	return count, nil
}

func (s *Storage) ApplyReferralBonus(ctx context.Context, req model.BonusRequest) (*model.BonusAward, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invitations[req.Invitee]; !ok {
		return nil, model.ErrNoValidInvitation
	}
	return s.applyBonusLocked(req.Invitee, req.Bonus, req.At), nil
}

// applyBonusLocked credits a pending referral bonus. Caller holds s.mu.
func (s *Storage) applyBonusLocked(invitee model.Address, bonus int64, at time.Time) *model.BonusAward {
	inv, ok := s.invitations[invitee]
	if !ok || inv.BonusApplied {
		return nil
	}
	inv.BonusApplied = true

	inviteePlayer := s.ensurePlayerLocked(invitee, at)
	inviteePlayer.Score += bonus
	inviteePlayer.BonusReceived = true

	inviterPlayer := s.ensurePlayerLocked(inv.Inviter, at)
	inviterPlayer.Score += bonus

	return &model.BonusAward{Invitee: invitee, Inviter: inv.Inviter, Amount: bonus}
}

// ensurePlayerLocked returns the player's record, creating one with no games played
func (s *Storage) ensurePlayerLocked(address model.Address, at time.Time) *model.Player {
	player, ok := s.players[address]
	if !ok {
		player = &model.Player{Address: address, UpdatedAt: at}
		s.players[address] = player
	}
	return player
}

// Ranking operations

func (s *Storage) TopPlayers(ctx context.Context, limit int) ([]model.Standing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	standings := make([]model.Standing, 0, len(s.players))
	for _, p := range s.players {
		standings = append(standings, model.Standing{Address: p.Address, Score: p.Score})
	}
	return storage.SortStandings(standings, limit), nil
}

func (s *Storage) TopPlayersInRoom(ctx context.Context, roomID model.RoomID, limit int) ([]model.Standing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members := s.roomMembers[roomID]
	standings := make([]model.Standing, 0, len(members))
	for _, addr := range members {
		// Members without a score yet are not ranked
		if p, ok := s.players[addr]; ok {
			standings = append(standings, model.Standing{Address: p.Address, Score: p.Score})
		}
	}
	return storage.SortStandings(standings, limit), nil
}
