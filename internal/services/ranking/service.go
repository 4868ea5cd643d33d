package ranking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/roomrank/internal/model"
	"github.com/mcoot/roomrank/internal/services/bonus"
	"github.com/mcoot/roomrank/internal/storage"
)

const (
	// LeaderboardSize is the number of rows in a room leaderboard
	LeaderboardSize = 11
	// HallOfFameSize is the number of rows in the hall of fame
	HallOfFameSize = 48
)

// HallOfFameMode selects the scope of the hall of fame
type HallOfFameMode string

const (
	// HallOfFameGlobal always ranks every player
	HallOfFameGlobal HallOfFameMode = "global"
	// HallOfFameRoom ranks the members of a room, which must be given
	HallOfFameRoom HallOfFameMode = "room"
	// HallOfFameAuto ranks a room when one is given, otherwise every player
	HallOfFameAuto HallOfFameMode = "auto"
)

// ParseHallOfFameMode parses a mode name, case-insensitively
func ParseHallOfFameMode(s string) (HallOfFameMode, error) {
	switch mode := HallOfFameMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case HallOfFameGlobal, HallOfFameRoom, HallOfFameAuto:
		return mode, nil
	case "":
		return HallOfFameAuto, nil
	default:
		return "", fmt.Errorf("unknown hall of fame mode %q (want global, room or auto)", s)
	}
}

// Service serves read-only ranked views
type Service struct {
	storage storage.Storage
	mode    HallOfFameMode
	logger  *slog.Logger
}

// New creates a new ranking Service
func New(storage storage.Storage, mode HallOfFameMode, logger *slog.Logger) *Service {
	if mode == "" {
		mode = HallOfFameAuto
	}
	return &Service{
		storage: storage,
		mode:    mode,
		logger:  logger,
	}
}

// Mode returns the configured hall of fame scope
func (s *Service) Mode() HallOfFameMode {
	return s.mode
}

// Leaderboard returns the top members of a room with the position bonus
// applied to the returned view.
func (s *Service) Leaderboard(ctx context.Context, roomID model.RoomID) ([]model.Standing, error) {
	if err := s.checkRoom(ctx, roomID); err != nil {
		return nil, err
	}
	standings, err := s.storage.TopPlayersInRoom(ctx, roomID, LeaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("leaderboard for room %d: %w", roomID, err)
	}
	return bonus.ApplyPositionBonus(standings), nil
}

// HallOfFame returns the top players, scoped according to the mode.
// roomID may be nil.
func (s *Service) HallOfFame(ctx context.Context, roomID *model.RoomID) ([]model.Standing, error) {
	scoped := false
	switch s.mode {
	case HallOfFameGlobal:
	case HallOfFameRoom:
		if roomID == nil {
			return nil, model.ErrRoomRequired
		}
		scoped = true
	default:
		scoped = roomID != nil
	}

	if !scoped {
		standings, err := s.storage.TopPlayers(ctx, HallOfFameSize)
		if err != nil {
			return nil, fmt.Errorf("hall of fame: %w", err)
		}
		return standings, nil
	}

	if err := s.checkRoom(ctx, *roomID); err != nil {
		return nil, err
	}
	standings, err := s.storage.TopPlayersInRoom(ctx, *roomID, HallOfFameSize)
	if err != nil {
		return nil, fmt.Errorf("hall of fame for room %d: %w", *roomID, err)
	}
	return standings, nil
}

func (s *Service) checkRoom(ctx context.Context, roomID model.RoomID) error {
	if roomID < 1 {
		return model.ErrInvalidRoomID
	}
	_, err := s.storage.GetRoom(ctx, roomID)
	return err
}
