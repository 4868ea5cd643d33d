package rooms

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/mcoot/roomrank/internal/dependencies/clock"
	"github.com/mcoot/roomrank/internal/dependencies/random"
	"github.com/mcoot/roomrank/internal/model"
	"github.com/mcoot/roomrank/internal/storage"
)

const (
	// NameSuffixLength is the length of the random part of generated room names
	NameSuffixLength = 4
	// NameSuffixAlphabet is the characters used in room name suffixes
	NameSuffixAlphabet = "abcdefghijkmnpqrstuvwxyz23456789"
	// nameTimeLayout renders the creation time as yyyymmddhhmmss
	nameTimeLayout = "20060102150405"
)

var tracer = otel.Tracer("github.com/mcoot/roomrank/internal/services/rooms")

// Service assigns players to capacity-bounded rooms
type Service struct {
	storage  storage.Storage
	clock    clock.Clock
	random   random.Random
	capacity int
	logger   *slog.Logger
}

// New creates a new room Service. A capacity below 1 falls back to
// model.DefaultRoomCapacity.
func New(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	capacity int,
	logger *slog.Logger,
) *Service {
	if capacity < 1 {
		capacity = model.DefaultRoomCapacity
	}
	return &Service{
		storage:  storage,
		clock:    clock,
		random:   random,
		capacity: capacity,
		logger:   logger,
	}
}

// Capacity returns the capacity given to newly created rooms
func (s *Service) Capacity() int {
	return s.capacity
}

// AssignRoom returns the player's room, placing them in the first open room
// (creating one if every room is full) on their first call.
func (s *Service) AssignRoom(ctx context.Context, address model.Address) (*model.Assignment, error) {
	address = address.Normalize()
	if err := address.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "rooms.AssignRoom")
	defer span.End()
	span.SetAttributes(attribute.String("player.address", string(address)))

	now := s.clock.Now()
	assignment, err := s.storage.AssignRoom(ctx, address, model.NewRoom{
		Name:      s.roomName(),
		Capacity:  s.capacity,
		CreatedAt: now,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "assign room failed")
		return nil, fmt.Errorf("assign room for %s: %w", address, err)
	}

	span.SetAttributes(
		attribute.Int64("room.id", int64(assignment.RoomID)),
		attribute.Bool("room.created", assignment.Created),
		attribute.Bool("assignment.existing", assignment.Existing),
	)
	if assignment.Created {
		s.logger.Info("room created",
			"room_id", assignment.RoomID,
			"capacity", s.capacity,
		)
	}
	if !assignment.Existing {
		s.logger.Debug("player assigned to room",
			"address", address,
			"room_id", assignment.RoomID,
		)
	}
	return assignment, nil
}

// roomName builds a room-<yyyymmddhhmmss>-<suffix> name. Only used when the
// store needs a new room; uniqueness is enforced by the store.
func (s *Service) roomName() string {
	return fmt.Sprintf("room-%s-%s",
		s.clock.Now().UTC().Format(nameTimeLayout),
		s.random.String(NameSuffixLength, NameSuffixAlphabet),
	)
}

// GetRoomID returns the room a player was assigned to
func (s *Service) GetRoomID(ctx context.Context, address model.Address) (model.RoomID, error) {
	address = address.Normalize()
	if err := address.Validate(); err != nil {
		return 0, err
	}
	return s.storage.GetPlayerRoom(ctx, address)
}

// GetRoom retrieves a room by id
func (s *Service) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	if id < 1 {
		return nil, model.ErrInvalidRoomID
	}
	return s.storage.GetRoom(ctx, id)
}

// ListRooms returns every room in id order
func (s *Service) ListRooms(ctx context.Context) ([]*model.Room, error) {
	return s.storage.ListRooms(ctx)
}
