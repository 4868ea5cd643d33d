package storage

import (
	"context"

	"github.com/mcoot/roomrank/internal/model"
)

// Storage defines the interface for data persistence.
//
// Every mutating method is a single atomic unit against the backing store:
// concurrent callers never observe a partially applied operation, and the
// check-then-write sequences described on each method are not split into
// separate round trips.
type Storage interface {
	// Player operations

	// SubmitScore upserts the player's record: best score becomes
	// max(stored, submitted), token balance is overwritten, games played
	// increases by one. If the player has a pending invitation, the
	// invitation is marked applied and update.ReferralBonus is credited to
	// both the player and the inviter in the same unit.
	SubmitScore(ctx context.Context, update model.ScoreUpdate) (*model.ScoreResult, error)
	GetPlayer(ctx context.Context, address model.Address) (*model.Player, error)

	// Room operations

	// AssignRoom returns the player's existing room, or places the player in
	// the lowest-id room with spare capacity, creating a room from newRoom when
	// every room is full. The capacity check and membership insert are atomic.
	AssignRoom(ctx context.Context, address model.Address, newRoom model.NewRoom) (*model.Assignment, error)
	GetPlayerRoom(ctx context.Context, address model.Address) (model.RoomID, error)
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	ListRooms(ctx context.Context) ([]*model.Room, error)

	// Invitation operations

	// CreateInvitation fails with model.ErrDuplicateInvitation if the invitee
	// already has an invitation.
	CreateInvitation(ctx context.Context, inv *model.Invitation) error
	GetInvitation(ctx context.Context, invitee model.Address) (*model.Invitation, error)
	CountInvitations(ctx context.Context, inviter model.Address) (int, error)

	// ApplyReferralBonus flips the invitation's applied flag if it is still
	// unset and credits req.Bonus to invitee and inviter. Returns nil award
	// when the bonus had already been applied, model.ErrNoValidInvitation
	// when there is no invitation for the invitee.
	ApplyReferralBonus(ctx context.Context, req model.BonusRequest) (*model.BonusAward, error)

	// Ranking operations, ordered by score descending then address ascending

	TopPlayers(ctx context.Context, limit int) ([]model.Standing, error)
	TopPlayersInRoom(ctx context.Context, roomID model.RoomID, limit int) ([]model.Standing, error)

	// Close releases the underlying connections
	Close() error
}
