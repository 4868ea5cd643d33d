package model

import (
	"errors"
	"fmt"
)

// Error classes. Every domain error wraps exactly one of these so callers
// can classify with errors.Is. Anything else is a storage failure.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

var (
	// Input errors
	ErrInvalidAddress      = fmt.Errorf("%w: user address is required", ErrValidation)
	ErrInvalidScore        = fmt.Errorf("%w: score must be a non-negative integer", ErrValidation)
	ErrMissingScore        = fmt.Errorf("%w: score is required", ErrValidation)
	ErrInvalidTokenBalance = fmt.Errorf("%w: token balance must be a non-negative number", ErrValidation)
	ErrMissingTokenBalance = fmt.Errorf("%w: token balance is required", ErrValidation)
	ErrInvalidRoomID       = fmt.Errorf("%w: room id must be a positive integer", ErrValidation)
	ErrRoomRequired        = fmt.Errorf("%w: room id is required", ErrValidation)
	ErrInvalidInviteCode   = fmt.Errorf("%w: invite code is malformed", ErrValidation)
	ErrSelfInvitation      = fmt.Errorf("%w: a player cannot invite themselves", ErrValidation)
	ErrNoValidInvitation   = fmt.Errorf("%w: no valid invitation for this address", ErrValidation)

	// Lookup errors
	ErrPlayerNotFound = fmt.Errorf("player %w", ErrNotFound)
	ErrRoomNotFound   = fmt.Errorf("room %w", ErrNotFound)
	ErrNotInRoom      = fmt.Errorf("room membership %w", ErrNotFound)

	// Uniqueness errors
	ErrDuplicateInvitation = fmt.Errorf("%w: invitation already exists for this invitee", ErrConflict)

	// Storage could not open a room for a new player
	ErrCapacityExhausted = errors.New("no room capacity available")
)
