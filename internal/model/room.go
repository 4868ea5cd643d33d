package model

import "time"

// RoomID identifies a room. IDs are allocated sequentially starting at 1.
type RoomID int64

// RoomStatus tells whether a room can accept more players
type RoomStatus string

const (
	RoomStatusOpen RoomStatus = "open"
	RoomStatusFull RoomStatus = "full"
)

// DefaultRoomCapacity is the number of players a room holds unless configured otherwise
const DefaultRoomCapacity = 48

// Room is a capacity-bounded bucket of players sharing a leaderboard
type Room struct {
	ID        RoomID
	Name      string
	Capacity  int
	Occupants int
	Status    RoomStatus
	CreatedAt time.Time
}

// StatusFor derives the room status from its occupancy
func StatusFor(occupants, capacity int) RoomStatus {
	if occupants >= capacity {
		return RoomStatusFull
	}
	return RoomStatusOpen
}

// IsOpen reports whether the room has spare capacity
func (r *Room) IsOpen() bool {
	return r.Occupants < r.Capacity
}

// RoomMembership binds a player to a room. It is insert-only.
type RoomMembership struct {
	Address  Address
	RoomID   RoomID
	JoinedAt time.Time
}

// NewRoom describes the room storage should create if no open room exists
type NewRoom struct {
	Name      string
	Capacity  int
	CreatedAt time.Time
}

// Assignment is the outcome of a room assignment
type Assignment struct {
	RoomID RoomID
	// Existing is true when the player was already a member
	Existing bool
	// Created is true when a new room was opened for this assignment
	Created bool
}
