package model

import (
	"strings"
	"time"
)

// Address uniquely identifies a player. It is an opaque string supplied by the client
// (typically a wallet address) and is never interpreted by the server.
type Address string

// Normalize trims surrounding whitespace
func (a Address) Normalize() Address {
	return Address(strings.TrimSpace(string(a)))
}

// Validate returns ErrInvalidAddress for blank addresses
func (a Address) Validate() error {
	if a.Normalize() == "" {
		return ErrInvalidAddress
	}
	return nil
}

// Player is a participant's durable record
type Player struct {
	Address       Address
	Score         int64   // best score, never decreases
	TokenBalance  float64 // last submitted value
	GamesPlayed   int64
	BonusReceived bool // set once a referral bonus was credited as invitee
	UpdatedAt     time.Time
}

// ScoreUpdate is a single score submission as handed to storage.
// ReferralBonus is credited to both invitee and inviter if the submitter
// has an invitation whose bonus has not been applied yet.
type ScoreUpdate struct {
	Address       Address
	Score         int64
	TokenBalance  float64
	ReferralBonus int64
	At            time.Time
}

// ScoreResult is the outcome of a score submission
type ScoreResult struct {
	Address     Address
	BestScore   int64
	GamesPlayed int64
	// Referral holds the bonus credited by this submission, nil if none
	Referral *BonusAward
}

// Standing is one row of a ranking
type Standing struct {
	Address Address
	Score   int64
}
