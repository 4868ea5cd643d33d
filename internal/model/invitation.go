package model

import "time"

// Invitation records that Inviter referred Invitee. There is at most one per invitee.
type Invitation struct {
	Invitee      Address
	Inviter      Address
	BonusApplied bool
	CreatedAt    time.Time
}

// BonusRequest asks storage to apply an invitation's referral bonus if still pending
type BonusRequest struct {
	Invitee Address
	Bonus   int64
	At      time.Time
}

// BonusAward describes a referral bonus that was credited
type BonusAward struct {
	Invitee Address
	Inviter Address
	Amount  int64
}
