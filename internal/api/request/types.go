package request

// AddressRequest is the request body for endpoints keyed by a player address
type AddressRequest struct {
	UserAddress string `json:"userAddress"`
}

// SubmitScoreRequest is the request body for submitting a score.
// Numeric fields are pointers so that a missing field is not read as zero.
type SubmitScoreRequest struct {
	UserAddress  string   `json:"userAddress"`
	Score        *float64 `json:"score"`
	TokenBalance *float64 `json:"tokenBalance"`
}

// SubmitInviteRequest is the request body for recording an invitation
type SubmitInviteRequest struct {
	Code string `json:"code"`
}

// ApplyBonusRequest is the request body for applying a referral bonus
type ApplyBonusRequest struct {
	InviteeAddress string   `json:"inviteeAddress"`
	Score          *float64 `json:"score"`
}
