package response

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mcoot/roomrank/internal/model"
)

// JSON writes data as a JSON response with the given status
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Message is a response carrying only a human-readable message
type Message struct {
	Message string `json:"message"`
}

// RoomID is the response for room assignment and lookup
type RoomID struct {
	RoomID int64 `json:"roomId"`
}

// SubmitScore is the response after a score submission
type SubmitScore struct {
	Message       string `json:"message"`
	Score         int64  `json:"score"`
	GamesPlayed   int64  `json:"gamesPlayed"`
	ReferralBonus int64  `json:"referralBonus"`
}

// SubmitScoreFromModel converts a model.ScoreResult
func SubmitScoreFromModel(r *model.ScoreResult) SubmitScore {
	resp := SubmitScore{
		Message:     "Score submitted",
		Score:       r.BestScore,
		GamesPlayed: r.GamesPlayed,
	}
	if r.Referral != nil {
		resp.ReferralBonus = r.Referral.Amount
	}
	return resp
}

// Standing is one ranked row
type Standing struct {
	UserAddress string `json:"userAddress"`
	Score       int64  `json:"score"`
}

// StandingFromModel converts a model.Standing
func StandingFromModel(s model.Standing) Standing {
	return Standing{
		UserAddress: string(s.Address),
		Score:       s.Score,
	}
}

// StandingsFromModel converts a ranking, never returning nil
func StandingsFromModel(rows []model.Standing) []Standing {
	out := make([]Standing, len(rows))
	for i, s := range rows {
		out[i] = StandingFromModel(s)
	}
	return out
}

// PlayerStats is the response for a player's statistics
type PlayerStats struct {
	UserAddress string `json:"userAddress"`
	Score       int64  `json:"score"`
	GamesPlayed int64  `json:"gamesPlayed"`
}

// PlayerStatsFromModel converts a model.Player
func PlayerStatsFromModel(p *model.Player) PlayerStats {
	return PlayerStats{
		UserAddress: string(p.Address),
		Score:       p.Score,
		GamesPlayed: p.GamesPlayed,
	}
}

// CheckUser tells whether an address has never submitted a score
type CheckUser struct {
	IsNewUser bool `json:"isNewUser"`
}

// ApplyBonus is the response of the explicit bonus endpoint
type ApplyBonus struct {
	Message string `json:"message"`
	Applied bool   `json:"applied"`
	Bonus   int64  `json:"bonus"`
}

// ApplyBonusFromModel converts the outcome of a bonus application.
// A nil award means the bonus had already been applied.
func ApplyBonusFromModel(award *model.BonusAward) ApplyBonus {
	if award == nil {
		return ApplyBonus{Message: "Bonus already applied"}
	}
	return ApplyBonus{
		Message: "Bonus applied",
		Applied: true,
		Bonus:   award.Amount,
	}
}

// InviteCount is the number of invitations sent by a player
type InviteCount struct {
	InviteCount int `json:"inviteCount"`
}

// Room represents a room in API responses
type Room struct {
	RoomID    int64     `json:"roomId"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	Occupants int       `json:"occupants"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// RoomFromModel converts a model.Room
func RoomFromModel(r *model.Room) Room {
	return Room{
		RoomID:    int64(r.ID),
		Name:      r.Name,
		Capacity:  r.Capacity,
		Occupants: r.Occupants,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
	}
}

// RoomsFromModel converts a room list, never returning nil
func RoomsFromModel(rooms []*model.Room) []Room {
	out := make([]Room, len(rooms))
	for i, r := range rooms {
		out[i] = RoomFromModel(r)
	}
	return out
}

// Health is the health check response
type Health struct {
	Status string `json:"status"`
}
