package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case RoomIDResult:
		fmt.Fprintf(o.w, "Room: %d\n", v.RoomID)
	case Room:
		o.printRoom(v)
	case RoomList:
		o.printRooms(v)
	case SubmitScoreResult:
		o.printSubmitScore(v)
	case Standing:
		fmt.Fprintf(o.w, "%s: %d\n", v.UserAddress, v.Score)
	case PlayerStats:
		fmt.Fprintf(o.w, "Player: %s\n", v.UserAddress)
		fmt.Fprintf(o.w, "Score: %d\n", v.Score)
		fmt.Fprintf(o.w, "Games Played: %d\n", v.GamesPlayed)
	case CheckUserResult:
		fmt.Fprintf(o.w, "New user: %t\n", v.IsNewUser)
	case InviteCode:
		fmt.Fprintln(o.w, v.Code)
	case MessageResult:
		fmt.Fprintln(o.w, v.Message)
	case ApplyBonusResult:
		o.printApplyBonus(v)
	case InviteCountResult:
		fmt.Fprintf(o.w, "Invites: %d\n", v.InviteCount)
	case Ranking:
		o.printRanking(v)
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// RoomIDResult response type
type RoomIDResult struct {
	RoomID int64 `json:"roomId"`
}

// Room response type
type Room struct {
	RoomID    int64     `json:"roomId"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	Occupants int       `json:"occupants"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// RoomList response type
type RoomList []Room

// SubmitScoreResult response type
type SubmitScoreResult struct {
	Message       string `json:"message"`
	Score         int64  `json:"score"`
	GamesPlayed   int64  `json:"gamesPlayed"`
	ReferralBonus int64  `json:"referralBonus"`
}

// Standing response type
type Standing struct {
	UserAddress string `json:"userAddress"`
	Score       int64  `json:"score"`
}

// Ranking is a leaderboard or hall of fame
type Ranking []Standing

// PlayerStats response type
type PlayerStats struct {
	UserAddress string `json:"userAddress"`
	Score       int64  `json:"score"`
	GamesPlayed int64  `json:"gamesPlayed"`
}

// CheckUserResult response type
type CheckUserResult struct {
	IsNewUser bool `json:"isNewUser"`
}

// InviteCode is produced locally by invite-code
type InviteCode struct {
	Code string `json:"code"`
}

// MessageResult response type
type MessageResult struct {
	Message string `json:"message"`
}

// ApplyBonusResult response type
type ApplyBonusResult struct {
	Message string `json:"message"`
	Applied bool   `json:"applied"`
	Bonus   int64  `json:"bonus"`
}

// InviteCountResult response type
type InviteCountResult struct {
	InviteCount int `json:"inviteCount"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printRoom(r Room) {
	fmt.Fprintf(o.w, "Room: %d (%s)\n", r.RoomID, r.Name)
	fmt.Fprintf(o.w, "Occupancy: %d/%d\n", r.Occupants, r.Capacity)
	fmt.Fprintf(o.w, "Status: %s\n", r.Status)
	fmt.Fprintf(o.w, "Created: %s\n", r.CreatedAt.Format(time.RFC3339))
}

func (o *Output) printRooms(rooms RoomList) {
	if len(rooms) == 0 {
		fmt.Fprintln(o.w, "No rooms")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tOCCUPANCY\tSTATUS")
	for _, r := range rooms {
		fmt.Fprintf(tw, "%d\t%s\t%d/%d\t%s\n", r.RoomID, r.Name, r.Occupants, r.Capacity, r.Status)
	}
	_ = tw.Flush()
}

func (o *Output) printSubmitScore(s SubmitScoreResult) {
	fmt.Fprintln(o.w, s.Message)
	fmt.Fprintf(o.w, "Best Score: %d\n", s.Score)
	fmt.Fprintf(o.w, "Games Played: %d\n", s.GamesPlayed)
	if s.ReferralBonus > 0 {
		fmt.Fprintf(o.w, "Referral Bonus: %d\n", s.ReferralBonus)
	}
}

func (o *Output) printApplyBonus(b ApplyBonusResult) {
	fmt.Fprintln(o.w, b.Message)
	if b.Applied {
		fmt.Fprintf(o.w, "Bonus: %d\n", b.Bonus)
	}
}

func (o *Output) printRanking(rows Ranking) {
	if len(rows) == 0 {
		fmt.Fprintln(o.w, "No scores yet")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPLAYER\tSCORE")
	for i, row := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", i+1, row.UserAddress, row.Score)
	}
	_ = tw.Flush()
}
