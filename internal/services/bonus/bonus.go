// Package bonus holds the score bonus rules. Both functions are pure.
package bonus

import "github.com/mcoot/roomrank/internal/model"

const (
	// PositionBonusRank is the 1-based rank whose score sets the position bonus
	PositionBonusRank = 6
	// PositionBonusDivisor divides the reference score into the bonus
	PositionBonusDivisor = 10
)

// Referral returns the bonus credited to both sides of an invitation when
// the invitee submits score: half of it, rounded down.
func Referral(score int64) int64 {
	if score <= 0 {
		return 0
	}
	return score / 2
}

// ApplyPositionBonus returns a copy of standings in which every row except
// the sixth gains a tenth of the sixth-ranked score, rounded down. With fewer
// than six rows the copy is unchanged. The input is never modified.
func ApplyPositionBonus(standings []model.Standing) []model.Standing {
	out := make([]model.Standing, len(standings))
	copy(out, standings)
	if len(out) < PositionBonusRank {
		return out
	}

	ref := out[PositionBonusRank-1].Score
	b := ref / PositionBonusDivisor
	if b <= 0 {
		return out
	}
	for i := range out {
		if i == PositionBonusRank-1 {
			continue
		}
		out[i].Score += b
	}
	return out
}
