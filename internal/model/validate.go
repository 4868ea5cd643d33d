package model

import "math"

// MaxScore is the largest score accepted, the largest integer a JSON number
// carries exactly.
const MaxScore = 1 << 53

// ParseScore validates a submitted score. A nil score is missing; zero is a
// valid score.
func ParseScore(score *float64) (int64, error) {
	if score == nil {
		return 0, ErrMissingScore
	}
	v := *score
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > MaxScore || v != math.Trunc(v) {
		return 0, ErrInvalidScore
	}
	return int64(v), nil
}

// ParseTokenBalance validates a submitted token balance
func ParseTokenBalance(balance *float64) (float64, error) {
	if balance == nil {
		return 0, ErrMissingTokenBalance
	}
	v := *balance
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, ErrInvalidTokenBalance
	}
	return v, nil
}
