package bonus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/roomrank/internal/model"
)

func standings(scores ...int64) []model.Standing {
	out := make([]model.Standing, len(scores))
	for i, s := range scores {
		out[i] = model.Standing{Address: model.Address(rune('a' + i)), Score: s}
	}
	return out
}

func scoresOf(rows []model.Standing) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.Score
	}
	return out
}

func TestReferral(t *testing.T) {
	assert.Equal(t, int64(0), Referral(0))
	assert.Equal(t, int64(0), Referral(1))
	assert.Equal(t, int64(50), Referral(101))
	assert.Equal(t, int64(50), Referral(100))
}

func TestApplyPositionBonus(t *testing.T) {
	tests := []struct {
		name string
		in   []int64
		want []int64
	}{
		{
			name: "sixth place sets the bonus",
			in:   []int64{100, 90, 80, 70, 60, 50, 40},
			want: []int64{105, 95, 85, 75, 65, 50, 45},
		},
		{
			name: "exactly six rows",
			in:   []int64{100, 90, 80, 70, 60, 50},
			want: []int64{105, 95, 85, 75, 65, 50},
		},
		{
			name: "fewer than six rows unchanged",
			in:   []int64{100, 90, 80, 70, 60},
			want: []int64{100, 90, 80, 70, 60},
		},
		{
			name: "bonus rounds down",
			in:   []int64{30, 29, 28, 27, 26, 19},
			want: []int64{31, 30, 29, 28, 27, 19},
		},
		{
			name: "small sixth score gives no bonus",
			in:   []int64{30, 20, 10, 9, 8, 7},
			want: []int64{30, 20, 10, 9, 8, 7},
		},
		{
			name: "empty",
			in:   []int64{},
			want: []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scoresOf(ApplyPositionBonus(standings(tt.in...))))
		})
	}
}

func TestApplyPositionBonusDoesNotMutateInput(t *testing.T) {
	in := standings(100, 90, 80, 70, 60, 50)
	out := ApplyPositionBonus(in)

	assert.Equal(t, []int64{100, 90, 80, 70, 60, 50}, scoresOf(in))
	assert.Equal(t, in[0].Address, out[0].Address)

	// applying twice to the same input gives the same view
	assert.Equal(t, out, ApplyPositionBonus(in))
}
