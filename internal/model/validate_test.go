package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestParseScore(t *testing.T) {
	tests := []struct {
		name    string
		score   *float64
		want    int64
		wantErr error
	}{
		{"zero is valid", ptr(0), 0, nil},
		{"positive integer", ptr(1234), 1234, nil},
		{"max score", ptr(MaxScore), MaxScore, nil},
		{"missing", nil, 0, ErrMissingScore},
		{"negative", ptr(-5), 0, ErrInvalidScore},
		{"fractional", ptr(1.5), 0, ErrInvalidScore},
		{"too large", ptr(MaxScore * 2), 0, ErrInvalidScore},
		{"nan", ptr(math.NaN()), 0, ErrInvalidScore},
		{"infinite", ptr(math.Inf(1)), 0, ErrInvalidScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseScore(tt.score)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTokenBalance(t *testing.T) {
	got, err := ParseTokenBalance(ptr(0.25))
	require.NoError(t, err)
	assert.Equal(t, 0.25, got)

	_, err = ParseTokenBalance(nil)
	assert.ErrorIs(t, err, ErrMissingTokenBalance)

	_, err = ParseTokenBalance(ptr(-1))
	assert.ErrorIs(t, err, ErrInvalidTokenBalance)

	_, err = ParseTokenBalance(ptr(math.Inf(1)))
	assert.ErrorIs(t, err, ErrInvalidTokenBalance)
}

func TestAddressValidate(t *testing.T) {
	assert.ErrorIs(t, Address("  ").Validate(), ErrInvalidAddress)
	assert.NoError(t, Address("0xabc").Validate())
	assert.Equal(t, Address("0xabc"), Address(" 0xabc\n").Normalize())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, RoomStatusOpen, StatusFor(1, 2))
	assert.Equal(t, RoomStatusFull, StatusFor(2, 2))
}
