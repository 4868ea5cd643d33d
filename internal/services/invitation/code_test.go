package invitation

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/roomrank/internal/model"
)

func TestCodeRoundTrip(t *testing.T) {
	code := EncodeCode("0xinviter", "0xinvitee")
	assert.NotContains(t, code, "=")

	inviter, invitee, err := DecodeCode(code)
	require.NoError(t, err)
	assert.Equal(t, model.Address("0xinviter"), inviter)
	assert.Equal(t, model.Address("0xinvitee"), invitee)
}

func TestDecodeCodeRejectsMalformed(t *testing.T) {
	enc := base64.RawURLEncoding.EncodeToString
	tests := map[string]string{
		"not base64":      "!!!",
		"no separator":    enc([]byte("alice")),
		"blank inviter":   enc([]byte(" \nbob")),
		"blank invitee":   enc([]byte("alice\n")),
		"extra separator": enc([]byte("alice\nbob\ncarol")),
		"padded":          base64.URLEncoding.EncodeToString([]byte("alice\nbo")),
	}

	for name, code := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := DecodeCode(code)
			assert.ErrorIs(t, err, model.ErrInvalidInviteCode)
		})
	}
}
