package invitation

import (
	"encoding/base64"
	"strings"

	"github.com/mcoot/roomrank/internal/model"
)

// codeSeparator joins inviter and invitee inside an invite code
const codeSeparator = "\n"

// EncodeCode builds the invite code an inviter hands to an invitee:
// base64url without padding of inviter + "\n" + invitee.
func EncodeCode(inviter, invitee model.Address) string {
	raw := string(inviter.Normalize()) + codeSeparator + string(invitee.Normalize())
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCode extracts (inviter, invitee) from an invite code
func DecodeCode(code string) (inviter, invitee model.Address, err error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(code))
	if err != nil {
		return "", "", model.ErrInvalidInviteCode
	}
	before, after, found := strings.Cut(string(raw), codeSeparator)
	if !found {
		return "", "", model.ErrInvalidInviteCode
	}
	inviter = model.Address(before).Normalize()
	invitee = model.Address(after).Normalize()
	if inviter == "" || invitee == "" || strings.Contains(string(invitee), codeSeparator) {
		return "", "", model.ErrInvalidInviteCode
	}
	return inviter, invitee, nil
}
