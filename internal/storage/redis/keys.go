package redis

import (
	"fmt"

	"github.com/mcoot/roomrank/internal/model"
)

// keys builds Redis keys under a prefix. The Lua scripts derive the same
// names from the prefix they receive in ARGV, see scripts.go.
type keys struct {
	prefix string
}

// player returns the HASH holding a player's record
func (k keys) player(addr model.Address) string {
	return fmt.Sprintf("%s:player:%s", k.prefix, addr)
}

// ranking returns the ZSET of best scores across all players
func (k keys) ranking() string {
	return fmt.Sprintf("%s:ranking", k.prefix)
}

// room returns the HASH holding a room's record
func (k keys) room(id model.RoomID) string {
	return fmt.Sprintf("%s:room:%d", k.prefix, id)
}

// roomMembers returns the SET of addresses in a room
func (k keys) roomMembers(id model.RoomID) string {
	return fmt.Sprintf("%s:room:%d:members", k.prefix, id)
}

// rooms returns the ZSET of all room ids, scored by id
func (k keys) rooms() string {
	return fmt.Sprintf("%s:rooms", k.prefix)
}

// memberships returns the HASH of address -> room id
func (k keys) memberships() string {
	return fmt.Sprintf("%s:membership", k.prefix)
}

// invitation returns the HASH holding the invitation for an invitee
func (k keys) invitation(invitee model.Address) string {
	return fmt.Sprintf("%s:invitation:%s", k.prefix, invitee)
}

// invitees returns the SET of addresses invited by an inviter
func (k keys) invitees(inviter model.Address) string {
	return fmt.Sprintf("%s:inviter:%s:invitees", k.prefix, inviter)
}
