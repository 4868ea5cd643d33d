package redis

import "github.com/redis/go-redis/v9"

// Every script receives the key prefix as ARGV[1] and derives key names from
// it the same way keys.go does. Each script runs atomically on the server,
// which is what makes the check-then-write sequences safe under concurrency.

// luaHelpers is prepended to scripts that touch player records
const luaHelpers = `
local function ensure_player(prefix, addr, now)
  local key = prefix .. ':player:' .. addr
  if redis.call('EXISTS', key) == 0 then
    redis.call('HSET', key, 'score', '0', 'token_balance', '0', 'games_played', '0',
      'bonus_received', '0', 'updated_at', now)
    redis.call('ZADD', prefix .. ':ranking', 0, addr)
  end
  return key
end

local function apply_referral(prefix, invitee, bonus, now)
  local ikey = prefix .. ':invitation:' .. invitee
  local inviter = redis.call('HGET', ikey, 'inviter')
  if not inviter then
    return false
  end
  if redis.call('HGET', ikey, 'bonus_applied') == '1' then
    return false
  end
  redis.call('HSET', ikey, 'bonus_applied', '1')

  local pkey = ensure_player(prefix, invitee, now)
  redis.call('HINCRBY', pkey, 'score', bonus)
  redis.call('HSET', pkey, 'bonus_received', '1')
  redis.call('ZINCRBY', prefix .. ':ranking', bonus, invitee)

  local rkey = ensure_player(prefix, inviter, now)
  redis.call('HINCRBY', rkey, 'score', bonus)
  redis.call('ZINCRBY', prefix .. ':ranking', bonus, inviter)
  return inviter
end
`

// submitScoreScript: ARGV prefix, address, score, token balance, bonus, now.
// Returns {best, games_played[, inviter]}.
var submitScoreScript = redis.NewScript(luaHelpers + `
local prefix, addr, score, balance, bonus, now = ARGV[1], ARGV[2], ARGV[3], ARGV[4], ARGV[5], ARGV[6]
local pkey = ensure_player(prefix, addr, now)

if tonumber(score) > tonumber(redis.call('HGET', pkey, 'score')) then
  redis.call('HSET', pkey, 'score', score)
  redis.call('ZADD', prefix .. ':ranking', score, addr)
end
redis.call('HSET', pkey, 'token_balance', balance, 'updated_at', now)
local games = redis.call('HINCRBY', pkey, 'games_played', 1)

local inviter = apply_referral(prefix, addr, bonus, now)
local best = redis.call('HGET', pkey, 'score')
if inviter then
  return {best, games, inviter}
end
return {best, games}
`)

// applyBonusScript: ARGV prefix, invitee, bonus, now.
// Returns {-1} without invitation, {0} if already applied, {1, inviter} on award.
var applyBonusScript = redis.NewScript(luaHelpers + `
local prefix, invitee, bonus, now = ARGV[1], ARGV[2], ARGV[3], ARGV[4]
if redis.call('EXISTS', prefix .. ':invitation:' .. invitee) == 0 then
  return {-1}
end
local inviter = apply_referral(prefix, invitee, bonus, now)
if inviter then
  return {1, inviter}
end
return {0}
`)

// assignRoomScript: ARGV prefix, address, new room name, new room capacity, now.
// Returns {room_id, existing, created}.
var assignRoomScript = redis.NewScript(`
local prefix, addr, name, capacity, now = ARGV[1], ARGV[2], ARGV[3], ARGV[4], ARGV[5]

local existing = redis.call('HGET', prefix .. ':membership', addr)
if existing then
  return {tonumber(existing), 1, 0}
end

local id
local created = 0
local open = redis.call('ZRANGE', prefix .. ':rooms:open', 0, 0)
if #open == 0 then
  if tonumber(capacity) <= 0 then
    return redis.error_reply('CAPACITY room capacity must be positive')
  end
  if redis.call('SADD', prefix .. ':room-names', name) == 0 then
    return redis.error_reply('CAPACITY room name already taken')
  end
  id = redis.call('INCR', prefix .. ':rooms:seq')
  redis.call('HSET', prefix .. ':room:' .. id, 'name', name, 'capacity', capacity,
    'occupants', '0', 'status', 'open', 'created_at', now)
  redis.call('ZADD', prefix .. ':rooms', id, id)
  redis.call('ZADD', prefix .. ':rooms:open', id, id)
  created = 1
else
  id = tonumber(open[1])
end

local rkey = prefix .. ':room:' .. id
local occupants = redis.call('HINCRBY', rkey, 'occupants', 1)
redis.call('SADD', rkey .. ':members', addr)
redis.call('HSET', prefix .. ':membership', addr, id)
if occupants >= tonumber(redis.call('HGET', rkey, 'capacity')) then
  redis.call('HSET', rkey, 'status', 'full')
  redis.call('ZREM', prefix .. ':rooms:open', id)
end
return {id, 0, created}
`)

// createInvitationScript: ARGV prefix, invitee, inviter, now. Returns 1 if created.
var createInvitationScript = redis.NewScript(`
local prefix, invitee, inviter, now = ARGV[1], ARGV[2], ARGV[3], ARGV[4]
local ikey = prefix .. ':invitation:' .. invitee
if redis.call('EXISTS', ikey) == 1 then
  return 0
end
redis.call('HSET', ikey, 'inviter', inviter, 'bonus_applied', '0', 'created_at', now)
redis.call('SADD', prefix .. ':inviter:' .. inviter .. ':invitees', invitee)
return 1
`)
