package redis

import "github.com/redis/go-redis/v9"

// Result codes shared by the edge scripts.
const (
	scriptMissingFirst  = -1 // first endpoint does not exist
	scriptMissingSecond = -2 // second endpoint does not exist
	scriptNoop          = 0  // edge already present (add) or absent (remove)
	scriptApplied       = 1
)

// createReferenceScript inserts a named reference record under a
// pre-allocated id if the name is free.
//
// KEYS[1] names hash, KEYS[2] index zset, KEYS[3] record
// ARGV[1] name, ARGV[2] id
// Returns 1 on insert, 0 if the name is taken.
var createReferenceScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 1 then
	return 0
end
redis.call('SET', KEYS[3], ARGV[1])
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
redis.call('ZADD', KEYS[2], ARGV[2], ARGV[2])
return 1
`)

// addLikeScript records a like and bumps the film's popularity score.
//
// KEYS[1] film, KEYS[2] user, KEYS[3] film likes, KEYS[4] user likes, KEYS[5] popularity
// ARGV[1] film id, ARGV[2] user id
var addLikeScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
if redis.call('EXISTS', KEYS[2]) == 0 then
	return -2
end
if redis.call('SADD', KEYS[3], ARGV[2]) == 0 then
	return 0
end
redis.call('SADD', KEYS[4], ARGV[1])
redis.call('ZINCRBY', KEYS[5], 1, ARGV[1])
return 1
`)

// removeLikeScript is the inverse of addLikeScript; same keys and arguments.
var removeLikeScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
if redis.call('EXISTS', KEYS[2]) == 0 then
	return -2
end
if redis.call('SREM', KEYS[3], ARGV[2]) == 0 then
	return 0
end
redis.call('SREM', KEYS[4], ARGV[1])
redis.call('ZINCRBY', KEYS[5], -1, ARGV[1])
return 1
`)

// addFriendScript links two users in both directions.
//
// KEYS[1] user, KEYS[2] friend, KEYS[3] user friends, KEYS[4] friend friends
// ARGV[1] user id, ARGV[2] friend id
var addFriendScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
if redis.call('EXISTS', KEYS[2]) == 0 then
	return -2
end
if redis.call('SADD', KEYS[3], ARGV[2]) == 0 then
	return 0
end
redis.call('SADD', KEYS[4], ARGV[1])
return 1
`)

// removeFriendScript unlinks two users; same keys and arguments as addFriendScript.
var removeFriendScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
if redis.call('EXISTS', KEYS[2]) == 0 then
	return -2
end
if redis.call('SREM', KEYS[3], ARGV[2]) == 0 then
	return 0
end
redis.call('SREM', KEYS[4], ARGV[1])
return 1
`)
