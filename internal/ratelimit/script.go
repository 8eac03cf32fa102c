package ratelimit

// incrScript atomically increments the fixed-window counter at KEYS[1],
// setting its expiry to ARGV[1] seconds only on the first increment in the
// window, and returns {post-increment count, remaining TTL in ms}. Grounded on the teacher's
// pattern of pushing invariant-sensitive read-modify-write sequences into a
// single round trip (internal/server/ratelimit.go's in-process counter,
// here made atomic across processes via a Lua script, the idiomatic
// go-redis way to avoid a GET-then-SET race).
const incrScript = `
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {count, ttl}
`
