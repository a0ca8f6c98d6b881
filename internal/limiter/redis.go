package limiter

import (
    "context"
    "log"
    "time"

    "github.com/redis/go-redis/v9"
)

// fixed window: the key's TTL is the window; the counter only grows while
// the key lives and the whole bucket vanishes at expiry
var windowScript = redis.NewScript(`
    local key = KEYS[1]
    local max = tonumber(ARGV[1])
    local window_ms = tonumber(ARGV[2])

    local count = tonumber(redis.call('GET', key))
    if count == nil then
        redis.call('SET', key, 1, 'PX', window_ms)
        return { 1, 0 }
    end
    if count < max then
        redis.call('INCR', key)
        return { 1, 0 }
    end
    local ttl = redis.call('PTTL', key)
    if ttl < 0 then ttl = 0 end
    return { 0, ttl }
`)

// Redis is the shared-store Limiter for deployments running more than one
// process.  The whole check-and-consume runs as one Lua script, so attempts
// from different processes never interleave on a key.  Redis being down
// fails open: throttling brute force is not worth refusing all logins.
type Redis struct {
    client *redis.Client
    prefix string
}

// NewRedis wraps an existing client.  Keys are namespaced under the prefix.
func NewRedis(client *redis.Client, prefix string) *Redis {
    if prefix == "" {
        prefix = "rl"
    }
    return &Redis{client: client, prefix: prefix}
}

// Allow consumes one attempt under key with the same fixed-window semantics
// as the in-process limiter.
func (r *Redis) Allow(ctx context.Context, key string, max int, window time.Duration) (bool, time.Duration) {
    vals, err := windowScript.Run(ctx, r.client, []string{r.prefix + ":" + key},
        max, window.Milliseconds()).Result()
    if err != nil {
        log.Printf("limiter: redis error for key=%s: %v", key, err)
        return true, 0
    }
    allowed, retryAfter, ok := parseScriptResult(vals)
    if !ok {
        log.Printf("limiter: unexpected script result for key=%s: %#v", key, vals)
        return true, 0
    }
    return allowed, retryAfter
}

// parseScriptResult decodes the {allowed, retry_ms} pair the script returns.
// Anything that is not exactly two integers reports !ok so the caller can
// fail open rather than block on a shape it does not understand.
func parseScriptResult(vals interface{}) (allowed bool, retryAfter time.Duration, ok bool) {
    arr, isArr := vals.([]interface{})
    if !isArr || len(arr) != 2 {
        return false, 0, false
    }
    a, aok := arr[0].(int64)
    ms, mok := arr[1].(int64)
    if !aok || !mok {
        return false, 0, false
    }
    return a == 1, time.Duration(ms) * time.Millisecond, true
}
