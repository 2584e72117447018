package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Compile-time interface check.
var _ Store = (*RedisStore)(nil)

// RedisStore is a Store backed by Redis. Expiry is delegated to Redis TTLs,
// so the server performs both lazy and active expiry on our behalf.
// Increment runs server-side as a Lua script; GetDelete maps to GETDEL.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed store around an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// DialRedis connects to the Redis instance named by a redis:// URL and
// verifies the connection with a ping before returning the store.
func DialRedis(ctx context.Context, url string) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("ephemeral/store: parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ephemeral/store: ping redis: %w", err)
	}
	return NewRedisStore(client), nil
}

// incrementScript atomically creates-or-increments a counter. A fresh key is
// set to the increment amount with the given TTL; an existing key is
// incremented with its remaining TTL untouched. Returns the new count and
// the remaining TTL in milliseconds.
//
// KEYS[1] = counter key
// ARGV[1] = amount
// ARGV[2] = ttl in milliseconds (applied only when the key is created)
var incrementScript = redis.NewScript(`
local key = KEYS[1]
local amount = tonumber(ARGV[1])
local ttl = tonumber(ARGV[2])

if redis.call("EXISTS", key) == 0 then
    redis.call("SET", key, amount, "PX", ttl)
    return {amount, ttl}
end

local count = redis.call("INCRBY", key, amount)
local remaining = redis.call("PTTL", key)
return {count, remaining}
`)

// Get returns the value stored under key.
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ephemeral/store: redis get: %w", err)
	}
	return val, true, nil
}

// SetWithTTL stores value under key with the given TTL.
func (r *RedisStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("ephemeral/store: redis set: %w", err)
	}
	return nil
}

// Delete removes the entry for key. Absent keys are a no-op.
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("ephemeral/store: redis del: %w", err)
	}
	return nil
}

// Increment atomically adds amount to the counter stored under key, creating
// it with expiry ttlIfAbsent when missing. The atomicity lives in the Lua
// script; this is never a client-side read-modify-write.
func (r *RedisStore) Increment(ctx context.Context, key string, amount int64, ttlIfAbsent time.Duration) (int64, time.Time, error) {
	res, err := incrementScript.Run(ctx, r.client, []string{key}, amount, ttlIfAbsent.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("ephemeral/store: redis increment: %w", err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("ephemeral/store: redis increment: unexpected reply of %d values", len(res))
	}
	count, remainingMillis := res[0], res[1]
	if remainingMillis < 0 {
		// PTTL reports -1 for keys without expiry; counters are always
		// created with one, so fall back to the window duration.
		remainingMillis = ttlIfAbsent.Milliseconds()
	}
	return count, time.Now().Add(time.Duration(remainingMillis) * time.Millisecond), nil
}

// GetDelete atomically returns and removes the value stored under key,
// using the server-side GETDEL primitive.
func (r *RedisStore) GetDelete(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.GetDel(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ephemeral/store: redis getdel: %w", err)
	}
	return val, true, nil
}

// Close closes the underlying Redis client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
