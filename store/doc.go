// Package store defines the [Store] interface for ephemeral TTL key/value
// backends and provides four implementations:
//
//   - [MemoryStore]: in-process map. Always available, lost on restart.
//   - [RedisStore]: shared remote backend over go-redis.
//   - [SQLiteStore]: durable local backend for single-instance deploys.
//   - [FallbackStore]: prefers a remote store and degrades, per call, to a
//     local one when the remote fails or times out.
//
// All implementations apply lazy expiry: an entry whose TTL has elapsed is
// reported as absent even if it has not been physically removed yet.
//
// Custom backends can be created by implementing the [Store] interface.
package store
