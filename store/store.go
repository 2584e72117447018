package store

import (
	"context"
	"time"
)

// Store is the contract for ephemeral key/value backends. Every entry
// carries an absolute expiry; implementations must treat an expired entry
// as absent even before it has been physically removed (lazy expiry).
//
// All methods are safe for concurrent use.
type Store interface {
	// Get returns the value stored under key. found is false when the key
	// is absent or its TTL has elapsed; an ordinary miss is not an error.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// SetWithTTL stores value under key, overwriting any existing entry.
	// The entry expires ttl from now.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the entry for key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Increment atomically adds amount to the integer counter stored under
	// key. If the key is absent or expired, the counter is created with
	// value amount and expiry ttlIfAbsent from now; otherwise the existing
	// expiry is preserved, so a counting window never extends on increment.
	// resetAt is the entry's expiry after the operation.
	Increment(ctx context.Context, key string, amount int64, ttlIfAbsent time.Duration) (count int64, resetAt time.Time, err error)

	// GetDelete atomically returns and removes the value stored under key.
	// found is false when the key is absent or expired. At most one of N
	// concurrent callers observes found == true for a given entry.
	GetDelete(ctx context.Context, key string) (value []byte, found bool, err error)

	// Close releases any resources held by the store.
	Close() error
}

// Purger is implemented by backends whose expired entries linger until
// removed in bulk. Lazy expiry keeps lingering entries invisible to reads,
// so purging bounds memory growth rather than enforcing correctness.
type Purger interface {
	// PurgeExpired removes entries whose expiry has passed and reports how
	// many were removed.
	PurgeExpired(ctx context.Context) (removed int, err error)
}
