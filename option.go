package ephemeral

import (
	"log/slog"
	"time"

	"github.com/orbeelabs/ephemeral/store"
)

// Option configures a [Core].
type Option func(*Core)

// WithStore sets the backing store. If not provided, an in-memory store is
// used by default.
func WithStore(s store.Store) Option {
	return func(c *Core) {
		c.store = s
	}
}

// WithLogger sets the logger used by the services and the sweeper.
// Defaults to [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(c *Core) {
		c.logger = l
	}
}

// WithLimit overrides the quota for one category.
func WithLimit(category Category, l Limit) Option {
	return func(c *Core) {
		c.limits[category] = l
	}
}

// WithTokenTTL sets the confirmation token validity window. Defaults to
// [DefaultTokenTTL].
func WithTokenTTL(ttl time.Duration) Option {
	return func(c *Core) {
		c.tokenTTL = ttl
	}
}

// WithSweepInterval sets how often the sweeper removes expired entries.
// A non-positive interval disables sweeping. Defaults to 5 minutes.
func WithSweepInterval(d time.Duration) Option {
	return func(c *Core) {
		c.sweepEvery = d
	}
}

// WithNowFunc overrides the clock used by the services. Intended for tests
// that need to advance time past a window or a token's expiry.
func WithNowFunc(now func() time.Time) Option {
	return func(c *Core) {
		c.now = now
	}
}
