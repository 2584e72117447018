package ephemeral

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/orbeelabs/ephemeral/store"
)

// Core owns the store stack and the two services built on it. Construction
// is explicit: the store, the sweeper goroutine and both services are wired
// here and torn down together by Close, never referenced as ambient
// singletons.
type Core struct {
	store   store.Store
	limiter *RateLimiter
	tokens  *TokenService
	logger  *slog.Logger

	limits   map[Category]Limit
	tokenTTL time.Duration
	now      func() time.Time

	sweepEvery time.Duration
	stopSweep  chan struct{}
	sweepDone  chan struct{}
	closeOnce  sync.Once
}

// New creates a Core with the given options. If no store is provided, an
// in-memory store is used.
func New(opts ...Option) *Core {
	c := &Core{
		limits:     DefaultLimits(),
		tokenTTL:   DefaultTokenTTL,
		now:        time.Now,
		sweepEvery: 5 * time.Minute,
		stopSweep:  make(chan struct{}),
		sweepDone:  make(chan struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.store == nil {
		// The default store shares the Core's clock so that services and
		// storage agree about "now" under a test clock.
		c.store = store.NewMemoryStore(store.WithNowFunc(c.now))
	}
	if c.tokenTTL <= 0 {
		c.tokenTTL = DefaultTokenTTL
	}

	c.limiter = &RateLimiter{store: c.store, limits: c.limits, logger: c.logger, now: c.now}
	c.tokens = &TokenService{store: c.store, ttl: c.tokenTTL, now: c.now}

	go c.sweep()
	return c
}

// FromConfig builds a Core with the store stack the configuration selects:
// an in-memory or SQLite local backend, wrapped by a Redis-preferring
// fallback when RedisURL is set. An unreachable Redis at startup is logged
// and skipped; the remote backend is preferred, never required.
func FromConfig(ctx context.Context, cfg Config, opts ...Option) (*Core, error) {
	logger := slog.Default()

	var local store.Store
	if cfg.SQLitePath != "" {
		s, err := store.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("ephemeral: open local backend: %w", err)
		}
		local = s
	} else {
		local = store.NewMemoryStore()
	}

	backing := local
	if cfg.RedisURL != "" {
		remote, err := store.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, running on local backend only", "err", err)
		} else {
			backing = store.NewFallbackStore(remote, local,
				store.WithRemoteTimeout(cfg.RemoteTimeout),
				store.WithLogger(logger),
			)
		}
	}

	base := []Option{
		WithStore(backing),
		WithTokenTTL(cfg.TokenTTL),
		WithSweepInterval(cfg.SweepInterval),
	}
	return New(append(base, opts...)...), nil
}

// Limiter returns the rate limiter.
func (c *Core) Limiter() *RateLimiter {
	return c.limiter
}

// Tokens returns the confirmation token service.
func (c *Core) Tokens() *TokenService {
	return c.tokens
}

// Store returns the backing store.
func (c *Core) Store() store.Store {
	return c.store
}

// sweep periodically removes expired entries from backends that keep them
// around. Sweeping only deletes dead entries, so it cannot race
// destructively with foreground operations.
func (c *Core) sweep() {
	defer close(c.sweepDone)

	p, ok := c.store.(store.Purger)
	if !ok || c.sweepEvery <= 0 {
		return
	}

	t := time.NewTicker(c.sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-c.stopSweep:
			return
		case <-t.C:
			removed, err := p.PurgeExpired(context.Background())
			if err != nil {
				c.logger.Warn("sweep failed", "err", err)
				continue
			}
			if removed > 0 {
				c.logger.Debug("swept expired entries", "removed", removed)
			}
		}
	}
}

// Close stops the sweeper and releases the store. Calling Close more than
// once is a no-op.
func (c *Core) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.stopSweep)
		<-c.sweepDone
		err = c.store.Close()
	})
	return err
}
