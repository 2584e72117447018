package store

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Compile-time interface checks.
var (
	_ Store  = (*FallbackStore)(nil)
	_ Purger = (*FallbackStore)(nil)
)

// FallbackStore prefers a remote Store and degrades to a local Store, one
// call at a time. Each remote attempt carries a short timeout and is made
// exactly once: any failure is logged at warning level and the same
// operation runs against the local store instead, so a degraded remote
// never surfaces to callers and never turns a check into an unbounded wait.
//
// While degraded, counters and tokens live in the local store only, so
// counts are per-process rather than shared. That is the accepted trade:
// availability over exactness.
type FallbackStore struct {
	remote  Store
	local   Store
	timeout time.Duration
	logger  *slog.Logger
}

// FallbackOption configures a FallbackStore.
type FallbackOption func(*FallbackStore)

// WithRemoteTimeout bounds each remote attempt. Non-positive values keep
// the 2s default.
func WithRemoteTimeout(d time.Duration) FallbackOption {
	return func(f *FallbackStore) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithLogger sets the logger used for degradation warnings.
func WithLogger(l *slog.Logger) FallbackOption {
	return func(f *FallbackStore) {
		f.logger = l
	}
}

// NewFallbackStore creates a store that serves from remote when it can and
// from local when it must.
func NewFallbackStore(remote, local Store, opts ...FallbackOption) *FallbackStore {
	f := &FallbackStore{
		remote:  remote,
		local:   local,
		timeout: 2 * time.Second,
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

func (f *FallbackStore) degraded(op string, err error) {
	f.logger.Warn("remote store degraded, serving from local", "op", op, "err", err)
}

// Get reads from the remote store, falling back to local on failure.
func (f *FallbackStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	rctx, cancel := context.WithTimeout(ctx, f.timeout)
	value, found, err := f.remote.Get(rctx, key)
	cancel()
	if err == nil {
		return value, found, nil
	}
	f.degraded("get", err)
	return f.local.Get(ctx, key)
}

// SetWithTTL writes to the remote store, falling back to local on failure.
func (f *FallbackStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	rctx, cancel := context.WithTimeout(ctx, f.timeout)
	err := f.remote.SetWithTTL(rctx, key, value, ttl)
	cancel()
	if err == nil {
		return nil
	}
	f.degraded("set", err)
	return f.local.SetWithTTL(ctx, key, value, ttl)
}

// Delete removes key from both stores. A remote failure is absorbed; the
// entry's TTL will clear it there eventually.
func (f *FallbackStore) Delete(ctx context.Context, key string) error {
	rctx, cancel := context.WithTimeout(ctx, f.timeout)
	err := f.remote.Delete(rctx, key)
	cancel()
	if err != nil {
		f.degraded("delete", err)
	}
	return f.local.Delete(ctx, key)
}

// Increment counts against the remote store, falling back to local on
// failure.
func (f *FallbackStore) Increment(ctx context.Context, key string, amount int64, ttlIfAbsent time.Duration) (int64, time.Time, error) {
	rctx, cancel := context.WithTimeout(ctx, f.timeout)
	count, resetAt, err := f.remote.Increment(rctx, key, amount, ttlIfAbsent)
	cancel()
	if err == nil {
		return count, resetAt, nil
	}
	f.degraded("increment", err)
	return f.local.Increment(ctx, key, amount, ttlIfAbsent)
}

// GetDelete consumes key from the remote store, falling back to local on
// failure.
func (f *FallbackStore) GetDelete(ctx context.Context, key string) ([]byte, bool, error) {
	rctx, cancel := context.WithTimeout(ctx, f.timeout)
	value, found, err := f.remote.GetDelete(rctx, key)
	cancel()
	if err == nil {
		return value, found, nil
	}
	f.degraded("getdel", err)
	return f.local.GetDelete(ctx, key)
}

// PurgeExpired sweeps the local store. Redis expires remote entries itself.
func (f *FallbackStore) PurgeExpired(ctx context.Context) (int, error) {
	if p, ok := f.local.(Purger); ok {
		return p.PurgeExpired(ctx)
	}
	return 0, nil
}

// Close closes both stores.
func (f *FallbackStore) Close() error {
	return errors.Join(f.remote.Close(), f.local.Close())
}
