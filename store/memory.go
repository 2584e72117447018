package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Compile-time interface checks.
var (
	_ Store  = (*MemoryStore)(nil)
	_ Purger = (*MemoryStore)(nil)
)

// MemoryStore is an in-memory Store implementation. It is safe for
// concurrent use and never fails under correct use. Entries are lost on
// process restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithNowFunc overrides the store's clock. Intended for tests that need to
// advance time past an entry's expiry.
func WithNowFunc(now func() time.Time) MemoryOption {
	return func(m *MemoryStore) {
		m.now = now
	}
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Get returns the value stored under key, applying lazy expiry.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || !m.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return e.value, true, nil
}

// SetWithTTL stores value under key, overwriting any existing entry.
func (m *MemoryStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry{value: value, expiresAt: m.now().Add(ttl)}
	return nil
}

// Delete removes the entry for key. Absent keys are a no-op.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// Increment atomically adds amount to the counter stored under key. An
// absent or expired key starts a fresh counter with expiry ttlIfAbsent from
// now; a live key keeps its existing expiry.
//
// Counter values are stored as ASCII integers so the same entry shape works
// across every backend. Incrementing a non-numeric value means a service
// reused a key across kinds, which is a programming error.
func (m *MemoryStore) Increment(_ context.Context, key string, amount int64, ttlIfAbsent time.Duration) (int64, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e, ok := m.entries[key]
	if !ok || !now.Before(e.expiresAt) {
		exp := now.Add(ttlIfAbsent)
		m.entries[key] = entry{value: []byte(strconv.FormatInt(amount, 10)), expiresAt: exp}
		return amount, exp, nil
	}

	current, err := strconv.ParseInt(string(e.value), 10, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("ephemeral/store: increment %q: non-numeric value: %w", key, err)
	}
	current += amount
	e.value = []byte(strconv.FormatInt(current, 10))
	m.entries[key] = e
	return current, e.expiresAt, nil
}

// GetDelete atomically returns and removes the value stored under key.
// The mutex is held across the read and the delete, so concurrent callers
// cannot both observe the same entry.
func (m *MemoryStore) GetDelete(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	delete(m.entries, key)
	if !m.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return e.value, true, nil
}

// PurgeExpired removes entries whose expiry has passed.
func (m *MemoryStore) PurgeExpired(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
