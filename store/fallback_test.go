package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

var errRemoteDown = errors.New("connection refused")

// brokenStore fails every call, simulating an unreachable remote backend.
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errRemoteDown
}

func (brokenStore) SetWithTTL(context.Context, string, []byte, time.Duration) error {
	return errRemoteDown
}

func (brokenStore) Delete(context.Context, string) error {
	return errRemoteDown
}

func (brokenStore) Increment(context.Context, string, int64, time.Duration) (int64, time.Time, error) {
	return 0, time.Time{}, errRemoteDown
}

func (brokenStore) GetDelete(context.Context, string) ([]byte, bool, error) {
	return nil, false, errRemoteDown
}

func (brokenStore) Close() error { return nil }

func newQuietFallback(remote, local Store) *FallbackStore {
	return NewFallbackStore(remote, local,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestFallbackServesLocalWhenRemoteFails(t *testing.T) {
	local := NewMemoryStore()
	f := newQuietFallback(brokenStore{}, local)
	ctx := context.Background()

	// Every operation must succeed despite the broken remote.
	if err := f.SetWithTTL(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, found, err := f.Get(ctx, "k")
	if err != nil || !found || string(got) != "v" {
		t.Fatalf("get = (%q, %v, %v), want (%q, true, nil)", got, found, err, "v")
	}

	for i := int64(1); i <= 3; i++ {
		count, _, err := f.Increment(ctx, "counter", 1, time.Minute)
		if err != nil {
			t.Fatalf("increment: %v", err)
		}
		if count != i {
			t.Errorf("increment %d: got %d, want %d", i, count, i)
		}
	}

	if _, found, err := f.GetDelete(ctx, "k"); err != nil || !found {
		t.Fatalf("getdel = (found=%v, err=%v), want (true, nil)", found, err)
	}
	if err := f.Delete(ctx, "counter"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestFallbackPrefersRemote(t *testing.T) {
	remote := NewMemoryStore()
	local := NewMemoryStore()
	f := newQuietFallback(remote, local)
	ctx := context.Background()

	if err := f.SetWithTTL(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}

	// The write must have landed on the remote store, not the local one.
	if _, found, _ := remote.Get(ctx, "k"); !found {
		t.Error("value missing from remote store")
	}
	if _, found, _ := local.Get(ctx, "k"); found {
		t.Error("value written to local store while remote was healthy")
	}
}

func TestFallbackZeroTimeoutKeepsDefault(t *testing.T) {
	remote := NewMemoryStore()
	local := NewMemoryStore()
	f := NewFallbackStore(remote, local,
		WithRemoteTimeout(0),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	ctx := context.Background()

	// A zero timeout must not strangle a healthy remote.
	if err := f.SetWithTTL(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, found, _ := remote.Get(ctx, "k"); !found {
		t.Error("write never reached the healthy remote store")
	}
}

func TestFallbackDeleteClearsLocal(t *testing.T) {
	local := NewMemoryStore()
	f := newQuietFallback(brokenStore{}, local)
	ctx := context.Background()

	f.SetWithTTL(ctx, "k", []byte("v"), time.Minute)
	if err := f.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, found, _ := local.Get(ctx, "k"); found {
		t.Error("delete did not clear the local store")
	}
}

func TestFallbackPurgeSweepsLocal(t *testing.T) {
	clock := newTestClock()
	local := NewMemoryStore(WithNowFunc(clock.Now))
	f := newQuietFallback(brokenStore{}, local)
	ctx := context.Background()

	f.SetWithTTL(ctx, "k", []byte("v"), time.Minute)
	clock.Advance(2 * time.Minute)

	removed, err := f.PurgeExpired(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
}
