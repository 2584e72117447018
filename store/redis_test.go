package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStoreSetGet(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	if err := s.SetWithTTL(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}

	got, found, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("expected key to be found")
	}
	if string(got) != "v" {
		t.Errorf("value = %q, want %q", got, "v")
	}
}

func TestRedisStoreGetMiss(t *testing.T) {
	s, _ := newTestRedisStore(t)

	_, found, err := s.Get(context.Background(), "absent")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("absent key reported as found")
	}
}

func TestRedisStoreExpiry(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	s.SetWithTTL(ctx, "k", []byte("v"), time.Minute)
	mr.FastForward(2 * time.Minute)

	if _, found, _ := s.Get(ctx, "k"); found {
		t.Error("expired entry reported as found")
	}
}

func TestRedisStoreIncrement(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		got, _, err := s.Increment(ctx, "counter", 1, time.Minute)
		if err != nil {
			t.Fatal(err)
		}
		if got != i {
			t.Errorf("increment %d: got %d, want %d", i, got, i)
		}
	}
}

func TestRedisStoreIncrementPreservesTTL(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	s.Increment(ctx, "counter", 1, time.Minute)
	mr.FastForward(30 * time.Second)
	s.Increment(ctx, "counter", 1, time.Minute)

	// The window must not have been extended by the second increment.
	if ttl := mr.TTL("counter"); ttl > 30*time.Second {
		t.Errorf("ttl after increment = %v, want <= 30s", ttl)
	}
}

func TestRedisStoreIncrementAfterExpiry(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	s.Increment(ctx, "counter", 1, time.Minute)
	s.Increment(ctx, "counter", 1, time.Minute)
	mr.FastForward(2 * time.Minute)

	got, _, err := s.Increment(ctx, "counter", 1, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Errorf("count after expiry = %d, want 1", got)
	}
}

func TestRedisStoreGetDelete(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	s.SetWithTTL(ctx, "k", []byte("once"), time.Minute)

	got, found, err := s.GetDelete(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if !found || string(got) != "once" {
		t.Fatalf("first GetDelete = (%q, %v), want (%q, true)", got, found, "once")
	}

	if _, found, _ := s.GetDelete(ctx, "k"); found {
		t.Error("second GetDelete reported the consumed entry as found")
	}
}

func TestRedisStoreDeleteIdempotent(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	if err := s.Delete(ctx, "absent"); err != nil {
		t.Fatalf("deleting an absent key: %v", err)
	}

	s.SetWithTTL(ctx, "k", []byte("v"), time.Minute)
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, found, _ := s.Get(ctx, "k"); found {
		t.Error("deleted key reported as found")
	}
}

func TestDialRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := DialRedis(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.SetWithTTL(context.Background(), "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
}

func TestDialRedisUnreachable(t *testing.T) {
	if _, err := DialRedis(context.Background(), "redis://127.0.0.1:1"); err == nil {
		t.Error("expected error dialing an unreachable redis")
	}
}
