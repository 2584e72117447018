package ephemeral

import (
	"context"
	"log/slog"
	"time"

	"github.com/orbeelabs/ephemeral/store"
)

const rateLimitKeyPrefix = "ratelimit:"

// Decision is the outcome of a rate limit check.
type Decision struct {
	Allowed   bool
	Remaining int
	// ResetAt is when the client's current window ends and its quota
	// refills.
	ResetAt time.Time
	// RetryAfter is how long a denied client should wait before retrying.
	// Zero when the request is allowed.
	RetryAfter time.Duration
}

// RateLimiter enforces fixed-window quotas per (client, category) pair on
// top of a [store.Store]. Fixed windows keep state at O(1) per key; the
// burst a client can achieve by straddling a window boundary is accepted.
type RateLimiter struct {
	store  store.Store
	limits map[Category]Limit
	logger *slog.Logger
	now    func() time.Time
}

// NewRateLimiter creates a limiter over the given store. A nil limits map
// selects [DefaultLimits].
func NewRateLimiter(s store.Store, limits map[Category]Limit) *RateLimiter {
	if limits == nil {
		limits = DefaultLimits()
	}
	return &RateLimiter{
		store:  s,
		limits: limits,
		logger: slog.Default(),
		now:    time.Now,
	}
}

// Limit returns the quota configured for a category.
func (rl *RateLimiter) Limit(category Category) Limit {
	return rl.limits[category]
}

// CheckAndIncrement counts a request for the client against the category's
// quota and decides whether it may proceed. The first request in a window
// starts the window; subsequent requests are counted against it without
// extending it.
//
// A store failure fails closed: the request is denied rather than letting
// an internal fault disable the protection. The store stack makes this path
// unreachable in normal operation, since remote errors fall back to the
// local backend and the local backend does not fail.
func (rl *RateLimiter) CheckAndIncrement(ctx context.Context, clientID string, category Category) Decision {
	limit := rl.limits[category]
	key := rateLimitKeyPrefix + category.String() + ":" + clientID

	count, resetAt, err := rl.store.Increment(ctx, key, 1, limit.Window)
	if err != nil {
		rl.logger.Error("rate limit counter failed, failing closed",
			"category", category.String(), "client", clientID, "err", err)
		return Decision{
			Allowed:    false,
			Remaining:  0,
			ResetAt:    rl.now().Add(limit.Window),
			RetryAfter: limit.Window,
		}
	}

	if count > int64(limit.MaxRequests) {
		retry := resetAt.Sub(rl.now())
		if retry < 0 {
			retry = 0
		}
		return Decision{Allowed: false, Remaining: 0, ResetAt: resetAt, RetryAfter: retry}
	}

	return Decision{
		Allowed:   true,
		Remaining: limit.MaxRequests - int(count),
		ResetAt:   resetAt,
	}
}
