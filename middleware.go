package ephemeral

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
)

// Middleware wraps a handler with a rate limit check for the given
// category. Allowed requests carry X-RateLimit-Limit, -Remaining and
// -Reset headers; denied requests get a 429 with a Retry-After header and
// a machine-readable JSON body, distinct from ordinary validation errors.
func (rl *RateLimiter) Middleware(category Category) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			dec := rl.CheckAndIncrement(r.Context(), ClientID(r), category)

			limit := rl.Limit(category)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit.MaxRequests))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(dec.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(dec.ResetAt.Unix(), 10))

			if !dec.Allowed {
				retry := int(math.Ceil(dec.RetryAfter.Seconds()))
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]any{
					"error":       "rate_limited",
					"retry_after": retry,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
