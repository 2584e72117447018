// Package ephemeral provides the transient state behind a site's protected
// endpoints: fixed-window rate limiting and single-use confirmation tokens
// for data-subject-rights workflows, both built on a TTL key/value store.
//
// # Key Concepts
//
//   - [store.Store] is the TTL key/value backend. An in-memory store is used
//     by default; Redis-backed and SQLite-backed stores are available, and a
//     fallback store degrades from Redis to local per call.
//   - [Category] names a protected endpoint class (contact form, newsletter
//     signup, SEO scan, admin API, login attempt) with its own quota.
//   - [RateLimiter] decides allow/deny per (client, category) pair using
//     fixed-window counters, and can wrap handlers as HTTP middleware.
//   - [TokenService] issues high-entropy single-use tokens that carry a
//     subject, an [Action] (export, delete, or correct data), and an
//     action-specific payload. Redeeming a token validates and consumes it
//     in one atomic step.
//   - [Core] owns the store stack, both services, and the background sweeper
//     that bounds memory growth.
//
// # Quick Start
//
//	core := ephemeral.New()
//	defer core.Close()
//
//	mux := http.NewServeMux()
//	mux.Handle("/api/contact", core.Limiter().Middleware(ephemeral.ContactForm)(contactHandler))
//
//	token, _ := core.Tokens().Issue(ctx, "user@example.com", ephemeral.ActionExportData, nil)
//	// email the token to the subject; later:
//	red, ok, _ := core.Tokens().Redeem(ctx, token)
//
// See [FromConfig] for building the store stack from environment settings.
package ephemeral
