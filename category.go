package ephemeral

import (
	"fmt"
	"time"
)

// Category identifies a class of protected endpoint with its own quota.
// Counters are scoped per (category, client) pair, so a client exhausting
// one category is unaffected in the others.
type Category int

const (
	// ContactForm covers contact form submissions.
	ContactForm Category = iota
	// NewsletterSignup covers newsletter subscription requests.
	NewsletterSignup
	// SEOScan covers on-demand SEO analysis runs.
	SEOScan
	// AdminAPI covers authenticated back-office API calls.
	AdminAPI
	// LoginAttempt covers admin login attempts (brute-force protection).
	LoginAttempt
)

// Limit is a fixed-window quota: at most MaxRequests per Window. The window
// is anchored at a client's first request, not at wall-clock boundaries.
type Limit struct {
	MaxRequests int
	Window      time.Duration
}

// DefaultLimits returns the per-category quotas the site ships with.
func DefaultLimits() map[Category]Limit {
	return map[Category]Limit{
		ContactForm:      {MaxRequests: 5, Window: 15 * time.Minute},
		NewsletterSignup: {MaxRequests: 3, Window: 15 * time.Minute},
		SEOScan:          {MaxRequests: 10, Window: time.Minute},
		AdminAPI:         {MaxRequests: 100, Window: time.Minute},
		LoginAttempt:     {MaxRequests: 5, Window: 15 * time.Minute},
	}
}

func (c Category) String() string {
	switch c {
	case ContactForm:
		return "contact-form"
	case NewsletterSignup:
		return "newsletter-signup"
	case SEOScan:
		return "seo-scan"
	case AdminAPI:
		return "admin-api"
	case LoginAttempt:
		return "login-attempt"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}
