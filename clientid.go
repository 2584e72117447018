package ephemeral

import (
	"net"
	"net/http"
	"strings"
)

// UnknownClient is the shared bucket for requests whose originating address
// cannot be determined. All such clients draw from one quota on purpose:
// an unidentifiable caller should not get a fresh allowance.
const UnknownClient = "unknown"

// ClientID derives a rate-limit client identifier from a request: the first
// entry of the X-Forwarded-For chain, then X-Real-IP, then the peer
// address, then [UnknownClient].
func ClientID(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0]); ip != "" {
			return ip
		}
	}

	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return UnknownClient
}
