package ephemeral

import (
	"net/http/httptest"
	"testing"
)

func TestClientID(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		realIP     string
		remoteAddr string
		want       string
	}{
		{
			name:       "forwarded-for chain wins",
			xff:        "203.0.113.7, 10.0.0.1",
			realIP:     "192.0.2.1",
			remoteAddr: "198.51.100.2:4242",
			want:       "203.0.113.7",
		},
		{
			name:       "real-ip when no forwarded-for",
			realIP:     "192.0.2.1",
			remoteAddr: "198.51.100.2:4242",
			want:       "192.0.2.1",
		},
		{
			name:       "peer address fallback",
			remoteAddr: "198.51.100.2:4242",
			want:       "198.51.100.2",
		},
		{
			name:       "peer address without port",
			remoteAddr: "198.51.100.2",
			want:       "198.51.100.2",
		},
		{
			name: "unknown bucket",
			want: UnknownClient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}

			if got := ClientID(r); got != tt.want {
				t.Errorf("ClientID = %q, want %q", got, tt.want)
			}
		})
	}
}
