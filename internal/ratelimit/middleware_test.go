package ratelimit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickethub/pkg/testutil"
)

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (Result, error) {
	return Result{}, errors.New("redis: connection refused")
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestLimiterMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("denies once the window is full", func(t *testing.T) {
		h := NewLimiter(NewInMemoryStore(), 2, time.Minute, logger).Middleware("login")(okHandler())

		for range 2 {
			req := httptest.NewRequest(http.MethodPost, "/api/user/login", nil)
			req.RemoteAddr = "203.0.113.7:5555"
			rr := testutil.DoRequest(h, req)
			require.Equal(t, http.StatusNoContent, rr.Code)
		}

		req := httptest.NewRequest(http.MethodPost, "/api/user/login", nil)
		req.RemoteAddr = "203.0.113.7:6666"
		rr := testutil.DoRequest(h, req)
		testutil.AssertStatusAndError(t, rr, http.StatusTooManyRequests, "rate_limit_exceeded")
		assert.NotEmpty(t, rr.Header().Get("Retry-After"))
		assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))

		other := httptest.NewRequest(http.MethodPost, "/api/user/login", nil)
		other.RemoteAddr = "198.51.100.2:5555"
		assert.Equal(t, http.StatusNoContent, testutil.DoRequest(h, other).Code)
	})

	t.Run("store failure lets the request through", func(t *testing.T) {
		h := NewLimiter(failingStore{}, 1, time.Minute, logger).Middleware("login")(okHandler())
		rr := testutil.DoRequest(h, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("zero limit disables throttling", func(t *testing.T) {
		h := NewLimiter(failingStore{}, 0, time.Minute, logger).Middleware("login")(okHandler())
		rr := testutil.DoRequest(h, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Header().Get("X-RateLimit-Limit"))
	})

	t.Run("nil limiter passes through", func(t *testing.T) {
		var l *Limiter
		rr := testutil.DoRequest(l.Middleware("login")(okHandler()), httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}

func TestClientIP(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8", "192.0.2.50"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		trusted bool
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain from trusted proxy", true, map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.2:80", "203.0.113.7"},
		{"spoofed leftmost entry is skipped", true, map[string]string{"X-Forwarded-For": "1.2.3.4, 203.0.113.7"}, "10.0.0.2:80", "203.0.113.7"},
		{"real ip from trusted proxy", true, map[string]string{"X-Real-IP": " 198.51.100.4 "}, "192.0.2.50:80", "198.51.100.4"},
		{"untrusted peer headers ignored", true, map[string]string{"X-Forwarded-For": "203.0.113.7"}, "198.51.100.9:80", "198.51.100.9"},
		{"no trusted proxies configured", false, map[string]string{"X-Forwarded-For": "203.0.113.7", "X-Real-IP": "203.0.113.8"}, "10.0.0.2:80", "10.0.0.2"},
		{"ipv4 remote", false, nil, "192.0.2.1:1234", "192.0.2.1"},
		{"ipv6 remote", false, nil, "[2001:db8::1]:1234", "2001:db8::1"},
		{"no port", false, nil, "192.0.2.9", "192.0.2.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			var prefixes []netip.Prefix
			if tt.trusted {
				prefixes = trusted
			}
			assert.Equal(t, tt.want, ClientIP(req, prefixes))
		})
	}
}

func TestRotatingForwardedForDoesNotEvadeLimit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewLimiter(NewInMemoryStore(), 1, time.Minute, logger).Middleware("signup")(okHandler())

	first := httptest.NewRequest(http.MethodPost, "/api/user/signup", nil)
	first.RemoteAddr = "203.0.113.7:5555"
	first.Header.Set("X-Forwarded-For", "198.51.100.1")
	require.Equal(t, http.StatusNoContent, testutil.DoRequest(h, first).Code)

	second := httptest.NewRequest(http.MethodPost, "/api/user/signup", nil)
	second.RemoteAddr = "203.0.113.7:5556"
	second.Header.Set("X-Forwarded-For", "198.51.100.2")
	testutil.AssertStatusAndError(t, testutil.DoRequest(h, second), http.StatusTooManyRequests, "rate_limit_exceeded")
}

func TestParseTrustedProxiesRejectsGarbage(t *testing.T) {
	_, err := ParseTrustedProxies([]string{"not-an-ip"})
	assert.Error(t, err)
	_, err = ParseTrustedProxies([]string{"10.0.0.0/99"})
	assert.Error(t, err)
}
