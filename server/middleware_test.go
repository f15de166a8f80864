package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/giygas/vetref/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestGetTokenCost(t *testing.T) {
	tests := []struct {
		name         string
		target       string
		expectedCost int64
	}{
		{"health", "/health", 5},
		{"metrics", "/metrics", 5},
		{"search", "/v1/search?q=aspirin", 50},
		{"monographs", "/v1/monographs?name=ivermek", 30},
		{"report", "/v1/report", 100},
		{"drug json", "/v1/drugs/aspirin", 20},
		{"drug html", "/v1/drugs/aspirin?format=html", 30},
		{"drug unknown format", "/v1/drugs/aspirin?format=xml", 20},
		{"unknown", "/unknown", 5},
		{"root", "/", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if cost := getTokenCost(req); cost != tt.expectedCost {
				t.Errorf("expected cost %d for %s, got %d", tt.expectedCost, tt.target, cost)
			}
		})
	}
}

func TestRealIPMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		xff      string
		remote   string
		expected string
	}{
		{"single ip", "203.0.113.7", "10.0.0.1:1234", "203.0.113.7"},
		{"first of a chain", "203.0.113.7, 10.0.0.2", "10.0.0.1:1234", "203.0.113.7"},
		{"no header", "", "10.0.0.1:1234", "10.0.0.1:1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			handler := RealIPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.expected {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestBlockDirectAccessMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		remote   string
		header   string
		expected int
	}{
		{"localhost ipv4", "127.0.0.1:5000", "", http.StatusOK},
		{"localhost ipv6", "[::1]:5000", "", http.StatusOK},
		{"direct ip", "198.51.100.4:5000", "", http.StatusForbidden},
		{"via proxy xff", "198.51.100.4:5000", "X-Forwarded-For", http.StatusOK},
		{"via proxy real ip", "198.51.100.4:5000", "X-Real-IP", http.StatusOK},
	}

	handler := BlockDirectAccessMiddleware(okHandler())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.RemoteAddr = tt.remote
			if tt.header != "" {
				req.Header.Set(tt.header, "203.0.113.7")
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expected {
				t.Errorf("status = %d, want %d", rr.Code, tt.expected)
			}
		})
	}
}

func TestRequestSizeMiddleware(t *testing.T) {
	cfg := &config.Config{MaxRequestBody: 16, MaxHeaderSize: 64}
	handler := RequestSizeMiddleware(cfg)(okHandler())

	tests := []struct {
		name     string
		body     string
		header   string
		expected int
	}{
		{"no body", "", "", http.StatusOK},
		{"exactly max size", strings.Repeat("a", 16), "", http.StatusOK},
		{"body too large", strings.Repeat("a", 17), "", http.StatusRequestEntityTooLarge},
		{"headers too large", "", strings.Repeat("h", 80), http.StatusRequestHeaderFieldsTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/report", strings.NewReader(tt.body))
			if tt.header != "" {
				req.Header.Set("X-Padding", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expected {
				t.Errorf("status = %d, want %d (%s)", rr.Code, tt.expected, rr.Body.String())
			}
		})
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(time.Hour)
	defer rl.Stop()
	handler := rl.Middleware(okHandler())

	// a report costs 100, so a full bucket pays for exactly ten
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/report", nil)
		req.RemoteAddr = "203.0.113.7:1"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, rr.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/report", nil)
	req.RemoteAddr = "203.0.113.7:1"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" || rr.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("missing rate limit headers: %v", rr.Header())
	}

	other := httptest.NewRequest(http.MethodGet, "/health", nil)
	other.RemoteAddr = "198.51.100.4:1"
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, other)
	if rr.Code != http.StatusOK {
		t.Errorf("other clients keep their own bucket, got %d", rr.Code)
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(time.Hour)
	defer rl.Stop()

	rl.getBucket("full")
	rl.getBucket("used").TakeAvailable(500)

	if removed := rl.cleanup(); removed != 1 {
		t.Errorf("expected 1 removed client, got %d", removed)
	}
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	if _, ok := rl.clients["used"]; !ok {
		t.Error("a client with a partly drained bucket must be kept")
	}
}
