package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/astromusic/astromusic/internal/cache"
)

func newTestLimiter(t *testing.T) *cache.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewWithClient(client)
}

func TestRateLimitIP_DeniesAfterBurst(t *testing.T) {
	t.Parallel()

	h := RateLimitIP(RateLimitConfig{
		Logger:  discardLogger(),
		Limiter: newTestLimiter(t),
		Enabled: true,
		Scope:   "auth",
		RPS:     0.01,
		Burst:   2,
	})(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = "203.0.113.9:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)

		if rec.Code == http.StatusTooManyRequests && rec.Header().Get("Retry-After") == "" {
			t.Error("429 response should carry Retry-After")
		}
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("statuses = %v, want %v", codes, want)
		}
	}

	other := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	other.RemoteAddr = "198.51.100.1:4444"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Errorf("another IP has its own bucket, got %d", rec.Code)
	}
}

type failingLimiter struct{}

func (failingLimiter) CheckIPRateLimit(context.Context, string, string, float64, int) (*cache.RateLimitResult, error) {
	return nil, errors.New("redis down")
}

func TestRateLimitIP_FailsOpen(t *testing.T) {
	t.Parallel()

	h := RateLimitIP(RateLimitConfig{
		Logger:  discardLogger(),
		Limiter: failingLimiter{},
		Enabled: true,
		Scope:   "auth",
		RPS:     1,
		Burst:   1,
	})(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRateLimitIP_Disabled(t *testing.T) {
	t.Parallel()

	h := RateLimitIP(RateLimitConfig{Enabled: false, Limiter: failingLimiter{}})(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRateLimitIP_SpoofedForwardedForSharesBucket(t *testing.T) {
	t.Parallel()

	limited := RateLimitIP(RateLimitConfig{
		Logger:  discardLogger(),
		Limiter: newTestLimiter(t),
		Enabled: true,
		Scope:   "auth",
		RPS:     0.01,
		Burst:   1,
	})(okHandler())
	h := ClientIP(nil)(limited)

	codes := make([]int, 0, 2)
	for _, spoofed := range []string{"203.0.113.1", "203.0.113.2"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = "198.51.100.9:5555"
		req.Header.Set("X-Forwarded-For", spoofed)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("statuses = %v, want [200 429]", codes)
	}
}
