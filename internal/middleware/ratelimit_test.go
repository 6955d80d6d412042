package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/VladKvetkin/mygameserver/internal/ratelimiter"
)

var okHandler = http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
	res.WriteHeader(http.StatusOK)
})

func TestRateLimit(t *testing.T) {
	now := time.Unix(1_700_000_040, 0)
	limiter := ratelimiter.NewLimiterWithClock(func() time.Time { return now })
	handler := RateLimit(limiter, "pay_submit", 2, time.Minute)(okHandler)

	request := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/pay/submit", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := request("10.0.0.1:5000"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, code)
		}
	}

	// same client on another port shares the bucket
	if code := request("10.0.0.1:6000"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}

	if code := request("10.0.0.2:5000"); code != http.StatusOK {
		t.Fatalf("other clients should not be affected, got %d", code)
	}

	now = now.Add(time.Minute)
	if code := request("10.0.0.1:5000"); code != http.StatusOK {
		t.Fatalf("expected 200 after window rollover, got %d", code)
	}
}

func TestRateLimitOperationsAreSeparate(t *testing.T) {
	limiter := ratelimiter.NewLimiter()
	submit := RateLimit(limiter, "pay_submit", 1, time.Minute)(okHandler)
	status := RateLimit(limiter, "pay_status", 1, time.Minute)(okHandler)

	for _, handler := range []http.Handler{submit, status} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	submit.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
	}
}
