package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimiterReusesVisitorLimiter(t *testing.T) {
	a := getLimiter("10.0.0.1")
	b := getLimiter("10.0.0.1")
	if a != b {
		t.Error("Expected the same limiter for the same IP")
	}

	c := getLimiter("10.0.0.2")
	if a == c {
		t.Error("Expected distinct limiters for distinct IPs")
	}
}

func TestRateLimitMiddlewareBursts(t *testing.T) {
	handler := RateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	var tooMany bool
	for i := 0; i < 100; i++ {
		r := httptest.NewRequest("GET", "/health", nil)
		r.Header.Set("X-Forwarded-For", "10.9.9.9")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		if w.Code == http.StatusTooManyRequests {
			tooMany = true
			break
		}
	}
	if !tooMany {
		t.Error("Expected the burst to exhaust the limiter within 100 requests")
	}
}
