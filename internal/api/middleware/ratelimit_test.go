package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func limitedHandler(l *RateLimiter) http.Handler {
	return l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func loginFrom(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = remoteAddr
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRateLimiter_CapsRequestsPerWindow(t *testing.T) {
	h := limitedHandler(NewRateLimiter(5, 15*time.Minute))

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, loginFrom(h, "10.0.0.1:4000").Code, "request %d should pass", i+1)
	}

	// Later attempts in the same window stay blocked, whatever the port.
	for i := 0; i < 10; i++ {
		rr := loginFrom(h, fmt.Sprintf("10.0.0.1:%d", 5000+i))
		assert.Equal(t, http.StatusTooManyRequests, rr.Code, "attempt %d past the limit", i+6)
	}

	rr := loginFrom(h, "10.0.0.1:4000")
	assert.Contains(t, rr.Body.String(), "Too many requests")
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	assert.Equal(t, http.StatusOK, loginFrom(h, "10.0.0.2:4000").Code, "other clients have their own count")
}

func TestRateLimiter_RecoversAfterWindow(t *testing.T) {
	window := 200 * time.Millisecond
	h := limitedHandler(NewRateLimiter(2, window))

	assert.Equal(t, http.StatusOK, loginFrom(h, "192.0.2.7:5123").Code)
	assert.Equal(t, http.StatusOK, loginFrom(h, "192.0.2.7:5123").Code)
	assert.Equal(t, http.StatusTooManyRequests, loginFrom(h, "192.0.2.7:5123").Code)

	// Two full windows later nothing counts against the client.
	time.Sleep(2*window + 20*time.Millisecond)
	assert.Equal(t, http.StatusOK, loginFrom(h, "192.0.2.7:5123").Code)
}

func TestNewRateLimiter_Defaults(t *testing.T) {
	l := NewRateLimiter(0, 0)
	assert.Equal(t, 1, l.limit)
	assert.Equal(t, time.Minute, l.window)
}
