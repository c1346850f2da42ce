package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/phrazzld/taskmaster/internal/api/shared"
)

// RateLimiter caps requests per client IP to limit within a sliding window.
// The port is not part of the key, and chi's RealIP middleware must run
// first when the server sits behind a proxy.
type RateLimiter struct {
	limit   int
	window  time.Duration
	limiter *httprate.RateLimiter
}

// NewRateLimiter allows limit requests per window per client IP.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	limiter := httprate.NewRateLimiter(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(tooManyRequests),
	)
	return &RateLimiter{limit: limit, window: window, limiter: limiter}
}

// Middleware rejects requests over the limit with 429.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return l.limiter.Handler(next)
}

func tooManyRequests(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithErrorAndLog(w, r, http.StatusTooManyRequests,
		"Too many requests, please try again later", nil)
}
