package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/wonny/marketlens/internal/api/response"
)

// RateLimit rejects requests beyond rps (token bucket of size burst) with 429.
// rps <= 0 disables limiting.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				response.RateLimitExceeded(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
