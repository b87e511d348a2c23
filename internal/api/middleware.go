package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/uxforge/uxforge/internal/ratelimit"
)

// RateLimitMiddleware creates a middleware that enforces rate limits
func RateLimitMiddleware(limiter *ratelimit.Limiter, requestsPerHour int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)

			// Check rate limit
			if !limiter.Allow(key) {
				// Rate limit exceeded
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(requestsPerHour))
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.WriteHeader(http.StatusTooManyRequests)

				json.NewEncoder(w).Encode(map[string]string{
					"error": "Rate limit exceeded. Maximum " + strconv.Itoa(requestsPerHour) + " requests per hour per client.",
				})
				return
			}

			// Add rate limit headers
			tokens := limiter.Tokens(key)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(requestsPerHour))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(tokens)))

			// Request allowed, continue
			next.ServeHTTP(w, r)
		})
	}
}
