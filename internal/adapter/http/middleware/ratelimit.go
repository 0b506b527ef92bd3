package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// CounterStore counts requests per key within a fixed window. Implemented
// by the redis rate-limit store.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimiter enforces a per-IP request limit over a fixed window backed
// by a shared counter store, so limits hold across multiple instances.
type RateLimiter struct {
	store  CounterStore
	limit  int64
	window time.Duration
}

// NewRateLimiter creates a rate limiter allowing limit requests per window.
func NewRateLimiter(store CounterStore, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		store:  store,
		limit:  limit,
		window: window,
	}
}

// Limit is a middleware that enforces rate limiting per client IP.
// Counter store failures fail open: a broken limiter must not take
// the API down with it.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getIP(r)

		count, err := rl.store.Incr(r.Context(), ip, rl.window)
		if err != nil {
			log.Warn().Err(err).Str("ip", ip).Msg("rate limit store unavailable")
			next.ServeHTTP(w, r)

			return
		}

		if count > rl.limit {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", rl.window.Round(time.Second).String())
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate_limited","message":"rate limit exceeded"}`))

			return
		}

		next.ServeHTTP(w, r)
	})
}

// getIP extracts the client IP from the request.
func getIP(r *http.Request) string {
	// X-Forwarded-For may carry a chain; the first entry is the client
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		if idx := strings.IndexByte(forwarded, ','); idx >= 0 {
			return strings.TrimSpace(forwarded[:idx])
		}

		return forwarded
	}

	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	return r.RemoteAddr
}
