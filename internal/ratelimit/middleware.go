package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dukaanbill/backend-billing/internal/common"
)

// Guard throttles write endpoints per client. The limiter fails open: a Redis
// error lets the request through so a cache hiccup never blocks billing.
type Guard struct {
	Limiter Limiter
	Window  time.Duration
	Max     int
	Key     func(*http.Request) string
	OnError func(error)
}

func (g Guard) key(r *http.Request) string {
	if g.Key != nil {
		return g.Key(r)
	}
	return common.ClientIP(r)
}

// Middleware implements the http.Handler middleware interface.
func (g Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.Max <= 0 || g.Window <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		allowed, remaining, resetAt, err := g.Limiter.Allow(r.Context(), g.key(r), g.Window, g.Max)
		if err != nil {
			if g.OnError != nil {
				g.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.Itoa(g.Max))
		headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}
			headers.Set("Retry-After", strconv.Itoa(retryAfter))
			common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}
