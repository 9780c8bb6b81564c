package handler

import (
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lensa-net/lensa-be/internal/ratelimit"
)

// RateLimitMiddleware rejects clients that exceed the fixed-window quota on
// the analyze route. The limiter is injected so tests can use a fresh counter
// per case.
type RateLimitMiddleware struct {
	limiter    *ratelimit.Limiter
	trustProxy bool
	logger     *log.Logger
}

func NewRateLimitMiddleware(l *ratelimit.Limiter, trustProxy bool, logger *log.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter:    l,
		trustProxy: trustProxy,
		logger:     logger,
	}
}

// Limit runs before the wrapped handler, so a rejected request never reaches
// handler logic and no upstream call is made for it.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := m.clientKey(r)
		if !m.limiter.Allow(key) {
			retryAfter := m.limiter.RetryAfter(key)
			w.Header().Set("Retry-After", strconv.Itoa(ceilSeconds(retryAfter)))
			m.logger.Printf("Rate limit exceeded for client %s", key)
			respondWithError(w, http.StatusTooManyRequests, "Too many requests, please try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientKey derives the rate-limit key from the request's apparent network
// origin. When a trusted reverse proxy fronts the gateway, the precedence is
// X-Forwarded-For (first hop), then X-Real-IP, then the socket address.
// Without a trusted proxy the headers are client-controlled and ignored.
func (m *RateLimitMiddleware) clientKey(r *http.Request) string {
	if m.trustProxy {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			if i := strings.IndexByte(forwarded, ','); i >= 0 {
				forwarded = forwarded[:i]
			}
			return strings.TrimSpace(forwarded)
		}
		if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
			return strings.TrimSpace(realIP)
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func ceilSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}
