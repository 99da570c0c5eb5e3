package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

type bucket struct {
	count int
	until time.Time
}

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(r *http.Request) string

// RateLimit allows limit requests per window for each client IP.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	return RateLimitBy(limit, per, clientIP)
}

// BySession keys requests on the client session, falling back to the IP for
// requests without one.
func BySession(r *http.Request) string {
	if sid := SessionIDFromContext(r.Context()); sid != "" {
		return "sid:" + sid
	}
	return clientIP(r)
}

// RateLimitBy allows limit requests per window for each key. A non-positive
// limit disables the check.
func RateLimitBy(limit int, per time.Duration, key KeyFunc) func(http.Handler) http.Handler {
	var mu sync.Mutex
	buckets := make(map[string]*bucket)
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			mu.Lock()
			now := time.Now()
			b, ok := buckets[k]
			if !ok || now.After(b.until) {
				b = &bucket{count: 0, until: now.Add(per)}
				buckets[k] = b
			}
			if b.count >= limit {
				retry := int(b.until.Sub(now).Seconds()) + 1
				mu.Unlock()
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			b.count++
			if len(buckets) > 4096 {
				for id, old := range buckets {
					if now.After(old.until) {
						delete(buckets, id)
					}
				}
			}
			mu.Unlock()
			next.ServeHTTP(w, r)
		})
	}
}
