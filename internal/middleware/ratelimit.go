package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter limits requests per minute per IP+path using Redis INCR with TTL.
// Redis errors let the request through.
func RateLimiter(rdb *redis.Client, requestsPerMinute int) func(http.Handler) http.Handler {
	limit := int64(requestsPerMinute)
	if limit <= 0 {
		limit = 20
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			ip, _, _ := net.SplitHostPort(r.RemoteAddr)
			if ip == "" {
				ip = r.RemoteAddr
			}
			key := "kingdojo:rl:" + r.URL.Path + ":" + ip
			pipe := rdb.TxPipeline()
			incr := pipe.Incr(r.Context(), key)
			pipe.Expire(r.Context(), key, time.Minute)
			_, _ = pipe.Exec(r.Context())
			if incr.Val() > limit {
				w.Header().Set("Retry-After", strconv.Itoa(60))
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
