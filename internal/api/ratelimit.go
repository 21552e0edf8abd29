package api

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/cardbinder/cardbinder/internal/api/response"
)

// clientLimiter applies a per-client token bucket, keyed by the RealIP
// middleware's remote address.
type clientLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientBucket
	rate     rate.Limit
	burst    int
	maxIdle time.Duration
}

type clientBucket struct {
	limiter *rate.Limiter
	seen    time.Time
}

func newClientLimiter(perSec float64, burst int) *clientLimiter {
	if burst < 1 {
		burst = 1
	}
	return &clientLimiter{
		clients:  make(map[string]*clientBucket),
		rate:     rate.Limit(perSec),
		burst:    burst,
		maxIdle:  10 * time.Minute,
	}
}

func (cl *clientLimiter) allow(client string) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := time.Now()
	bucket, ok := cl.clients[client]
	if !ok {
		// Piggyback stale-entry cleanup on new-client arrival.
		for key, b := range cl.clients {
			if now.Sub(b.seen) > cl.maxIdle {
				delete(cl.clients, key)
			}
		}
		bucket = &clientBucket{limiter: rate.NewLimiter(cl.rate, cl.burst)}
		cl.clients[client] = bucket
	}
	bucket.seen = now

	return bucket.limiter.Allow()
}

func (cl *clientLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !cl.allow(r.RemoteAddr) {
			response.TooManyRequests(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
