package server

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clientLimiter tracks one client's token bucket and when it was last used
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimitMiddleware applies a per-client token bucket keyed by remote
// address (RealIP runs earlier in the chain). Idle buckets are dropped after
// a few minutes to keep the map bounded.
func rateLimitMiddleware(perSec float64, burst int) func(http.Handler) http.Handler {
	var mu sync.Mutex
	clients := make(map[string]*clientLimiter)

	go func() {
		for range time.Tick(time.Minute) {
			mu.Lock()
			for addr, client := range clients {
				if time.Since(client.lastSeen) > 3*time.Minute {
					delete(clients, addr)
				}
			}
			mu.Unlock()
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			client, ok := clients[r.RemoteAddr]
			if !ok {
				client = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(perSec), burst)}
				clients[r.RemoteAddr] = client
			}
			client.lastSeen = time.Now()
			allowed := client.limiter.Allow()
			mu.Unlock()

			if !allowed {
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
