package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/angelmondragon/pawfinderz-backend/api/responses"
	"github.com/angelmondragon/pawfinderz-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
	"github.com/angelmondragon/pawfinderz-backend/pkg/logger"
)

type rateLimitClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter keeps one token bucket per client IP. Idle buckets are swept
// once they have been unused for longer than the configured TTL.
type ClientLimiter struct {
	mu        sync.Mutex
	clients   map[string]*rateLimitClient
	rps       rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewClientLimiter(cfg config.RateLimitConfig) *ClientLimiter {
	ttl := cfg.ClientTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ClientLimiter{
		clients: make(map[string]*rateLimitClient),
		rps:     rate.Limit(cfg.RPS),
		burst:   cfg.Burst,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (l *ClientLimiter) enabled() bool {
	return l != nil && l.rps > 0 && l.burst > 0
}

// Allow reports whether the client identified by key may proceed.
func (l *ClientLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.ttl {
		for ip, c := range l.clients {
			if now.Sub(c.lastSeen) > l.ttl {
				delete(l.clients, ip)
			}
		}
		l.lastSweep = now
	}

	c, ok := l.clients[key]
	if !ok {
		c = &rateLimitClient{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// Len returns the number of tracked clients.
func (l *ClientLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// RateLimit rejects requests from clients that exhausted their bucket.
func RateLimit(limiter *ClientLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !limiter.enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			if !limiter.Allow(ip) {
				ctx := r.Context()
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "ip", ip), "rate_limit.blocked")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
