package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

// VisitorRateLimiter keeps one token bucket per visitor id.
type VisitorRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*limitedVisitor
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
}

type limitedVisitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewVisitorRateLimiter allows `perMinute` requests per visitor with the given burst.
func NewVisitorRateLimiter(perMinute, burst int) *VisitorRateLimiter {
	return &VisitorRateLimiter{
		visitors: make(map[string]*limitedVisitor),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
		idleTTL:  10 * time.Minute,
	}
}

// Allow reports whether the visitor may proceed now.
func (rl *VisitorRateLimiter) Allow(visitor string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[visitor]
	if !ok {
		v = &limitedVisitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[visitor] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

// Run evicts idle visitors until ctx is done.
func (rl *VisitorRateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evictIdle(time.Now())
		}
	}
}

func (rl *VisitorRateLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for id, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.idleTTL {
			delete(rl.visitors, id)
		}
	}
}

// Middleware rejects over-limit visitors with 429. It must run after VisitorMiddleware.
func (rl *VisitorRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, _ := utils.VisitorIDFromContext(r.Context())
		if !rl.Allow(v.Value) {
			w.Header().Set("Retry-After", "5")
			utils.RespondErrorWithCode(
				w, http.StatusTooManyRequests, utils.ErrCodeRateLimited, "Too many requests, slow down", nil,
			)
			return
		}
		next.ServeHTTP(w, r)
	})
}
