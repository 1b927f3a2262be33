// Package ratelimit implements the external API's per-role, per-identity
// token-bucket rate limiting (§6), generalizing the teacher's per-IP-only
// RateLimiter (visitor map + background eviction ticker) to key buckets by
// (role, identity, endpoint) and read budgets from config.RateLimitConfig.
package ratelimit

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cogniscale/cortex/api/auth"
	"github.com/cogniscale/cortex/config"
)

const visitorTTL = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter holds one token bucket per (role, identity, endpoint) triple, with
// a background goroutine evicting idle buckets, mirroring the teacher's
// RateLimiter visitor-map idiom.
type Limiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rpm      map[auth.Role]int
	burst    int
	logger   *zap.Logger
}

// NewLimiter builds a Limiter from cfg and starts its eviction loop, bound
// to ctx's lifetime. A nil logger defaults to zap.NewNop().
func NewLimiter(ctx context.Context, cfg config.RateLimitConfig, logger *zap.Logger) *Limiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 20
	}
	l := &Limiter{
		visitors: make(map[string]*visitor),
		rpm: map[auth.Role]int{
			auth.RoleAdmin:     orDefault(cfg.AdminRPM, 1000),
			auth.RoleDeveloper: orDefault(cfg.DeveloperRPM, 500),
			auth.RoleAnalyst:   orDefault(cfg.AnalystRPM, 300),
			auth.RoleUser:      orDefault(cfg.UserRPM, 100),
			auth.RoleGuest:     orDefault(cfg.GuestRPM, 100),
		},
		burst:  burst,
		logger: logger,
	}
	go l.evictLoop(ctx)
	return l
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func (l *Limiter) evictLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.mu.Lock()
			for key, v := range l.visitors {
				if time.Since(v.lastSeen) > visitorTTL {
					delete(l.visitors, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Allow reports whether one request from role/identity against endpoint may
// proceed, consuming a token from its bucket if so.
func (l *Limiter) Allow(role auth.Role, identity, endpoint string) bool {
	key := string(role) + "|" + identity + "|" + endpoint
	l.mu.Lock()
	v, ok := l.visitors[key]
	if !ok {
		rpm := l.rpm[role]
		if rpm <= 0 {
			rpm = l.rpm[auth.RoleGuest]
		}
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = time.Now()
	limiter := v.limiter
	l.mu.Unlock()
	return limiter.Allow()
}

// Middleware rejects requests over budget with 429, keying buckets on the
// authenticated caller's role and subject (falling back to the remote
// address for unauthenticated callers) and the request path.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := auth.RoleFromContext(r.Context())
		if !ok {
			role = auth.RoleGuest
		}
		identity, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			identity = r.RemoteAddr
		}
		if !l.Allow(role, identity, r.URL.Path) {
			l.logger.Debug("rate limit exceeded", zap.String("role", string(role)), zap.String("identity", identity), zap.String("path", r.URL.Path))
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate_limited","message":"too many requests"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
