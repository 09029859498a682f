// Package limits rate-limits inbound per-session traffic (§3.5), the
// same token-bucket approach as
// ws/internal/shared/limits/connection_rate_limiter.go generalized from
// per-IP connection attempts to per-session command/message admission.
// A session over its limit has its inbound dropped silently rather than
// being disconnected, distinct from ServerCommandBuffer's TooOld/TooNew
// protocol-level rejection.
package limits

import (
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/TimonPost/net-sync/postal"
)

// Config holds the token-bucket parameters applied to every session.
type Config struct {
	PerSecond float64 // sustained commands/messages per second
	Burst     int     // max burst
}

// SessionRateLimiter holds one token bucket per live session, keyed by
// ClientId. Entries are created lazily on first use and removed
// explicitly via Remove when a session disconnects.
type SessionRateLimiter struct {
	config   Config
	mu       sync.Mutex
	limiters map[postal.ClientId]*rate.Limiter
	logger   zerolog.Logger
}

// New constructs a SessionRateLimiter applying config to every session.
func New(config Config, logger zerolog.Logger) *SessionRateLimiter {
	return &SessionRateLimiter{
		config:   config,
		limiters: make(map[postal.ClientId]*rate.Limiter),
		logger:   logger,
	}
}

// Allow reports whether id may admit one more inbound item right now,
// consuming a token from its bucket if so.
func (l *SessionRateLimiter) Allow(id postal.ClientId) bool {
	allowed := l.limiterFor(id).Allow()
	if !allowed {
		l.logger.Debug().Uint16("client_id", id).Msg("session rate limit exceeded, dropping inbound item")
	}
	return allowed
}

func (l *SessionRateLimiter) limiterFor(id postal.ClientId) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, ok := l.limiters[id]; ok {
		return limiter
	}

	limiter := rate.NewLimiter(rate.Limit(l.config.PerSecond), l.config.Burst)
	l.limiters[id] = limiter
	return limiter
}

// Remove evicts id's bucket, e.g. on session disconnect.
func (l *SessionRateLimiter) Remove(id postal.ClientId) {
	l.mu.Lock()
	delete(l.limiters, id)
	l.mu.Unlock()
}

// TrackedSessions reports how many session buckets are currently held.
func (l *SessionRateLimiter) TrackedSessions() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
