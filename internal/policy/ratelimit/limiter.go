// Package ratelimit enforces a minimum interval between requests to the same domain.
package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/JakeFAU/storefront-insights/internal/telemetry"
	"golang.org/x/time/rate"
)

// DefaultIdleTTL is how long a domain's limiter survives without traffic.
const DefaultIdleTTL = 10 * time.Minute

type domainLimiter struct {
	limiter  *rate.Limiter
	lastUsed time.Time
	inflight int
}

// Limiter manages per-domain rate limits. It is safe for concurrent use and
// holds no request data. Limiters idle for longer than the TTL are dropped.
type Limiter struct {
	mu        sync.Mutex
	limiters  map[string]*domainLimiter
	limit     rate.Limit
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// Config holds rate limiter configuration.
type Config struct {
	// MinInterval is the floor between two requests to one domain. Zero disables limiting.
	MinInterval time.Duration
	// IdleTTL evicts limiters unused for this long. Zero uses DefaultIdleTTL.
	// It is never shorter than MinInterval.
	IdleTTL time.Duration
}

// New creates a new Limiter.
func New(cfg Config) *Limiter {
	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}
	ttl := cfg.IdleTTL
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	if ttl < cfg.MinInterval {
		ttl = cfg.MinInterval
	}
	return &Limiter{
		limiters: make(map[string]*domainLimiter),
		limit:    limit,
		idleTTL:  ttl,
		now:      time.Now,
	}
}

// Wait blocks until a token is available for the URL's domain, respecting the context.
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	domain := domainOf(rawURL)

	l.mu.Lock()
	now := l.now()
	l.sweepLocked(now)
	entry, exists := l.limiters[domain]
	if !exists {
		entry = &domainLimiter{limiter: rate.NewLimiter(l.limit, 1)}
		l.limiters[domain] = entry
	}
	entry.inflight++
	l.mu.Unlock()

	start := time.Now()
	err := entry.limiter.Wait(ctx)

	l.mu.Lock()
	entry.inflight--
	entry.lastUsed = l.now()
	l.mu.Unlock()

	if err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	if waited := time.Since(start); waited > time.Millisecond {
		telemetry.ObserveRateLimitDelay(domain, waited)
	}
	return nil
}

// sweepLocked drops idle limiters at most once per TTL. A limiter idle for
// longer than the interval has a full bucket, so dropping it changes nothing.
func (l *Limiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < l.idleTTL {
		return
	}
	l.lastSweep = now
	for domain, entry := range l.limiters {
		if entry.inflight == 0 && now.Sub(entry.lastUsed) >= l.idleTTL {
			delete(l.limiters, domain)
		}
	}
}

func (l *Limiter) domains() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}
