package middleware

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

const defaultIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// RateLimiter hands out one token bucket per key. Buckets idle for longer than the
// idle TTL are dropped, so the map is bounded by the keys seen within one TTL.
type RateLimiter struct {
	limiters  sync.Map
	rate      rate.Limit
	burst     int
	idleTTL   time.Duration
	now       func() time.Time
	lastSweep atomic.Int64
}

// RateLimiterOption customizes a RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithIdleTTL sets how long an unused bucket is kept.
func WithIdleTTL(d time.Duration) RateLimiterOption {
	return func(rl *RateLimiter) {
		if d > 0 {
			rl.idleTTL = d
		}
	}
}

// WithLimiterClock replaces the time source used for buckets and eviction.
func WithLimiterClock(now func() time.Time) RateLimiterOption {
	return func(rl *RateLimiter) { rl.now = now }
}

// NewRateLimiter creates a limiter allowing r events per second with the given burst per key.
// The default idle TTL is at least the time an empty bucket needs to refill.
func NewRateLimiter(r float64, burst int, opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		rate:    rate.Limit(r),
		burst:   burst,
		idleTTL: defaultIdleTTL,
		now:     time.Now,
	}
	if r > 0 {
		if refill := time.Duration(float64(burst) / r * float64(time.Second)); refill > rl.idleTTL {
			rl.idleTTL = refill
		}
	}
	for _, opt := range opts {
		opt(rl)
	}
	rl.lastSweep.Store(rl.now().UnixNano())
	return rl
}

// Allow reports whether an event for key may happen now.
func (rl *RateLimiter) Allow(key string) bool {
	now := rl.now()
	rl.sweep(now)
	entry := rl.getEntry(key)
	entry.lastSeen.Store(now.UnixNano())
	return entry.limiter.AllowN(now, 1)
}

// Len returns the number of buckets currently held.
func (rl *RateLimiter) Len() int {
	n := 0
	rl.limiters.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (rl *RateLimiter) getEntry(key string) *limiterEntry {
	if entry, ok := rl.limiters.Load(key); ok {
		return entry.(*limiterEntry)
	}
	entry, _ := rl.limiters.LoadOrStore(key, &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)})
	return entry.(*limiterEntry)
}

// sweep drops idle buckets at most once per idle TTL. Only the caller that wins the
// swap on lastSweep walks the map.
func (rl *RateLimiter) sweep(now time.Time) {
	last := rl.lastSweep.Load()
	if now.UnixNano()-last < int64(rl.idleTTL) {
		return
	}
	if !rl.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	cutoff := now.Add(-rl.idleTTL).UnixNano()
	rl.limiters.Range(func(key, value any) bool {
		if value.(*limiterEntry).lastSeen.Load() < cutoff {
			rl.limiters.Delete(key)
		}
		return true
	})
}

// RateLimit throttles requests per authenticated user, falling back to the client IP.
func RateLimit(limiter *RateLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP()
		if id := UserID(c); id != 0 {
			key = "user:" + strconv.FormatUint(uint64(id), 10)
		}
		if !limiter.Allow(key) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many requests, please slow down",
				"code":    "RATE_LIMITED",
			})
		}
		return c.Next()
	}
}
