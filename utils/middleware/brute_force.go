package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sahilchouksey/course-catalog/utils/logger"
)

// AttemptStore keeps failed-login counters and lockout keys.
// *cache.RedisCache satisfies it.
type AttemptStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
	Increment(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// attemptWindow is how long failed attempts are remembered.
const attemptWindow = 15 * time.Minute

// BruteForceProtection locks out client IPs after repeated failed logins.
// A nil *BruteForceProtection allows everything.
type BruteForceProtection struct {
	store AttemptStore
	log   *logger.Logger
}

// NewBruteForceProtection creates a new brute force protection instance
func NewBruteForceProtection(store AttemptStore, log *logger.Logger) *BruteForceProtection {
	if log == nil {
		log = logger.Nop()
	}
	return &BruteForceProtection{store: store, log: log}
}

func attemptKey(ip string) string { return fmt.Sprintf("brute_force:attempts:%s", ip) }
func lockKey(ip string) string    { return fmt.Sprintf("brute_force:lock:%s", ip) }

// lockDuration is the progressive lockout for a given attempt count.
func lockDuration(attempts int64) time.Duration {
	switch {
	case attempts >= 25:
		return 24 * time.Hour
	case attempts >= 10:
		return time.Hour
	case attempts >= 5:
		return 2 * time.Minute
	default:
		return 0
	}
}

// Guard rejects requests from a locked-out IP with 429.
func (b *BruteForceProtection) Guard() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if b == nil {
			return c.Next()
		}
		key := lockKey(c.IP())
		locked, err := b.store.Exists(c.UserContext(), key)
		if err != nil {
			// cache outage must not block logins
			b.log.Warn("brute force check failed", "error", err)
			return c.Next()
		}
		if !locked {
			return c.Next()
		}

		retryAfter := 60
		if ttl, err := b.store.TTL(c.UserContext(), key); err == nil && ttl > 0 {
			retryAfter = int(ttl.Seconds())
		}
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
		return fiber.NewError(fiber.StatusTooManyRequests,
			fmt.Sprintf("Too many failed attempts. Try again in %d seconds", retryAfter))
	}
}

// RecordFailure counts a failed login from ip and applies a lockout once
// the count crosses a threshold.
func (b *BruteForceProtection) RecordFailure(ctx context.Context, ip string) {
	if b == nil {
		return
	}
	attempts, err := b.store.Increment(ctx, attemptKey(ip))
	if err != nil {
		b.log.Warn("brute force record failed", "error", err)
		return
	}
	if attempts == 1 {
		_ = b.store.Expire(ctx, attemptKey(ip), attemptWindow)
	}
	if d := lockDuration(attempts); d > 0 {
		if err := b.store.Set(ctx, lockKey(ip), "locked", d); err != nil {
			b.log.Warn("brute force lock failed", "error", err)
			return
		}
		b.log.Info("login locked out", "ip", ip, "attempts", attempts, "duration", d)
	}
}

// RecordSuccess clears failed attempts on successful login
func (b *BruteForceProtection) RecordSuccess(ctx context.Context, ip string) {
	if b == nil {
		return
	}
	_ = b.store.Delete(ctx, attemptKey(ip), lockKey(ip))
}
