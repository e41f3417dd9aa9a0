package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/slivora/slivora-backend/internal/pkg/logger"
	"github.com/slivora/slivora-backend/internal/requestdata"
)

// Limiter answers whether one more hit is allowed for a key within the
// window, and if not, how long the caller should wait.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error)
}

// redisLimiter is a fixed-window counter: INCR plus an expiry set on
// the first hit of each window. Counts are shared across replicas.
type redisLimiter struct {
	client *redis.Client
}

func NewRedisLimiter(client *redis.Client) Limiter {
	return &redisLimiter{client: client}
}

func (rl *redisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	count, err := rl.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if count == 1 {
		if err := rl.client.Expire(ctx, key, window).Err(); err != nil {
			return false, 0, err
		}
	}
	if count > int64(limit) {
		ttl, err := rl.client.TTL(ctx, key).Result()
		if err != nil || ttl < 0 {
			ttl = window
		}
		return false, ttl, nil
	}
	return true, 0, nil
}

// memoryLimiter is a sliding-window fallback for single-instance runs
// without Redis.
type memoryLimiter struct {
	mu   sync.Mutex
	hits map[string][]time.Time
}

func NewMemoryLimiter() Limiter {
	return &memoryLimiter{hits: make(map[string][]time.Time)}
}

func (ml *memoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	now := time.Now()
	cutoff := now.Add(-window)

	ml.mu.Lock()
	defer ml.mu.Unlock()

	kept := ml.hits[key][:0]
	for _, at := range ml.hits[key] {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	if len(kept) >= limit {
		ml.hits[key] = kept
		retryAfter := window - now.Sub(kept[0])
		if retryAfter < 0 {
			retryAfter = 0
		}
		return false, retryAfter, nil
	}
	ml.hits[key] = append(kept, now)
	return true, 0, nil
}

type RateLimitMiddleware struct {
	limiter Limiter
	log     *logger.Logger
}

func NewRateLimitMiddleware(limiter Limiter, log *logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		log:     log.With("middleware", "RateLimitMiddleware"),
	}
}

// Limit caps hits per authenticated user. Runs after RequireAuth.
func (rm *RateLimitMiddleware) Limit(name string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := requestdata.GetRequestData(c.Request.Context())
		if rd == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		key := fmt.Sprintf("ratelimit:%s:%s", name, rd.UserID)
		allowed, retryAfter, err := rm.limiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			// A broken limiter backend should not take the API down.
			rm.log.Warn("Rate limiter unavailable, allowing request", "key", key, "error", err)
			c.Next()
			return
		}
		if !allowed {
			seconds := int(retryAfter.Round(time.Second).Seconds())
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", fmt.Sprintf("%d", seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": seconds,
			})
			return
		}
		c.Next()
	}
}
