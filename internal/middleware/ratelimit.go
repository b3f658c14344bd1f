package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Limiter answers whether one more hit on key fits inside the window.
// The Redis store implements it with INCR and a TTL; MemoryLimiter is the
// storeless fallback.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type rateWindow struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter counts hits in fixed per-process windows. Only used when
// the service runs without Redis.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{windows: make(map[string]*rateWindow)}
}

func (r *MemoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	w, ok := r.windows[key]
	if !ok || now.After(w.resetAt) {
		r.windows[key] = &rateWindow{count: 1, resetAt: now.Add(window)}
		return true, nil
	}
	if w.count >= limit {
		return false, nil
	}
	w.count++
	return true, nil
}

func RateLimitMiddleware(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, exists := c.Get("account_id")
		if !exists {
			c.Next()
			return
		}

		path := c.Request.URL.Path

		var limit int
		var window time.Duration

		switch {
		case strings.HasSuffix(path, "/bets") && c.Request.Method == http.MethodPost:
			limit = 30 // 30 bets per minute
			window = time.Minute
		case strings.HasSuffix(path, "/games/play"):
			limit = 60 // 60 rounds per minute
			window = time.Minute
		default:
			c.Next()
			return
		}

		allowed, err := limiter.Allow(c.Request.Context(), accountID.(string)+":"+path, limit, window)
		if err != nil || !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": window.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
