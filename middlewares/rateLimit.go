package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	limiters = make(map[string]*limiterEntry)
	mu       sync.Mutex
)

func getLimiter(key string, r rate.Limit, b int, now time.Time) *rate.Limiter {
	mu.Lock()
	defer mu.Unlock()

	entry, exists := limiters[key]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(r, b)}
		limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// PruneLimiters forgets limiters that have not been used for a while.
func PruneLimiters(now time.Time) int {
	mu.Lock()
	defer mu.Unlock()

	removed := 0
	for key, entry := range limiters {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(limiters, key)
			removed++
		}
	}
	return removed
}

// ClientIPKey buckets requests by the caller's address.
func ClientIPKey(c *gin.Context) string {
	return c.ClientIP()
}

// RateLimitMiddleware allows r requests per second with burst b for each key.
// Keys are namespaced by the route group so limits do not bleed across groups.
func RateLimitMiddleware(name string, r rate.Limit, b int, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := name + ":" + keyFunc(c)
		limiter := getLimiter(key, r, b, time.Now())

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "요청이 너무 많습니다. 잠시 후 다시 시도해주세요."})
			return
		}

		c.Next()
	}
}
