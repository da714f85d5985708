package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/limited", RateLimitMiddleware("test", 0.001, 2, func(c *gin.Context) string {
		return c.GetHeader("X-Key")
	}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func(key string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/limited", nil)
		req.Header.Set("X-Key", key)
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("a"))
	assert.Equal(t, http.StatusOK, do("a"))
	assert.Equal(t, http.StatusTooManyRequests, do("a"))
	assert.Equal(t, http.StatusOK, do("b"), "keys are limited independently")
}

func TestPruneLimiters(t *testing.T) {
	now := time.Now()
	getLimiter("prune:stale", 1, 1, now.Add(-time.Hour))
	getLimiter("prune:fresh", 1, 1, now)

	PruneLimiters(now)

	mu.Lock()
	_, staleExists := limiters["prune:stale"]
	_, freshExists := limiters["prune:fresh"]
	mu.Unlock()
	assert.False(t, staleExists)
	assert.True(t, freshExists)
}

func TestRateLimitByClientIP(t *testing.T) {
	gin.SetMode(gin.DebugMode)
	defer gin.SetMode(gin.TestMode)

	router := gin.New()
	router.POST("/submissions", RateLimitMiddleware("client-ip", 0.001, 1, ClientIPKey), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	do := func(remoteAddr string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/submissions", nil)
		req.RemoteAddr = remoteAddr
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, do("203.0.113.1:5000"))
	assert.Equal(t, http.StatusCreated, do("203.0.113.2:5000"), "another congregant has its own bucket")
	assert.Equal(t, http.StatusTooManyRequests, do("203.0.113.1:5001"))
}
