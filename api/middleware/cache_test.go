package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mediatag/tagger-api/internal/services/cache"
)

func newCachedRouter(t *testing.T, hits *int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mc := cache.NewMemoryCache(1)
	t.Cleanup(mc.Stop)

	router := gin.New()
	router.Use(CacheMiddleware(CacheConfig{
		Cache:      mc,
		DefaultTTL: time.Minute,
		Enabled:    true,
	}))
	router.GET("/tags", func(c *gin.Context) {
		atomic.AddInt64(hits, 1)
		c.JSON(http.StatusOK, gin.H{"tags": []string{"cat", "outdoor"}})
	})
	router.POST("/tags", func(c *gin.Context) {
		atomic.AddInt64(hits, 1)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestCacheMiddlewareServesSecondRequestFromCache(t *testing.T) {
	var hits int64
	router := newCachedRouter(t, &hits)

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/tags", nil))
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.NotEmpty(t, first.Header().Get("ETag"))

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/tags", nil))
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())

	assert.Equal(t, int64(1), atomic.LoadInt64(&hits), "handler should run once")
}

func TestCacheMiddlewareSkipsNonGET(t *testing.T) {
	var hits int64
	router := newCachedRouter(t, &hits)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/tags", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-Cache"))
	}

	assert.Equal(t, int64(2), atomic.LoadInt64(&hits))
}

func TestCacheMiddlewareHonorsClientBypass(t *testing.T) {
	var hits int64
	router := newCachedRouter(t, &hits)

	warm := httptest.NewRecorder()
	router.ServeHTTP(warm, httptest.NewRequest(http.MethodGet, "/tags", nil))
	assert.Equal(t, "MISS", warm.Header().Get("X-Cache"))

	req := httptest.NewRequest(http.MethodGet, "/tags", nil)
	req.Header.Set("Cache-Control", "no-cache")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "BYPASS", w.Header().Get("X-Cache"))

	assert.Equal(t, int64(2), atomic.LoadInt64(&hits))
}

func TestCacheMiddlewareVariesByQuery(t *testing.T) {
	var hits int64
	router := newCachedRouter(t, &hits)

	w1 := httptest.NewRecorder()
	router.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/tags?limit=5", nil))
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/tags?limit=10", nil))

	assert.Equal(t, "MISS", w1.Header().Get("X-Cache"))
	assert.Equal(t, "MISS", w2.Header().Get("X-Cache"))
	assert.Equal(t, int64(2), atomic.LoadInt64(&hits))
}
