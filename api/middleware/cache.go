package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mediatag/tagger-api/internal/services/cache"
)

// CacheConfig holds configuration for cache middleware
type CacheConfig struct {
	Cache      cache.Cache
	DefaultTTL time.Duration
	Enabled    bool
}

// cachedResponse is the stored form of a cacheable HTTP response
type cachedResponse struct {
	Status      int         `json:"status"`
	Headers     http.Header `json:"headers"`
	Body        []byte      `json:"body"`
	ContentType string      `json:"content_type"`
	CachedAt    time.Time   `json:"cached_at"`
	ETag        string      `json:"etag"`
}

// responseWriter captures the response body for caching
type responseWriter struct {
	gin.ResponseWriter
	body   *bytes.Buffer
	status int
}

func (w *responseWriter) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// CacheMiddleware caches successful GET responses. Other methods pass
// through untouched, so it is safe on groups that also serve writes.
func CacheMiddleware(config CacheConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !config.Enabled || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		if shouldBypassCache(c.Request) {
			c.Header("X-Cache", "BYPASS")
			c.Next()
			return
		}

		key := cacheKey(c.Request)

		if data, found := config.Cache.Get(context.Background(), key); found {
			var response cachedResponse
			if err := json.Unmarshal(data, &response); err == nil {
				c.Header("X-Cache", "HIT")
				c.Header("Age", fmt.Sprintf("%d", int(time.Since(response.CachedAt).Seconds())))
				for name, values := range response.Headers {
					for _, value := range values {
						c.Header(name, value)
					}
				}
				c.Data(response.Status, response.ContentType, response.Body)
				c.Abort()
				return
			}
		}

		c.Header("X-Cache", "MISS")

		w := &responseWriter{
			ResponseWriter: c.Writer,
			body:           bytes.NewBuffer(nil),
			status:         http.StatusOK,
		}
		c.Writer = w

		c.Next()

		if w.status != http.StatusOK || w.body.Len() == 0 {
			return
		}

		response := cachedResponse{
			Status:      w.status,
			Headers:     c.Writer.Header(),
			Body:        w.body.Bytes(),
			ContentType: c.Writer.Header().Get("Content-Type"),
			CachedAt:    time.Now(),
			ETag:        etagFor(w.body.Bytes()),
		}

		if data, err := json.Marshal(response); err == nil {
			_ = config.Cache.Set(context.Background(), key, data, config.DefaultTTL)
		}

		c.Header("ETag", response.ETag)
	}
}

// shouldBypassCache honors client Cache-Control and Pragma request headers
func shouldBypassCache(req *http.Request) bool {
	cacheControl := req.Header.Get("Cache-Control")
	for _, directive := range strings.Split(strings.ToLower(cacheControl), ",") {
		directive = strings.TrimSpace(directive)
		if directive == "no-cache" || directive == "no-store" || directive == "max-age=0" {
			return true
		}
	}

	return req.Header.Get("Pragma") == "no-cache"
}

// cacheKey builds a stable key from the path and sorted query parameters
func cacheKey(req *http.Request) string {
	parts := []string{req.URL.Path}

	if req.URL.RawQuery != "" {
		params := req.URL.Query()
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			for _, v := range params[k] {
				parts = append(parts, fmt.Sprintf("%s=%s", k, v))
			}
		}
	}

	return "http:" + strings.Join(parts, ":")
}

func etagFor(body []byte) string {
	hash := sha256.Sum256(body)
	return fmt.Sprintf(`"%s"`, hex.EncodeToString(hash[:]))
}
