package middleware

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResponseCache is the slice of the cache client the middleware needs.
type ResponseCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CacheMiddleware caches single-resource GET responses and drops the entry
// when the resource is mutated. Responses are not user specific, so the key
// is derived from the resource path alone.
type CacheMiddleware struct {
	cache ResponseCache
	ttl   time.Duration
}

func NewCacheMiddleware(cache ResponseCache, ttl time.Duration) *CacheMiddleware {
	return &CacheMiddleware{
		cache: cache,
		ttl:   ttl,
	}
}

// responseBuffer mirrors writes into a buffer so a successful response can
// be stored after the handler runs.
type responseBuffer struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (r *responseBuffer) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseBuffer) WriteString(s string) (int, error) {
	r.body.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}

// CacheResponse serves a GET from the cache when an entry exists and stores
// the body on a 200 miss. Cache backend errors fall through to the handler.
func (m *CacheMiddleware) CacheResponse() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		key, ok := resourceKey(c.Request.URL.Path)
		if !ok {
			c.Next()
			return
		}

		if cached, err := m.cache.Get(c.Request.Context(), key); err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
			c.Abort()
			return
		}

		writer := c.Writer
		buff := &responseBuffer{ResponseWriter: writer, body: &bytes.Buffer{}}
		c.Writer = buff

		c.Next()

		if c.Writer.Status() == http.StatusOK {
			if err := m.cache.Set(c.Request.Context(), key, buff.body.String(), m.ttl); err != nil {
				log.Error("Failed to cache response", zap.Error(err), zap.String("key", key))
			}
		}
		c.Writer = writer
	}
}

// CacheInvalidate drops the resource's cached entry after a successful
// mutation so the next read refetches from the database.
func (m *CacheMiddleware) CacheInvalidate() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() < http.StatusOK || c.Writer.Status() >= http.StatusMultipleChoices {
			return
		}
		key, ok := resourceKey(c.Request.URL.Path)
		if !ok {
			return
		}
		if err := m.cache.Delete(c.Request.Context(), key); err != nil {
			log.Error("Failed to invalidate cache", zap.Error(err), zap.String("key", key))
		}
	}
}

// resourceKey maps paths like /api/tasks/<uuid> and /api/tasks/<uuid>/assign
// to the same "response:tasks:<uuid>" key, so a mutation through the assign
// route invalidates the plain read.
func resourceKey(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 3 || parts[0] != "api" {
		return "", false
	}
	if _, err := uuid.Parse(parts[2]); err != nil {
		return "", false
	}
	return "response:" + parts[1] + ":" + parts[2], true
}
