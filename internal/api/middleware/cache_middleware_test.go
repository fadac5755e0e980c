package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]string
	getErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]string{}}
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	val, ok := f.entries[key]
	if !ok {
		return "", errors.New("key not found")
	}
	return val, nil
}

func (f *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = value
	return nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return nil
}

func (f *fakeCache) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// newCachedRouter mounts a resource route behind the cache middleware and
// counts how often the underlying handler actually runs.
func newCachedRouter(fc *fakeCache, hits *int, status int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cm := NewCacheMiddleware(fc, time.Minute)

	router := gin.New()
	router.GET("/api/tasks", cm.CacheResponse(), func(c *gin.Context) {
		*hits++
		c.JSON(http.StatusOK, gin.H{"data": []string{}})
	})
	router.GET("/api/tasks/:id", cm.CacheResponse(), func(c *gin.Context) {
		*hits++
		c.JSON(status, gin.H{"data": gin.H{"id": c.Param("id"), "hits": *hits}})
	})
	router.PATCH("/api/tasks/:id", cm.CacheInvalidate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": c.Param("id")}})
	})
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestCacheResponseServesRepeatReads(t *testing.T) {
	fc := newFakeCache()
	hits := 0
	router := newCachedRouter(fc, &hits, http.StatusOK)
	path := fmt.Sprintf("/api/tasks/%s", uuid.New())

	first := get(router, path)
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, 1, hits)

	second := get(router, path)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 1, hits, "second read must come from the cache")
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Contains(t, second.Header().Get("Content-Type"), "application/json")
}

func TestCacheInvalidateDropsEntryOnMutation(t *testing.T) {
	fc := newFakeCache()
	hits := 0
	router := newCachedRouter(fc, &hits, http.StatusOK)
	path := fmt.Sprintf("/api/tasks/%s", uuid.New())

	get(router, path)
	require.Equal(t, 1, fc.size())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, path, nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, fc.size(), "mutation must drop the cached entry")

	get(router, path)
	assert.Equal(t, 2, hits, "read after mutation must hit the handler")
}

func TestCacheSkipsListAndFailedResponses(t *testing.T) {
	fc := newFakeCache()
	hits := 0
	router := newCachedRouter(fc, &hits, http.StatusNotFound)

	// The list path carries no resource id and is never cached.
	get(router, "/api/tasks")
	assert.Equal(t, 0, fc.size())

	// Non-200 responses are not cached either.
	get(router, fmt.Sprintf("/api/tasks/%s", uuid.New()))
	assert.Equal(t, 0, fc.size())
}

func TestCacheBackendErrorFallsThrough(t *testing.T) {
	fc := newFakeCache()
	fc.getErr = errors.New("connection refused")
	hits := 0
	router := newCachedRouter(fc, &hits, http.StatusOK)

	w := get(router, fmt.Sprintf("/api/tasks/%s", uuid.New()))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, hits)
}

func TestResourceKeyShapes(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name    string
		path    string
		wantKey string
		wantOK  bool
	}{
		{"task read", "/api/tasks/" + id.String(), "response:tasks:" + id.String(), true},
		{"assign variant maps to the same key", "/api/tasks/" + id.String() + "/assign", "response:tasks:" + id.String(), true},
		{"list has no id", "/api/tasks", "", false},
		{"non-uuid segment", "/api/tasks/not-an-id", "", false},
		{"outside the api prefix", "/health", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := resourceKey(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}
