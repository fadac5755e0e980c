package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShakirYasin/exact-sol-test/internal/api/dto"
)

// fakeServer is a minimal task API plus websocket endpoint for driving the
// reconciler in tests.
type fakeServer struct {
	t          *testing.T
	mu         sync.Mutex
	tasks      []dto.TaskResponse
	fetchCount int
	conns      []*websocket.Conn
	upgrader   websocket.Upgrader
}

func (s *fakeServer) handleTasks(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodPost {
		var req dto.CreateTaskRequest
		require.NoError(s.t, json.NewDecoder(r.Body).Decode(&req))
		created := sampleTask(req.Title)

		s.mu.Lock()
		s.tasks = append(s.tasks, created)
		s.mu.Unlock()

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{"data": created})
		return
	}

	s.mu.Lock()
	s.fetchCount++
	tasks := make([]dto.TaskResponse, len(s.tasks))
	copy(tasks, s.tasks)
	s.mu.Unlock()

	json.NewEncoder(w).Encode(map[string]interface{}{"data": tasks})
}

func (s *fakeServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conns = append(s.conns, conn)
	s.mu.Unlock()
}

func (s *fakeServer) setTasks(tasks []dto.TaskResponse) {
	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()
}

func (s *fakeServer) fetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchCount
}

func (s *fakeServer) broadcast(t *testing.T, msgType string) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.conns {
		payload, _ := json.Marshal(map[string]interface{}{"type": msgType, "data": nil})
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, payload))
	}
}

func newFakeServer(t *testing.T) (*fakeServer, *httptest.Server) {
	t.Helper()
	fs := &fakeServer{t: t}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks", fs.handleTasks)
	mux.HandleFunc("/ws", fs.handleWS)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return fs, srv
}

func sampleTask(title string) dto.TaskResponse {
	return dto.TaskResponse{
		ID:     uuid.New(),
		Title:  title,
		Status: "pending",
	}
}

func TestReconcilerInitialFetch(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.setTasks([]dto.TaskResponse{sampleTask("first")})

	c := NewClient(srv.URL)
	c.SetToken("test-token")
	r := NewReconciler(c, nil)

	tasks, err := r.Tasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "first", tasks[0].Title)

	// Second read serves from cache, no extra fetch.
	_, err = r.Tasks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fs.fetches())
}

func TestReconcilerRefetchesOnNotification(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.setTasks([]dto.TaskResponse{sampleTask("first")})

	c := NewClient(srv.URL)
	c.SetToken("test-token")
	r := NewReconciler(c, nil)

	_, err := r.Tasks(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Listen(ctx)

	require.Eventually(t, func() bool {
		fs.mu.Lock()
		defer fs.mu.Unlock()
		return len(fs.conns) == 1
	}, 2*time.Second, 10*time.Millisecond, "reconciler should connect")

	fs.setTasks([]dto.TaskResponse{sampleTask("first"), sampleTask("second")})
	fs.broadcast(t, "created")

	require.Eventually(t, func() bool {
		tasks, err := r.Tasks(context.Background())
		return err == nil && len(tasks) == 2
	}, 2*time.Second, 10*time.Millisecond, "cache should converge to the server state")
}

func TestReconcilerIgnoresUnknownMessageTypes(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.setTasks([]dto.TaskResponse{sampleTask("first")})

	c := NewClient(srv.URL)
	c.SetToken("test-token")
	r := NewReconciler(c, nil)

	_, err := r.Tasks(context.Background())
	require.NoError(t, err)
	before := fs.fetches()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Listen(ctx)

	require.Eventually(t, func() bool {
		fs.mu.Lock()
		defer fs.mu.Unlock()
		return len(fs.conns) == 1
	}, 2*time.Second, 10*time.Millisecond)

	fs.broadcast(t, "count")
	fs.broadcast(t, "presence")

	// Give the reconciler a moment to (not) react.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, before, fs.fetches(), "unrecognized messages must not trigger refetches")

	tasks, err := r.Tasks(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestReconcilerListenStopsOnCancel(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.setTasks(nil)

	c := NewClient(srv.URL)
	c.SetToken("test-token")
	r := NewReconciler(c, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Listen(ctx) }()

	require.Eventually(t, func() bool {
		fs.mu.Lock()
		defer fs.mu.Unlock()
		return len(fs.conns) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Listen did not stop after cancel")
	}
}

func TestReconcilerMutationInvalidatesCache(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.setTasks([]dto.TaskResponse{sampleTask("first")})

	c := NewClient(srv.URL)
	c.SetToken("test-token")
	r := NewReconciler(c, nil)

	tasks, err := r.Tasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	created, err := r.CreateTask(context.Background(), dto.CreateTaskRequest{Title: "second"})
	require.NoError(t, err)
	assert.Equal(t, "second", created.Title)

	// The create marked the cache stale, so this read refetches.
	tasks, err = r.Tasks(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	assert.Equal(t, 2, fs.fetches())
}
