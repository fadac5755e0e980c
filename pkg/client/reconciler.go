package client

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ShakirYasin/exact-sol-test/internal/api/dto"
)

// recognizedActions are the notification types that invalidate the cache.
// Anything else on the socket is ignored.
var recognizedActions = map[string]struct{}{
	"created":  {},
	"updated":  {},
	"deleted":  {},
	"assigned": {},
}

// Reconciler keeps a local copy of the task list consistent with the server.
// It does not patch the cache from notification payloads; any recognized
// notification throws the whole list away and refetches it. Tasks returning
// from the server are the only source of truth, so a dropped notification
// costs freshness, never correctness.
type Reconciler struct {
	client *Client
	log    *zap.Logger

	mu    sync.RWMutex
	tasks []dto.TaskResponse
	stale bool
}

// NewReconciler creates a reconciler on top of an authenticated client
func NewReconciler(c *Client, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{
		client: c,
		log:    log,
		stale:  true,
	}
}

// Tasks returns the cached task list, refetching first if the cache has been
// invalidated since the last read.
func (r *Reconciler) Tasks(ctx context.Context) ([]dto.TaskResponse, error) {
	r.mu.RLock()
	if !r.stale {
		cached := make([]dto.TaskResponse, len(r.tasks))
		copy(cached, r.tasks)
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	return r.refetch(ctx)
}

// Invalidate marks the cache stale. The next Tasks call refetches.
func (r *Reconciler) Invalidate() {
	r.mu.Lock()
	r.stale = true
	r.mu.Unlock()
}

// CreateTask creates a task and invalidates the cache on success. A failed
// mutation leaves the cached list untouched.
func (r *Reconciler) CreateTask(ctx context.Context, req dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	created, err := r.client.CreateTask(ctx, req)
	if err != nil {
		return nil, err
	}
	r.Invalidate()
	return created, nil
}

// UpdateTask patches a task and invalidates the cache on success
func (r *Reconciler) UpdateTask(ctx context.Context, id uuid.UUID, req dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	updated, err := r.client.UpdateTask(ctx, id, req)
	if err != nil {
		return nil, err
	}
	r.Invalidate()
	return updated, nil
}

// DeleteTask deletes a task and invalidates the cache on success
func (r *Reconciler) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if err := r.client.DeleteTask(ctx, id); err != nil {
		return err
	}
	r.Invalidate()
	return nil
}

// AssignTask assigns a task and invalidates the cache on success
func (r *Reconciler) AssignTask(ctx context.Context, id, assigneeID uuid.UUID) (*dto.TaskResponse, error) {
	assigned, err := r.client.AssignTask(ctx, id, assigneeID)
	if err != nil {
		return nil, err
	}
	r.Invalidate()
	return assigned, nil
}

func (r *Reconciler) refetch(ctx context.Context) ([]dto.TaskResponse, error) {
	tasks, err := r.client.Tasks(ctx, "")
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.tasks = tasks
	r.stale = false
	r.mu.Unlock()

	cached := make([]dto.TaskResponse, len(tasks))
	copy(cached, tasks)
	return cached, nil
}

// wsURL derives the websocket endpoint from the client's base URL
func (r *Reconciler) wsURL() (string, error) {
	u, err := url.Parse(r.client.baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	q := u.Query()
	q.Set("token", r.client.token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Listen connects to the server's websocket and processes notifications
// until the context is cancelled or the connection drops. Each recognized
// notification invalidates the cache and triggers an immediate refetch.
func (r *Reconciler) Listen(ctx context.Context) error {
	target, err := r.wsURL()
	if err != nil {
		return err
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, target, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	r.log.Info("reconciler connected", zap.String("url", target))

	// Unblock ReadMessage when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			r.log.Debug("discarding malformed notification", zap.Error(err))
			continue
		}
		if _, ok := recognizedActions[msg.Type]; !ok {
			continue
		}

		r.Invalidate()
		if _, err := r.refetch(ctx); err != nil {
			// The cache stays stale; the next Tasks call retries.
			r.log.Warn("refetch after notification failed", zap.Error(err))
		}
	}
}
