// Package client is the Go SDK for the task manager API. It pairs a typed
// REST client with a websocket reconciler that keeps a local task cache in
// step with server-side mutations.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/ShakirYasin/exact-sol-test/internal/api/dto"
)

// APIError carries the status code and server message of a failed request
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client is a typed HTTP client for the task manager API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new API client for the given base URL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetToken sets the bearer token used on subsequent requests
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current bearer token
func (c *Client) Token() string {
	return c.token
}

type dataEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var env dataEnvelope
		msg := string(raw)
		if json.Unmarshal(raw, &env) == nil && env.Error != "" {
			msg = env.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// doData unwraps responses shaped as {"data": ...}
func (c *Client) doData(ctx context.Context, method, path string, body, out interface{}) error {
	var env dataEnvelope
	if err := c.do(ctx, method, path, body, &env); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

// Login authenticates and stores the returned token on the client
func (c *Client) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	var resp dto.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", dto.LoginRequest{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.token = resp.AccessToken
	return &resp, nil
}

// Register creates an account and stores the returned token on the client
func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (*dto.LoginResponse, error) {
	var resp dto.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &resp); err != nil {
		return nil, err
	}
	c.token = resp.AccessToken
	return &resp, nil
}

// Logout invalidates the current token server-side and clears it locally
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

// Me returns the authenticated user's profile
func (c *Client) Me(ctx context.Context) (*dto.UserResponse, error) {
	var u dto.UserResponse
	if err := c.doData(ctx, http.MethodGet, "/api/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Tasks lists all tasks, optionally filtered by status
func (c *Client) Tasks(ctx context.Context, status string) ([]dto.TaskResponse, error) {
	path := "/api/tasks"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var tasks []dto.TaskResponse
	if err := c.doData(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Task returns a single task by id
func (c *Client) Task(ctx context.Context, id uuid.UUID) (*dto.TaskResponse, error) {
	var t dto.TaskResponse
	if err := c.doData(ctx, http.MethodGet, "/api/tasks/"+id.String(), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTask creates a new task
func (c *Client) CreateTask(ctx context.Context, req dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	var t dto.TaskResponse
	if err := c.doData(ctx, http.MethodPost, "/api/tasks", req, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTask applies a partial update to a task
func (c *Client) UpdateTask(ctx context.Context, id uuid.UUID, req dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	var t dto.TaskResponse
	if err := c.doData(ctx, http.MethodPatch, "/api/tasks/"+id.String(), req, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTask removes a task
func (c *Client) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+id.String(), nil, nil)
}

// AssignTask reassigns a task to another user. Requires an admin token.
func (c *Client) AssignTask(ctx context.Context, id, assigneeID uuid.UUID) (*dto.TaskResponse, error) {
	var t dto.TaskResponse
	err := c.doData(ctx, http.MethodPatch, "/api/tasks/"+id.String()+"/assign", dto.AssignTaskRequest{
		AssigneeID: assigneeID,
	}, &t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Users lists all registered users
func (c *Client) Users(ctx context.Context) ([]dto.UserResponse, error) {
	var users []dto.UserResponse
	if err := c.doData(ctx, http.MethodGet, "/api/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Events returns the audit log. Requires an admin token.
func (c *Client) Events(ctx context.Context) ([]dto.EventResponse, error) {
	var events []dto.EventResponse
	if err := c.doData(ctx, http.MethodGet, "/api/events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}
