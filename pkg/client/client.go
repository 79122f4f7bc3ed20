// Package client is a Go SDK for the SMART(ER) Goals API. Besides plain
// request helpers it provides the gateway adapters used by optimistic cells
// and the streaming breakdown accumulator.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// APIError is a non-2xx answer decoded from the server's error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("smartgoals: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("smartgoals: %d: %s", e.Status, e.Message)
}

// Client talks to the API over HTTP/JSON with a bearer token.
type Client struct {
	baseURL string
	http    *http.Client
	stream  *http.Client
	logger  *slog.Logger

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the client used for regular requests. Streaming
// requests use a copy of it without a timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
		sc := *hc
		sc.Timeout = 0
		c.stream = &sc
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a client for the API rooted at baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		stream:  &http.Client{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	var out Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTask sends a partial task update and returns the stored task.
func (c *Client) UpdateTask(ctx context.Context, id string, u TaskUpdate) (*Task, error) {
	var out Task
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(id), u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetGoal(ctx context.Context, id string) (*Goal, error) {
	var out Goal
	if err := c.do(ctx, http.MethodGet, "/api/goals/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateGoal sends a partial goal update and returns the stored goal.
func (c *Client) UpdateGoal(ctx context.Context, id string, u GoalUpdate) (*Goal, error) {
	var out Goal
	if err := c.do(ctx, http.MethodPatch, "/api/goals/"+url.PathEscape(id), u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListGoals(ctx context.Context) ([]Goal, error) {
	var out []Goal
	if err := c.do(ctx, http.MethodGet, "/api/goals", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListGoalsDetailed returns every goal with its weekly goals and tasks.
func (c *Client) ListGoalsDetailed(ctx context.Context) ([]Goal, error) {
	var out []Goal
	if err := c.do(ctx, http.MethodGet, "/api/goals/detailed", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateBreakdown runs a one-shot, non-streaming generation.
func (c *Client) GenerateBreakdown(ctx context.Context, req BreakdownRequest) (*Breakdown, error) {
	var out Breakdown
	if err := c.do(ctx, http.MethodPost, "/api/goals/breakdown", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveGoal persists a goal together with an accepted breakdown.
func (c *Client) SaveGoal(ctx context.Context, goal NewGoal, bd Breakdown) (*Goal, error) {
	var out Goal
	body := map[string]any{"goalData": goal, "breakdown": bd}
	if err := c.do(ctx, http.MethodPost, "/api/goals/complete", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetSettings(ctx context.Context) (*Settings, error) {
	var out Settings
	if err := c.do(ctx, http.MethodGet, "/api/user/settings", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateSettings(ctx context.Context, u SettingsUpdate) (*Settings, error) {
	var out Settings
	if err := c.do(ctx, http.MethodPatch, "/api/user/settings", u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var env struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	apiErr := &APIError{Status: resp.StatusCode}
	if json.Unmarshal(data, &env) == nil && env.Error != "" {
		apiErr.Message = env.Error
		apiErr.Code = env.Code
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	return apiErr
}
