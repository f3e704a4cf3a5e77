// Package client is a typed HTTP client for the task board API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"taskboard/pkg/activity"
	"taskboard/pkg/task"
)

// DefaultBaseURL is used when New is given an empty base URL.
const DefaultBaseURL = "http://localhost:8080"

// List filters accepted by Client.List.
const (
	ListAll       = ""
	ListActive    = "active"
	ListCompleted = "completed"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("taskboard: HTTP %d", e.Status)
	}
	return fmt.Sprintf("taskboard: HTTP %d: %s", e.Status, e.Message)
}

// Status mirrors the /api/status response.
type Status struct {
	Tasks       int  `json:"tasks"`
	ToDo        int  `json:"todo"`
	InProgress  int  `json:"in_progress"`
	Completed   int  `json:"completed"`
	ActiveGroup *int `json:"active_group"`
	Activity    int  `json:"activity"`
}

// Client talks to a task board server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the server at baseURL.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// List returns tasks matching the given filter (ListAll, ListActive or ListCompleted).
func (c *Client) List(ctx context.Context, kind string) ([]task.Task, error) {
	q := url.Values{}
	if kind != "" {
		q.Set("type", kind)
	}
	var tasks []task.Task
	err := c.do(ctx, http.MethodGet, "/api/tasks", q, nil, &tasks)
	return tasks, err
}

// Board returns the three-column view.
func (c *Client) Board(ctx context.Context) (task.Board, error) {
	var b task.Board
	err := c.do(ctx, http.MethodGet, "/api/tasks", url.Values{"type": {"board"}}, nil, &b)
	return b, err
}

// Create adds a task.
func (c *Client) Create(ctx context.Context, nt task.NewTask) error {
	body := map[string]any{
		"title":       nt.Title,
		"description": nt.Description,
		"persona":     nt.Persona,
		"group":       nt.Group,
	}
	return c.do(ctx, http.MethodPost, "/api/tasks", nil, body, nil)
}

// Update merges p over the task with the given id. The server reports
// success even when no task has that id.
func (c *Client) Update(ctx context.Context, id int, p task.Patch) error {
	body := map[string]any{"id": id}
	if p.Title != nil {
		body["title"] = *p.Title
	}
	if p.Description != nil {
		body["description"] = *p.Description
	}
	if p.Persona != nil {
		body["persona"] = *p.Persona
	}
	if p.Group != nil {
		body["group"] = *p.Group
	}
	if p.Completed != nil {
		body["completed"] = *p.Completed
	}
	return c.do(ctx, http.MethodPut, "/api/tasks", nil, body, nil)
}

// Complete marks the task with the given id completed.
func (c *Client) Complete(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodPatch, "/api/tasks", nil, map[string]any{"id": id, "completed": true}, nil)
}

// CompleteByTitle marks the first task with exactly this title completed.
func (c *Client) CompleteByTitle(ctx context.Context, title string) error {
	return c.do(ctx, http.MethodPatch, "/api/tasks", nil, map[string]any{"title": title, "completed": true}, nil)
}

// Delete removes the task with the given id.
func (c *Client) Delete(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks", url.Values{"id": {strconv.Itoa(id)}}, nil, nil)
}

// Status returns the board summary.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var st Status
	err := c.do(ctx, http.MethodGet, "/api/status", nil, nil, &st)
	return st, err
}

// Activity returns up to limit recent events, newest first.
func (c *Client) Activity(ctx context.Context, limit int) ([]activity.Event, error) {
	var events []activity.Event
	err := c.do(ctx, http.MethodGet, "/api/activity", url.Values{"limit": {strconv.Itoa(limit)}}, nil, &events)
	return events, err
}

// Export downloads the board rendered in the given format (json, csv or pdf).
func (c *Client) Export(ctx context.Context, format string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/tasks/export", url.Values{"format": {format}}, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, apiError(resp.StatusCode, data)
	}
	return data, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, q url.Values, body any) (*http.Request, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var r io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		r = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, out any) error {
	req, err := c.newRequest(ctx, method, path, q, body)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return apiError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func apiError(status int, body []byte) *APIError {
	var m struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &m); err != nil || m.Message == "" {
		m.Message = strings.TrimSpace(string(body))
	}
	return &APIError{Status: status, Message: m.Message}
}
