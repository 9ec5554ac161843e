// Package api wraps the persistence service. Every call is a single round
// trip with no retries; transport failures, non-2xx statuses and unparsable
// bodies all come back as a plain error message for the status line.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// TaskRecord is the wire shape of a task. Ids are assigned by the server as
// integers; the store converts them to strings at the boundary.
type TaskRecord struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Date        string          `json:"date"`
	Time        string          `json:"time,omitempty"`
	GroupID     string          `json:"groupId"`
	Completed   bool            `json:"completed"`
	Subtasks    []SubtaskRecord `json:"subtasks,omitempty"`
}

type SubtaskRecord struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// DaySummary is one row of the month activity feed.
type DaySummary struct {
	Date      string `json:"date"`
	HasTasks  bool   `json:"hasTasks"`
	Pending   int    `json:"pending"`
	Completed int    `json:"completed"`
}

type CreateTask struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Date        string          `json:"date"`
	Time        string          `json:"time,omitempty"`
	GroupID     string          `json:"groupId"`
	Subtasks    []CreateSubtask `json:"subtasks,omitempty"`
}

type CreateSubtask struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// UpdateTask carries the mutable task fields. Nil means "leave unchanged".
type UpdateTask struct {
	ID          string  `json:"id"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Time        *string `json:"time,omitempty"`
	GroupID     *string `json:"groupId,omitempty"`
}

type Client struct {
	base  string
	token string
	http  *http.Client
}

func NewClient(base, token string) *Client {
	return &Client{
		base:  base,
		token: token,
		http:  &http.Client{Timeout: 15 * time.Second},
	}
}

// SetCredential replaces the bearer credential used for every request.
func (c *Client) SetCredential(token string) { c.token = token }

func (c *Client) ListDay(ctx context.Context, date string) ([]TaskRecord, error) {
	var list []TaskRecord
	err := c.do(ctx, http.MethodGet, "/todos?date="+url.QueryEscape(date), nil, &list)
	return list, err
}

func (c *Client) CreateTask(ctx context.Context, payload CreateTask) (TaskRecord, error) {
	var created TaskRecord
	err := c.do(ctx, http.MethodPost, "/todos", payload, &created)
	return created, err
}

func (c *Client) ToggleTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPatch, "/todos", map[string]string{"id": id}, nil)
}

func (c *Client) UpdateTask(ctx context.Context, payload UpdateTask) error {
	return c.do(ctx, http.MethodPut, "/todos", payload, nil)
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/todos?id="+url.QueryEscape(id), nil, nil)
}

func (c *Client) MonthSummary(ctx context.Context, month string) ([]DaySummary, error) {
	var days []DaySummary
	err := c.do(ctx, http.MethodGet, "/calendar?month="+url.QueryEscape(month), nil, &days)
	return days, err
}

func (c *Client) AddSubtask(ctx context.Context, todoID, title string) (SubtaskRecord, error) {
	var created SubtaskRecord
	err := c.do(ctx, http.MethodPost, "/subtasks", map[string]string{"todoId": todoID, "title": title}, &created)
	return created, err
}

func (c *Client) ToggleSubtask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPatch, "/subtasks", map[string]string{"id": id}, nil)
}

func (c *Client) UpdateSubtask(ctx context.Context, id, title string) error {
	return c.do(ctx, http.MethodPut, "/subtasks", map[string]string{"id": id, "title": title}, nil)
}

func (c *Client) DeleteSubtask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/subtasks", map[string]string{"id": id}, nil)
}

// envelope is the uniform wire shape of every response.
type envelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && env.Error != "" {
			return fmt.Errorf("%s", env.Error)
		}
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return fmt.Errorf("invalid response: %v", decodeErr)
	}
	if !env.OK {
		if env.Error != "" {
			return fmt.Errorf("%s", env.Error)
		}
		return fmt.Errorf("request rejected")
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("invalid response: %v", err)
		}
	}
	return nil
}

// FormatID renders a server-assigned numeric id the way the rest of the
// engine carries ids.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
