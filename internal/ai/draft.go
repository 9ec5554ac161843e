// Package ai talks to the task-drafting collaborator: free text in, a
// structured task draft out. The collaborator is a black box; everything it
// returns is validated here before the store is allowed to act on it.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"chronos/internal/task"
)

// Draft is a proposed task extracted from free text. By the time a Draft
// leaves this package its group id is a known group, its date is set and
// none of its subtasks are completed.
type Draft struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Date        string         `json:"date"`
	Time        string         `json:"time"`
	GroupID     string         `json:"groupId"`
	Subtasks    []DraftSubtask `json:"subtasks"`
}

type DraftSubtask struct {
	Title string `json:"title"`
}

type Client struct {
	endpoint string
	http     *http.Client
}

func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type parseRequest struct {
	Text     string        `json:"text"`
	Defaults parseDefaults `json:"defaults"`
}

type parseDefaults struct {
	Date    string `json:"date"`
	GroupID string `json:"groupId,omitempty"`
}

type parseResponse struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

// ParseTask submits free text with a reference date and returns the drafted
// task, or an error when the collaborator fails or returns a draft with no
// usable title.
func (c *Client) ParseTask(ctx context.Context, text, refDate string) (Draft, error) {
	body, err := json.Marshal(parseRequest{
		Text:     text,
		Defaults: parseDefaults{Date: refDate, GroupID: task.DefaultGroupID},
	})
	if err != nil {
		return Draft{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Draft{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Draft{}, fmt.Errorf("ai request failed: %v", err)
	}
	defer resp.Body.Close()

	var env parseResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return Draft{}, errors.New("ai returned an unreadable response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || !env.OK {
		if env.Error != "" {
			return Draft{}, fmt.Errorf("%s", env.Error)
		}
		return Draft{}, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var draft Draft
	if err := json.Unmarshal(env.Data, &draft); err != nil {
		return Draft{}, errors.New("ai returned an unreadable draft")
	}
	return normalize(draft, refDate)
}

// normalize applies the draft coercion rules. Drafts without a title are
// non-actionable.
func normalize(d Draft, refDate string) (Draft, error) {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return Draft{}, errors.New("ai draft has no title")
	}
	if !task.ValidDate(d.Date) {
		d.Date = refDate
	}
	if !task.ValidTime(d.Time) {
		d.Time = ""
	}
	d.GroupID = task.NormalizeGroupID(d.GroupID)

	kept := d.Subtasks[:0]
	for _, st := range d.Subtasks {
		st.Title = strings.TrimSpace(st.Title)
		if st.Title != "" {
			kept = append(kept, st)
		}
	}
	d.Subtasks = kept
	return d, nil
}
