package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"chronos/internal/task"
)

func newTestDrafter(t *testing.T, status int, response string) (*Client, *[]byte) {
	t.Helper()
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
		w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL), &body
}

func TestParseTask(t *testing.T) {
	c, sent := newTestDrafter(t, http.StatusOK,
		`{"ok":true,"data":{"title":"  Buy milk  ","date":"2024-03-07","time":"10:00","groupId":"personal","subtasks":[{"title":" check fridge "},{"title":"   "}]}}`)

	draft, err := c.ParseTask(context.Background(), "milk tomorrow at 10", "2024-03-05")
	if err != nil {
		t.Fatalf("ParseTask: %v", err)
	}
	if draft.Title != "Buy milk" {
		t.Errorf("title = %q", draft.Title)
	}
	if draft.Date != "2024-03-07" || draft.Time != "10:00" {
		t.Errorf("draft = %+v", draft)
	}
	if len(draft.Subtasks) != 1 || draft.Subtasks[0].Title != "check fridge" {
		t.Errorf("subtasks = %+v, want the blank one dropped", draft.Subtasks)
	}

	var req map[string]any
	if err := json.Unmarshal(*sent, &req); err != nil {
		t.Fatalf("request body: %v", err)
	}
	if req["text"] != "milk tomorrow at 10" {
		t.Errorf("request = %s", *sent)
	}
	defaults, _ := req["defaults"].(map[string]any)
	if defaults["date"] != "2024-03-05" {
		t.Errorf("reference date not sent: %s", *sent)
	}
}

func TestParseTaskDefaultsAndCoercion(t *testing.T) {
	c, _ := newTestDrafter(t, http.StatusOK,
		`{"ok":true,"data":{"title":"Gym","date":"someday","time":"25:00","groupId":"fitness"}}`)

	draft, err := c.ParseTask(context.Background(), "gym", "2024-03-05")
	if err != nil {
		t.Fatalf("ParseTask: %v", err)
	}
	if draft.Date != "2024-03-05" {
		t.Errorf("invalid date should fall back to the reference date, got %q", draft.Date)
	}
	if draft.Time != "" {
		t.Errorf("invalid time should be dropped, got %q", draft.Time)
	}
	if draft.GroupID != task.DefaultGroupID {
		t.Errorf("unknown group should normalize to default, got %q", draft.GroupID)
	}
}

func TestParseTaskNonActionable(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		response string
	}{
		{"missing title", http.StatusOK, `{"ok":true,"data":{"description":"no title here"}}`},
		{"blank title", http.StatusOK, `{"ok":true,"data":{"title":"   "}}`},
		{"malformed json", http.StatusOK, `{"ok":true,"data":`},
		{"collaborator error", http.StatusInternalServerError, `{"ok":false,"error":"model unavailable"}`},
		{"draft is not an object", http.StatusOK, `{"ok":true,"data":"just text"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestDrafter(t, tc.status, tc.response)
			if _, err := c.ParseTask(context.Background(), "anything", "2024-03-05"); err == nil {
				t.Fatal("expected a non-actionable draft error")
			}
		})
	}
}
