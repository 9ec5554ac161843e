package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type captured struct {
	method string
	path   string
	query  string
	auth   string
	body   []byte
}

func newTestClient(t *testing.T, status int, response string, got *captured) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.query = r.URL.RawQuery
		got.auth = r.Header.Get("Authorization")
		got.body, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
		w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "secret-token")
}

func TestListDay(t *testing.T) {
	var got captured
	c := newTestClient(t, http.StatusOK,
		`{"ok":true,"data":[{"id":7,"title":"Run","date":"2024-03-05","groupId":"health","completed":false}]}`, &got)

	list, err := c.ListDay(context.Background(), "2024-03-05")
	if err != nil {
		t.Fatalf("ListDay: %v", err)
	}
	if got.method != http.MethodGet || got.path != "/todos" || got.query != "date=2024-03-05" {
		t.Errorf("request = %s %s?%s", got.method, got.path, got.query)
	}
	if got.auth != "Bearer secret-token" {
		t.Errorf("auth header = %q", got.auth)
	}
	if len(list) != 1 || list[0].ID != 7 || list[0].Title != "Run" {
		t.Errorf("list = %+v", list)
	}
}

func TestCreateTaskSendsPayload(t *testing.T) {
	var got captured
	c := newTestClient(t, http.StatusOK,
		`{"ok":true,"data":{"id":12,"title":"Plan","date":"2024-03-05","groupId":"work","completed":false}}`, &got)

	created, err := c.CreateTask(context.Background(), CreateTask{
		Title:    "Plan",
		Date:     "2024-03-05",
		Time:     "09:00",
		GroupID:  "work",
		Subtasks: []CreateSubtask{{Title: "outline"}},
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if created.ID != 12 {
		t.Errorf("created id = %d", created.ID)
	}
	var sent map[string]any
	if err := json.Unmarshal(got.body, &sent); err != nil {
		t.Fatalf("request body: %v", err)
	}
	if sent["title"] != "Plan" || sent["time"] != "09:00" || sent["groupId"] != "work" {
		t.Errorf("body = %s", got.body)
	}
	if _, ok := sent["description"]; ok {
		t.Error("empty description should be omitted")
	}
}

func TestUpdateTaskOmitsUnsetFields(t *testing.T) {
	var got captured
	c := newTestClient(t, http.StatusOK, `{"ok":true}`, &got)

	title := "New title"
	if err := c.UpdateTask(context.Background(), UpdateTask{ID: "4", Title: &title}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if got.method != http.MethodPut || got.path != "/todos" {
		t.Errorf("request = %s %s", got.method, got.path)
	}
	var sent map[string]any
	json.Unmarshal(got.body, &sent)
	if sent["id"] != "4" || sent["title"] != "New title" {
		t.Errorf("body = %s", got.body)
	}
	for _, absent := range []string{"description", "time", "groupId"} {
		if _, ok := sent[absent]; ok {
			t.Errorf("unset field %q was sent", absent)
		}
	}
}

func TestDeleteTaskUsesQueryParam(t *testing.T) {
	var got captured
	c := newTestClient(t, http.StatusOK, `{"ok":true}`, &got)

	if err := c.DeleteTask(context.Background(), "42"); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if got.method != http.MethodDelete || got.query != "id=42" {
		t.Errorf("request = %s %s?%s", got.method, got.path, got.query)
	}
	if len(got.body) != 0 {
		t.Errorf("delete sent a body: %s", got.body)
	}
}

func TestDeleteSubtaskSendsBody(t *testing.T) {
	var got captured
	c := newTestClient(t, http.StatusOK, `{"ok":true}`, &got)

	if err := c.DeleteSubtask(context.Background(), "9"); err != nil {
		t.Fatalf("DeleteSubtask: %v", err)
	}
	if got.method != http.MethodDelete || got.path != "/subtasks" {
		t.Errorf("request = %s %s", got.method, got.path)
	}
	var sent map[string]string
	json.Unmarshal(got.body, &sent)
	if sent["id"] != "9" {
		t.Errorf("body = %s", got.body)
	}
}

func TestMonthSummary(t *testing.T) {
	var got captured
	c := newTestClient(t, http.StatusOK,
		`{"ok":true,"data":[{"date":"2024-03-05","hasTasks":true,"pending":2,"completed":1}]}`, &got)

	days, err := c.MonthSummary(context.Background(), "2024-03")
	if err != nil {
		t.Fatalf("MonthSummary: %v", err)
	}
	if got.path != "/calendar" || got.query != "month=2024-03" {
		t.Errorf("request = %s?%s", got.path, got.query)
	}
	if len(days) != 1 || days[0].Pending != 2 || !days[0].HasTasks {
		t.Errorf("days = %+v", days)
	}
}

func TestErrorNormalization(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		response string
		want     string
	}{
		{"server error message", http.StatusInternalServerError, `{"ok":false,"error":"db error"}`, "db error"},
		{"non-2xx without body", http.StatusBadGateway, ``, "HTTP 502"},
		{"unparsable body", http.StatusOK, `{not json`, "invalid response"},
		{"ok false without message", http.StatusOK, `{"ok":false}`, "request rejected"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got captured
			c := newTestClient(t, tc.status, tc.response, &got)
			err := c.ToggleTask(context.Background(), "1")
			if err == nil {
				t.Fatal("expected an error")
			}
			if msg := err.Error(); !strings.Contains(msg, tc.want) {
				t.Errorf("error = %q, want it to mention %q", msg, tc.want)
			}
		})
	}
}

func TestTransportFailure(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "token")
	if err := c.ToggleTask(context.Background(), "1"); err == nil {
		t.Fatal("expected a transport error")
	}
}
