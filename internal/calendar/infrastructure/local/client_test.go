package local

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	calendarApp "github.com/huynnh/calsync/internal/calendar/application"
	"github.com/huynnh/calsync/internal/calendar/infrastructure/backend"
	"github.com/huynnh/calsync/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	api := backend.NewClient(backend.Config{
		BaseURL:      server.URL + "/api",
		RateLimit:    1000,
		Burst:        1000,
		RetryBackoff: time.Millisecond,
	}, nil, observability.Discard())
	return NewClient(api)
}

func TestClient_List(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tasks/", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id": 1, "task_name": "Write report", "priority": "high", "start_time": "2024-06-03T09:00:00Z", "end_time": "2024-06-03T10:00:00Z", "status": "pending", "is_conflict": false},
			{"id": 2, "task_name": "Call bank", "description": null, "priority": "low", "status": "completed"}
		]`))
	})

	tasks, err := client.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "1", tasks[0].ID.String())
	assert.Equal(t, "Write report", tasks[0].TaskName)
	assert.Equal(t, "", tasks[1].Description)
}

func TestClient_FilteredLists(t *testing.T) {
	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(`[]`))
	})
	ctx := context.Background()

	_, err := client.Upcoming(ctx)
	require.NoError(t, err)
	_, err = client.Completed(ctx)
	require.NoError(t, err)
	_, err = client.Cancelled(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"/api/tasks/upcoming/", "/api/tasks/completed/", "/api/tasks/cancelled/"}, paths)
}

func TestClient_CreateSendsPayload(t *testing.T) {
	end := time.Date(2030, 1, 2, 10, 0, 0, 0, time.UTC)
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 31, "task_name": "Plan trip", "status": "pending"}`))
	})

	rec, err := client.Create(context.Background(), calendarApp.TaskPayload{
		TaskName: "Plan trip",
		Priority: "medium",
		EndTime:  &end,
		DueDate:  &end,
		Status:   "pending",
	})
	require.NoError(t, err)
	assert.Equal(t, "31", rec.ID.String())
	assert.Equal(t, "Plan trip", got["task_name"])
	assert.Equal(t, "2030-01-02T10:00:00Z", got["due_date"])
	assert.NotContains(t, got, "start_time")
}

func TestClient_ItemEndpoints(t *testing.T) {
	type call struct{ method, path string }
	var calls []call
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, call{r.Method, r.URL.Path})
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(`{"id": 5, "task_name": "x", "status": "completed"}`))
	})
	ctx := context.Background()

	_, err := client.Get(ctx, "5")
	require.NoError(t, err)
	_, err = client.Update(ctx, "5", calendarApp.TaskPayload{TaskName: "x", Status: "pending"})
	require.NoError(t, err)
	_, err = client.Complete(ctx, "5")
	require.NoError(t, err)
	_, err = client.Cancel(ctx, "5")
	require.NoError(t, err)
	require.NoError(t, client.Delete(ctx, "5"))

	assert.Equal(t, []call{
		{http.MethodGet, "/api/tasks/5/"},
		{http.MethodPut, "/api/tasks/5/"},
		{http.MethodPost, "/api/tasks/5/complete/"},
		{http.MethodPost, "/api/tasks/5/cancel/"},
		{http.MethodDelete, "/api/tasks/5/"},
	}, calls)
}

func TestClient_GetNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not found."}`))
	})

	_, err := client.Get(context.Background(), "404")
	assert.True(t, backend.IsNotFound(err))
}
