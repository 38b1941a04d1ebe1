package task

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/huynnh/calsync/adapter/cli"
	"github.com/huynnh/calsync/adapter/cli/clitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskCommandsRequireSignIn(t *testing.T) {
	backend := clitest.NewBackend(t)
	clitest.NewApp(t, backend)

	_, err := clitest.Run(Cmd, "list")
	assert.ErrorIs(t, err, cli.ErrSignInRequired)
	assert.Empty(t, backend.Calls())
}

func TestTaskList(t *testing.T) {
	backend := clitest.NewBackend(t)
	_, c := clitest.NewApp(t, backend)
	clitest.SignIn(t, c)

	out, err := clitest.Run(Cmd, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Tasks (1):")
	assert.Contains(t, out, "[ ] Write report (!)")
	assert.Contains(t, out, "2030-01-01 09:00 - 10:00")
}

func TestTaskListVariants(t *testing.T) {
	backend := clitest.NewBackend(t)
	backend.On("GET /tasks/completed/", `[]`)
	_, c := clitest.NewApp(t, backend)
	clitest.SignIn(t, c)

	out, err := clitest.Run(Cmd, "completed")
	require.NoError(t, err)
	assert.Contains(t, out, "No completed tasks found.")
	assert.True(t, backend.Called("GET /tasks/completed/"))
}

func TestTaskCreate(t *testing.T) {
	backend := clitest.NewBackend(t)
	var body map[string]any
	backend.OnFunc("POST /tasks/", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"id": 42, "task_name": "Nộp báo cáo", "start_time": "2030-01-01T13:00:00Z", "end_time": "2030-01-01T14:00:00Z", "status": "pending"}`))
	})
	_, c := clitest.NewApp(t, backend)
	clitest.SignIn(t, c)

	out, err := clitest.Run(Cmd, "create", "Nộp báo cáo", "--start", "2030-01-01 13:00", "--end", "2030-01-01 14:00", "-p", "high")
	require.NoError(t, err)
	assert.Contains(t, out, "Created task: Nộp báo cáo")
	assert.Contains(t, out, "ID: 42")

	assert.Equal(t, "Nộp báo cáo", body["task_name"])
	assert.Equal(t, "high", body["priority"])
	assert.Equal(t, body["end_time"], body["due_date"])

	// The reminder is scheduled and the task goes to the connected provider.
	assert.True(t, backend.Called("GET /notifications/create/task/42/"))
	assert.True(t, backend.Called("POST /calendarsync/events/push/"))
}

func TestTaskCreateValidationSendsNothing(t *testing.T) {
	backend := clitest.NewBackend(t)
	_, c := clitest.NewApp(t, backend)
	clitest.SignIn(t, c)
	before := len(backend.Calls())

	_, err := clitest.Run(Cmd, "create", "Late", "--end", "2001-01-01 10:00")
	require.Error(t, err)
	assert.Len(t, backend.Calls(), before)
}

func TestTaskUpdateKeepsUnsetFields(t *testing.T) {
	backend := clitest.NewBackend(t)
	backend.On("GET /tasks/1/", `{"id": 1, "task_name": "Write report", "description": "Q4", "priority": "high", "start_time": "2030-01-01T09:00:00Z", "end_time": "2030-01-01T10:00:00Z", "status": "pending"}`)
	var body map[string]any
	backend.OnFunc("PUT /tasks/1/", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"id": 1, "task_name": "Write report", "start_time": "2030-01-01T09:00:00Z", "end_time": "2030-01-01T11:00:00Z", "status": "in_progress"}`))
	})
	_, c := clitest.NewApp(t, backend)
	clitest.SignIn(t, c)

	out, err := clitest.Run(Cmd, "update", "1", "--end", "2030-01-01 11:00", "--status", "in_progress")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated task: Write report")
	assert.Equal(t, "Write report", body["task_name"])
	assert.Equal(t, "Q4", body["description"])
	assert.Equal(t, "high", body["priority"])
	assert.Equal(t, "in_progress", body["status"])
}

func TestTaskCompleteCancelDelete(t *testing.T) {
	backend := clitest.NewBackend(t)
	backend.On("POST /tasks/1/complete/", `{"id": 1, "task_name": "Write report", "status": "completed"}`)
	backend.On("POST /tasks/2/cancel/", `{"id": 2, "task_name": "Old idea", "status": "cancelled"}`)
	_, c := clitest.NewApp(t, backend)
	clitest.SignIn(t, c)

	out, err := clitest.Run(Cmd, "complete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Completed task: Write report")

	out, err = clitest.Run(Cmd, "cancel", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled task: Old idea")

	out, err = clitest.Run(Cmd, "delete", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted task 3")
	assert.True(t, backend.Called("DELETE /tasks/3/"))
}

func TestTaskDeleteUnknownID(t *testing.T) {
	backend := clitest.NewBackend(t)
	backend.OnFunc("DELETE /tasks/99/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail": "Not found."}`))
	})
	_, c := clitest.NewApp(t, backend)
	clitest.SignIn(t, c)

	_, err := clitest.Run(Cmd, "delete", "99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task 99 not found")
}
