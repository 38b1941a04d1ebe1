package event

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/huynnh/calsync/adapter/cli/clitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventList(t *testing.T) {
	backend := clitest.NewBackend(t)
	_, c := clitest.NewApp(t, backend)
	clitest.SignIn(t, c)

	out, err := clitest.Run(Cmd, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Events (1):")
	assert.Contains(t, out, "Team lunch")
	assert.Contains(t, out, "Where: Canteen")
}

func TestEventCreate(t *testing.T) {
	backend := clitest.NewBackend(t)
	var body map[string]any
	backend.OnFunc("POST /events/api/", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"id": 43, "title": "Retro", "start_time": "2030-01-02T12:00:00Z", "end_time": "2030-01-02T13:00:00Z"}`))
	})
	_, c := clitest.NewApp(t, backend)
	clitest.SignIn(t, c)

	out, err := clitest.Run(Cmd, "create", "Retro", "--start", "2030-01-02 12:00", "--end", "2030-01-02 13:00")
	require.NoError(t, err)
	assert.Contains(t, out, "Created event: Retro")
	assert.Contains(t, out, "ID: 43")

	assert.Equal(t, "Retro", body["title"])
	start, ok := body["start"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2030-01-02T12:00:00Z", start["dateTime"])
	assert.Equal(t, "UTC", start["timeZone"])
	assert.True(t, backend.Called("GET /notifications/create/event/43/"))
}

func TestEventCreateRejectsEndBeforeStart(t *testing.T) {
	backend := clitest.NewBackend(t)
	_, c := clitest.NewApp(t, backend)
	clitest.SignIn(t, c)

	_, err := clitest.Run(Cmd, "create", "Backwards", "--start", "2030-01-02 13:00", "--end", "2030-01-02 12:00")
	require.Error(t, err)
	assert.Equal(t, "End time must be after start time", err.Error())
	assert.False(t, backend.Called("POST /events/api/"))
}

func TestEventUpdateAndDelete(t *testing.T) {
	backend := clitest.NewBackend(t)
	backend.On("GET /events/api/3/", `{"id": 3, "title": "Team lunch", "start_time": "2030-01-01T12:00:00Z", "end_time": "2030-01-01T13:00:00Z", "location": "Canteen"}`)
	var body map[string]any
	backend.OnFunc("PUT /events/api/3/", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"id": 3, "title": "Team lunch", "start_time": "2030-01-01T12:00:00Z", "end_time": "2030-01-01T13:00:00Z", "location": "Rooftop"}`))
	})
	_, c := clitest.NewApp(t, backend)
	clitest.SignIn(t, c)

	out, err := clitest.Run(Cmd, "update", "3", "-l", "Rooftop")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated event: Team lunch")
	assert.Equal(t, "Team lunch", body["title"])
	assert.Equal(t, "Rooftop", body["location"])

	out, err = clitest.Run(Cmd, "delete", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted event 3")
	assert.True(t, backend.Called("DELETE /events/api/3/"))
}
