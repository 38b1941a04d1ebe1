package mcp

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/huynnh/calsync/adapter/cli"
	"github.com/huynnh/calsync/adapter/cli/clitest"
	calendarDomain "github.com/huynnh/calsync/internal/calendar/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer() *mcp.Server {
	return mcp.NewServer(mcp.ServerInfo{
		Name:    "test",
		Version: "1.0.0",
		Capabilities: mcp.Capabilities{
			Tools:     true,
			Resources: true,
		},
	})
}

func TestRegisterCLITools_ListTools(t *testing.T) {
	srv := newServer()
	require.NoError(t, RegisterCLITools(srv, ToolDependencies{App: &cli.App{}}))
	require.NoError(t, RegisterResources(srv, ToolDependencies{App: &cli.App{}}))

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()

	tools, err := tc.ListTools()
	require.NoError(t, err)

	names := make(map[any]bool)
	for _, tool := range tools {
		names[tool["name"]] = true
	}
	for _, name := range []string{"calendar.day", "calendar.week", "calendar.month", "provider.status", "provider.sync", "task.create", "task.list"} {
		assert.True(t, names[name], "%s tool should be registered", name)
	}
}

func TestRegisterCLITools_RequiresApp(t *testing.T) {
	assert.Error(t, RegisterCLITools(newServer(), ToolDependencies{}))
	assert.Error(t, RegisterCLITools(nil, ToolDependencies{App: &cli.App{}}))
}

func TestDayViewMergesSources(t *testing.T) {
	backend := clitest.NewBackend(t)
	app, c := clitest.NewApp(t, backend)
	clitest.SignIn(t, c)

	bucket, err := dayView(context.Background(), app, calendarViewInput{Date: "2030-01-01"})
	require.NoError(t, err)
	assert.Equal(t, 3, bucket.Total)

	sources := make(map[calendarDomain.Source]int)
	for _, group := range bucket.Groups {
		sources[group.Source] = group.Total
	}
	assert.Equal(t, 1, sources[calendarDomain.SourceLocal])
	assert.Equal(t, 1, sources[calendarDomain.SourceGoogleEvent])
}

func TestDayViewRequiresSession(t *testing.T) {
	backend := clitest.NewBackend(t)
	app, _ := clitest.NewApp(t, backend)

	_, err := dayView(context.Background(), app, calendarViewInput{})
	assert.ErrorIs(t, err, cli.ErrSignInRequired)
}

func TestDayViewRejectsBadDate(t *testing.T) {
	backend := clitest.NewBackend(t)
	app, c := clitest.NewApp(t, backend)
	clitest.SignIn(t, c)

	_, err := dayView(context.Background(), app, calendarViewInput{Date: "01/02/2030"})
	assert.ErrorContains(t, err, "invalid date")
}

func TestWeekViewHasSevenDays(t *testing.T) {
	backend := clitest.NewBackend(t)
	app, c := clitest.NewApp(t, backend)
	clitest.SignIn(t, c)

	view, err := weekView(context.Background(), app, calendarViewInput{Date: "2030-01-01"})
	require.NoError(t, err)
	assert.Len(t, view.Buckets, 7)
}

func TestProviderSyncDefaultsToConnected(t *testing.T) {
	backend := clitest.NewBackend(t)
	app, c := clitest.NewApp(t, backend)
	clitest.SignIn(t, c)

	result, err := providerSync(context.Background(), app, providerSyncInput{})
	require.NoError(t, err)
	assert.Equal(t, "google", result.Provider)
	assert.Equal(t, 2, result.Items)
	assert.NotEmpty(t, result.Steps)

	_, err = providerSync(context.Background(), app, providerSyncInput{Provider: "yahoo"})
	assert.ErrorContains(t, err, "unknown provider")
}

func TestProviderStatus(t *testing.T) {
	backend := clitest.NewBackend(t)
	app, c := clitest.NewApp(t, backend)
	clitest.SignIn(t, c)

	statuses, err := providerStatus(context.Background(), app)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.True(t, statuses[0].Connected)
	assert.False(t, statuses[1].Connected)
}

func TestCreateTask(t *testing.T) {
	backend := clitest.NewBackend(t)
	app, c := clitest.NewApp(t, backend)
	clitest.SignIn(t, c)

	item, err := createTask(context.Background(), app, taskCreateInput{
		Name:     "Write report",
		Priority: "high",
		Start:    "2030-01-01 09:00",
		End:      "2030-01-01 10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "42", item.NativeID)
	assert.True(t, backend.Called("POST /tasks/"))
}

func TestListTasksFilter(t *testing.T) {
	backend := clitest.NewBackend(t)
	backend.On("GET /tasks/completed/", `[]`)
	app, c := clitest.NewApp(t, backend)
	clitest.SignIn(t, c)

	items, err := listTasks(context.Background(), app, taskListInput{})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, err = listTasks(context.Background(), app, taskListInput{Filter: "completed"})
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = listTasks(context.Background(), app, taskListInput{Filter: "later"})
	assert.Error(t, err)
}
