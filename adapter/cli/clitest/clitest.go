// Package clitest runs CLI commands against a fake backend.
package clitest

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/huynnh/calsync/adapter/cli"
	internalApp "github.com/huynnh/calsync/internal/app"
	identityDomain "github.com/huynnh/calsync/internal/identity/domain"
	"github.com/huynnh/calsync/pkg/config"
	"github.com/huynnh/calsync/pkg/observability"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// Default response bodies. Keys are "METHOD /path" or "/path", relative to /api.
var defaultRoutes = map[string]string{
	"/auth/login/":        `{"token": "tok-1", "user": {"id": 5, "email": "lan@example.com", "firstName": "Lan", "lastName": "Tran"}}`,
	"/auth/register/":     `{"token": "tok-2", "user": {"id": 6, "email": "new@example.com"}}`,
	"/auth/verify-token/": `{"user": {"id": 5, "email": "lan@example.com", "firstName": "Lan", "lastName": "Tran"}}`,
	"GET /tasks/":         `[{"id": 1, "task_name": "Write report", "priority": "high", "start_time": "2030-01-01T09:00:00Z", "end_time": "2030-01-01T10:00:00Z", "status": "pending"}]`,
	"POST /tasks/":        `{"id": 42, "task_name": "Created", "priority": "medium", "start_time": "2030-01-01T13:00:00Z", "end_time": "2030-01-01T14:00:00Z", "status": "pending"}`,
	"GET /events/api/":    `[{"id": 3, "title": "Team lunch", "start_time": "2030-01-01T12:00:00Z", "end_time": "2030-01-01T13:00:00Z", "location": "Canteen"}]`,
	"POST /events/api/":   `{"id": 43, "title": "Created event", "start_time": "2030-01-02T12:00:00Z", "end_time": "2030-01-02T13:00:00Z"}`,
	"/calendarsync/google/connection/": `{"connected": true}`,
	"/calendarsync/google/sync/": `{
		"events": [{"id": 4, "external_id": "g-4", "summary": "Standup", "start": {"dateTime": "2030-01-01T09:00:00+00:00"}, "end": {"dateTime": "2030-01-01T09:15:00+00:00"}}],
		"tasks": [{"id": 9, "title": "Pay rent", "due_date": "2030-01-02T00:00:00+00:00", "status": "needsAction"}]
	}`,
	"/calendarsync/outlook/check/": `{"connected": false}`,
	"/calendarsync/outlook/start/": `{"status": "needs_auth", "auth_url": "https://login.example.com/authorize"}`,
	"GET /notifications/":          `[{"notification_id": 7, "title": "Write report", "message": "Starts in 15 minutes", "priority": "high", "status": "success"}]`,
}

// Backend is a fake backend API that records every call.
type Backend struct {
	Server *httptest.Server

	mu     sync.Mutex
	calls  []string
	routes map[string]http.HandlerFunc
}

// NewBackend starts a fake backend with the default routes.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{routes: make(map[string]http.HandlerFunc)}
	for key, body := range defaultRoutes {
		b.On(key, body)
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

// On replaces the response body of a route.
func (b *Backend) On(key, body string) {
	b.OnFunc(key, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	})
}

// OnFunc replaces the handler of a route.
func (b *Backend) OnFunc(key string, fn http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[key] = fn
}

// Calls returns the recorded "METHOD /path" calls, relative to /api.
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// Called reports whether call was recorded.
func (b *Backend) Called(call string) bool {
	for _, c := range b.Calls() {
		if c == call {
			return true
		}
	}
	return false
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api")
	b.mu.Lock()
	b.calls = append(b.calls, r.Method+" "+path)
	fn, ok := b.routes[r.Method+" "+path]
	if !ok {
		fn, ok = b.routes[path]
	}
	b.mu.Unlock()
	if !ok {
		_, _ = w.Write([]byte(`{"message": "ok"}`))
		return
	}
	fn(w, r)
}

// NewApp builds a container against b and installs it as the CLI app.
func NewApp(t *testing.T, b *Backend) (*cli.App, *internalApp.Container) {
	t.Helper()
	cfg := &config.Config{
		AppEnv:                   "test",
		APIBaseURL:               b.Server.URL + "/api",
		HTTPTimeout:              5 * time.Second,
		HTTPRateLimit:            1000,
		HTTPBurst:                1000,
		BreakerFailures:          5,
		BreakerTimeout:           time.Second,
		SessionDBPath:            filepath.Join(t.TempDir(), "session.db"),
		SyncInterval:             time.Hour,
		NotificationPollInterval: time.Hour,
		WeekStart:                time.Sunday,
		Location:                 time.UTC,
		SnapshotTTL:              time.Hour,
		OfflineFallback:          true,
	}
	c, err := internalApp.NewContainer(context.Background(), cfg, observability.Discard())
	require.NoError(t, err)
	t.Cleanup(c.Close)

	a := cli.NewAppFromContainer(c)
	cli.SetApp(a)
	t.Cleanup(func() { cli.SetApp(nil) })
	return a, c
}

// SignIn logs in and restores the provider connections.
func SignIn(t *testing.T, c *internalApp.Container) {
	t.Helper()
	ctx := context.Background()
	_, err := c.Session.Login(ctx, identityDomain.Credentials{Email: "lan@example.com", Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, c.Bootstrap(ctx))
}

// Run executes cmd with args and returns everything it printed.
func Run(cmd *cobra.Command, args ...string) (string, error) {
	return RunWithInput(cmd, "", args...)
}

// RunWithInput executes cmd with args and stdin.
func RunWithInput(cmd *cobra.Command, stdin string, args ...string) (string, error) {
	resetFlags(cmd)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// resetFlags restores every flag of the tree to its default, since flag
// values live in package variables across runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
