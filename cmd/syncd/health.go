package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/huynnh/calsync/internal/app"
	calendarDomain "github.com/huynnh/calsync/internal/calendar/domain"
	"github.com/huynnh/calsync/pkg/observability"
)

func newHealthMux(c *app.Container) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		health := c.Health.Check(checkCtx)
		status := http.StatusOK
		if health.Status == observability.HealthStatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		body := map[string]any{
			"status":    health.Status,
			"checks":    health.Checks,
			"providers": c.Orchestrator.Statuses(),
			"activity":  c.ActivitySubscriber.Recent(),
			"counters":  c.Metrics.Counters(),
		}
		if c.Scheduler != nil {
			workers := make(map[string]bool)
			for _, p := range calendarDomain.AllProviders() {
				workers[p.String()] = c.Scheduler.Running(p)
			}
			body["workers"] = workers
		}
		writeJSON(w, status, body)
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if health := c.Health.Check(checkCtx); health.Status == observability.HealthStatusUnhealthy {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "not_ready",
				"error":  "dependency unhealthy",
			})
			return
		}
		if !c.Session.Authenticated() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "not_ready",
				"error":  "not signed in",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
