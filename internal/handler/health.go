package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// HealthChecker defines an interface for checking service health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	db    HealthChecker
	cache HealthChecker
	graph HealthChecker
}

// NewHealthHandler creates a new HealthHandler.
// Any checker may be nil when the dependency is not configured. The graph
// store is optional, so its failure is reported without failing readiness.
func NewHealthHandler(db, cache, graph HealthChecker) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, graph: graph}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz is a liveness probe with no dependency checks.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz pings every dependency concurrently and returns 503 if a required
// one is down.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var (
		mu      sync.Mutex
		checks  = make(map[string]string, 3)
		healthy = true
	)

	probe := func(name string, checker HealthChecker, required bool) func() error {
		return func() error {
			status := "not configured"
			if checker != nil {
				status = "ok"
				if err := checker.Ping(ctx); err != nil {
					status = "error: " + err.Error()
				}
			}

			mu.Lock()
			defer mu.Unlock()
			checks[name] = status
			if required && checker != nil && status != "ok" {
				healthy = false
			}
			return nil
		}
	}

	var g errgroup.Group
	g.Go(probe("postgres", h.db, true))
	g.Go(probe("redis", h.cache, true))
	g.Go(probe("neo4j", h.graph, false))
	_ = g.Wait()

	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	writeJSON(w, code, HealthResponse{Status: status, Checks: checks})
}
