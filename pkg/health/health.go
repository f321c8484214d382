// Package health provides liveness and readiness HTTP handlers.
package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/commercekit/fulfillment/pkg/httputil"
)

// CheckFunc probes a single dependency. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

// Handler aggregates named dependency checks behind liveness and readiness
// endpoints.
type Handler struct {
	service string
	timeout time.Duration

	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// NewHandler creates a health handler for the named service.
func NewHandler(service string) *Handler {
	return &Handler{
		service: service,
		timeout: 5 * time.Second,
		checks:  make(map[string]CheckFunc),
	}
}

// AddCheck registers a named readiness check.
func (h *Handler) AddCheck(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// Register mounts the health endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

type status struct {
	Service string            `json:"service"`
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// Liveness reports that the process is up. It never runs dependency checks.
func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, status{Service: h.service, Status: "ok"})
}

// Readiness runs all registered checks and reports 503 if any fail.
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.mu.RLock()
	checks := make(map[string]CheckFunc, len(h.checks))
	for name, check := range h.checks {
		checks[name] = check
	}
	h.mu.RUnlock()

	results := make(map[string]string, len(checks))
	healthy := true
	for name, check := range checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			healthy = false
		} else {
			results[name] = "ok"
		}
	}

	st := status{Service: h.service, Status: "ok", Checks: results}
	code := http.StatusOK
	if !healthy {
		st.Status = "degraded"
		code = http.StatusServiceUnavailable
	}

	httputil.WriteJSON(w, code, st)
}
