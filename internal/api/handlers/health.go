package handlers

import (
	"context"
	"net/http"
	"time"
)

const healthCheckTimeout = 5 * time.Second

// HealthChecker reports backend reachability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves GET /api/v1/health: per-provider and database
// reachability. Always responds 200; degraded dependencies are reported in
// the body so probes can distinguish "up" from "fully healthy".
type HealthHandler struct {
	providers map[string]HealthChecker
	db        Pinger
}

// NewHealthHandler creates a HealthHandler. db may be nil when no relational
// store is configured.
func NewHealthHandler(providers map[string]HealthChecker, db Pinger) *HealthHandler {
	return &HealthHandler{providers: providers, db: db}
}

// Health runs all checks with one bounded deadline.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := "ok"
	providers := make(map[string]string, len(h.providers))
	for key, p := range h.providers {
		if err := p.HealthCheck(ctx); err != nil {
			providers[key] = "unreachable"
			status = "degraded"
		} else {
			providers[key] = "ok"
		}
	}

	database := "not configured"
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			database = "unreachable"
			status = "degraded"
		} else {
			database = "ok"
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    status,
		"providers": providers,
		"database":  database,
	})
}
