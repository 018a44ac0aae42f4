package httpx

import (
	"context"
	"io"
	"net/http"
)

const healthResponse = `{"status":"ok"}`

// Pinger reports backend connectivity. Implemented by the request repository
// and the coordination cache.
type Pinger interface {
	Health(ctx context.Context) error
}

// HealthHandlers serves liveness and readiness probes.
type HealthHandlers struct {
	// DB and Cache are optional; readiness only checks what is wired.
	DB    Pinger
	Cache Pinger
}

// healthHandler returns a simple 200 OK status for liveness checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}

// Ready reports whether the wired backends answer.
func (h *HealthHandlers) Ready(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	healthy := true

	if h.DB != nil {
		if err := h.DB.Health(r.Context()); err != nil {
			checks["database"] = err.Error()
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}
	if h.Cache != nil {
		if err := h.Cache.Health(r.Context()); err != nil {
			checks["cache"] = err.Error()
			healthy = false
		} else {
			checks["cache"] = "ok"
		}
	}

	status := http.StatusOK
	state := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}
	WriteJSON(w, status, map[string]any{"status": state, "checks": checks})
}
