package api

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-cec/internal/cec"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)
	r.Use(s.sourceMiddleware)

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "no such route")
	})

	r.Get("/", s.handleIndex)
	r.Get("/ping", s.handlePing)
	r.Get("/health", s.handleHealth)

	r.Get("/devices", s.handleListDevices)
	r.Get("/scan", s.handleScan)
	r.Get("/buttons", s.handleListButtons)
	r.Get("/peers", s.handleListPeers)

	r.Get("/audit", s.handleListAudit)
	r.Get("/audit/sightings", s.handleListSightings)

	r.Get("/raw/{command}", s.handleRaw)
	r.Post("/sequence/{sequence}", s.handleSequence)
	r.Post("/standby", s.handleStandby)

	// Per-device routes. Static segments (power, activate, press) take
	// priority over {name}.
	r.Route("/{device}", func(r chi.Router) {
		r.Get("/", s.handleGetDevice)
		r.Get("/power", s.handlePower)
		r.Post("/activate", s.handleActivate)
		r.Post("/press/{buttons}", s.handleBatchPress)
		r.Get("/{name}", s.handleGetAttribute)
		r.Post("/{name}/press", s.handlePress)
	})

	return r
}

// handleIndex identifies the service.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"this":    []string{"is", "the", "cec", "http", "client"},
		"version": s.version,
	})
}

// handlePing answers liveness probes without touching the bus.
func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"pong": true})
}

// handleHealth reports adapter state and the health of optional components.
// The response is 503 when the adapter is not open or a component fails.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.guard.Controller().Status()

	status := "healthy"
	components := make(map[string]string, len(s.components))
	for name, c := range s.components {
		if err := c.HealthCheck(r.Context()); err != nil {
			components[name] = err.Error()
			status = "degraded"
			continue
		}
		components[name] = "ok"
	}
	if !st.Connected {
		status = "degraded"
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":         status,
		"version":        s.version,
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
		"adapter":        st,
		"components":     components,
	})
}

// pathParam returns a URL parameter with percent-escapes removed. chi
// matches against the raw path when one is present, so sequences and
// frames may still be escaped.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

// deviceParam parses the {device} path segment as a logical address.
func deviceParam(r *http.Request) (cec.LogicalAddress, error) {
	return cec.ParseLogicalAddress(pathParam(r, "device"))
}

// optionalLogical parses an optional logical address query parameter.
func optionalLogical(r *http.Request, key string) (*cec.LogicalAddress, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil //nolint:nilnil // Absent parameter
	}
	la, err := cec.ParseLogicalAddress(v)
	if err != nil {
		return nil, err
	}
	return &la, nil
}
