// Package server provides the HTTP server and routing for QuantRisk.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/quantrisk/internal/version"
)

// handleHealth handles liveness check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": version.Version,
		"service": "quantrisk",
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleAPIHealth handles readiness check requests, including an
// integrity check of the runs database.
func (s *Server) handleAPIHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	databaseStatus := "ok"

	if err := s.db.HealthCheck(r.Context()); err != nil {
		s.log.Error().Err(err).Msg("Database health check failed")
		status = "degraded"
		code = http.StatusServiceUnavailable
		databaseStatus = err.Error()
	}

	response := map[string]interface{}{
		"status":  status,
		"version": version.Version,
		"checks": map[string]interface{}{
			"database": databaseStatus,
		},
		"timestamp": time.Now().Format(time.RFC3339),
	}

	s.writeJSON(w, code, response)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
