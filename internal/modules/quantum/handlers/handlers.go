// Package handlers provides HTTP handlers for amplitude estimation
// simulation requests.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/quantrisk/internal/api"
	"github.com/aristath/quantrisk/internal/modules/quantum"
	"github.com/aristath/quantrisk/internal/modules/runs"
)

// Handler handles quantum simulation HTTP requests
type Handler struct {
	service   *quantum.Service
	archive   *runs.Repository
	retention time.Duration
	log       zerolog.Logger
}

// NewHandler creates a new quantum simulation handler. The archive is
// optional; completed runs are recorded only when a repository is set.
func NewHandler(service *quantum.Service, archive *runs.Repository, retention time.Duration, log zerolog.Logger) *Handler {
	return &Handler{
		service:   service,
		archive:   archive,
		retention: retention,
		log:       log.With().Str("handler", "quantum").Logger(),
	}
}

// HandleSimulate handles POST /api/simulate/quantum
func (h *Handler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	req := api.DefaultQuantumRequest()
	if err := api.Decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.ComputePFE(r.Context(), quantum.Params{
		Spec:         req.Spec(),
		Asset:        req.Asset(),
		NumQubits:    req.NumQubits,
		AEIterations: req.AEIterations,
		Alpha:        req.Alpha,
		Seed:         req.SeedValue(),
		Backend:      req.Backend,
	})
	if err != nil {
		h.log.Error().Err(err).Str("backend", req.Backend).Msg("Quantum backend evaluation failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	h.archiveRun(req, result)

	response := map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"engine":    "quantum",
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// archiveRun records the run for later replay. Archive failures are
// logged and never fail the request.
func (h *Handler) archiveRun(req api.QuantumRequest, result quantum.Result) {
	if h.archive == nil {
		return
	}

	record, err := runs.NewRecord(runs.KindQuantum, runs.Summary{
		PFE:              result.PFE,
		ExpectedExposure: result.ExpectedExposure,
		Alpha:            result.Alpha,
		RuntimeMS:        result.RuntimeMS,
	}, req, result, h.retention)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to encode run record")
		return
	}

	if err := h.archive.Save(record); err != nil {
		h.log.Warn().Err(err).Str("run_id", record.ID).Msg("Failed to archive run")
	}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
