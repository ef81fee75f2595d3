// Package handlers provides HTTP handlers for classical Monte Carlo
// simulation requests.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/quantrisk/internal/api"
	"github.com/aristath/quantrisk/internal/modules/classical"
	"github.com/aristath/quantrisk/internal/modules/runs"
)

// Handler handles classical simulation HTTP requests
type Handler struct {
	service   *classical.Service
	archive   *runs.Repository
	retention time.Duration
	log       zerolog.Logger
}

// NewHandler creates a new classical simulation handler. The archive is
// optional; completed runs are recorded only when a repository is set.
func NewHandler(service *classical.Service, archive *runs.Repository, retention time.Duration, log zerolog.Logger) *Handler {
	return &Handler{
		service:   service,
		archive:   archive,
		retention: retention,
		log:       log.With().Str("handler", "classical").Logger(),
	}
}

// HandleSimulate handles POST /api/simulate/classical
func (h *Handler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	req := api.DefaultClassicalRequest()
	if err := api.Decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := h.service.ComputePFE(classical.Params{
		Spec:       req.Spec(),
		Asset:      req.Asset(),
		NumSamples: req.NumSamples,
		Alpha:      req.Alpha,
		Seed:       req.SeedValue(),
	})

	h.archiveRun(req, result)

	response := map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"engine":    "classical",
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// archiveRun records the run for later replay. Archive failures are
// logged and never fail the request.
func (h *Handler) archiveRun(req api.ClassicalRequest, result classical.Result) {
	if h.archive == nil {
		return
	}

	record, err := runs.NewRecord(runs.KindClassical, runs.Summary{
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
