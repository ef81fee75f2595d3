// Package handlers provides HTTP handlers for side-by-side estimator
// comparison requests.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/quantrisk/internal/api"
	"github.com/aristath/quantrisk/internal/modules/analysis"
	"github.com/aristath/quantrisk/internal/modules/runs"
)

// Handler handles comparison HTTP requests
type Handler struct {
	service   *analysis.Service
	archive   *runs.Repository
	retention time.Duration
	log       zerolog.Logger
}

// NewHandler creates a new comparison handler. The archive is optional;
// completed runs are recorded only when a repository is set.
func NewHandler(service *analysis.Service, archive *runs.Repository, retention time.Duration, log zerolog.Logger) *Handler {
	return &Handler{
		service:   service,
		archive:   archive,
		retention: retention,
		log:       log.With().Str("handler", "analysis").Logger(),
	}
}

// HandleCompare handles POST /api/simulate/compare
func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	req := api.DefaultCompareRequest()
	if err := api.Decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Compare(r.Context(), analysis.Params{
		Spec:         req.Spec(),
		Asset:        req.Asset(),
		Alpha:        req.Alpha,
		Seed:         req.SeedValue(),
		NumSamples:   req.NumSamples,
		NumQubits:    req.NumQubits,
		AEIterations: req.AEIterations,
		Backend:      req.Backend,
	})
	if err != nil {
		h.log.Error().Err(err).Str("backend", req.Backend).Msg("Comparison failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	h.archiveRun(req, result)

	response := map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"engine":    "compare",
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// archiveRun records the run for later replay, with the classical
// estimate as the headline figure. Archive failures are logged and
// never fail the request.
func (h *Handler) archiveRun(req api.CompareRequest, result analysis.Result) {
	if h.archive == nil {
		return
	}

	record, err := runs.NewRecord(runs.KindCompare, runs.Summary{
		PFE:              result.Classical.PFE,
		ExpectedExposure: result.Classical.ExpectedExposure,
		Alpha:            result.Classical.Alpha,
		RuntimeMS:        result.TotalRuntimeMS,
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
