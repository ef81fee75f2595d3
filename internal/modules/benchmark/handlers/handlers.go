// Package handlers provides HTTP handlers for convergence benchmark
// requests.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/quantrisk/internal/api"
	"github.com/aristath/quantrisk/internal/modules/benchmark"
	"github.com/aristath/quantrisk/internal/modules/runs"
)

// Handler handles convergence benchmark HTTP requests
type Handler struct {
	service   *benchmark.Service
	archive   *runs.Repository
	retention time.Duration
	log       zerolog.Logger
}

// NewHandler creates a new benchmark handler. The archive is optional;
// completed runs are recorded only when a repository is set.
func NewHandler(service *benchmark.Service, archive *runs.Repository, retention time.Duration, log zerolog.Logger) *Handler {
	return &Handler{
		service:   service,
		archive:   archive,
		retention: retention,
		log:       log.With().Str("handler", "benchmark").Logger(),
	}
}

// HandleConvergence handles POST /api/benchmark/convergence
func (h *Handler) HandleConvergence(w http.ResponseWriter, r *http.Request) {
	req := api.DefaultBenchmarkRequest()
	if err := api.Decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := h.service.Run(benchmark.Params{
		Spec:             req.Spec(),
		Asset:            req.Asset(),
		Alpha:            req.Alpha,
		SampleSizes:      req.SampleSizes,
		ReferenceSamples: req.ReferenceSamples,
		Seed:             req.SeedValue(),
	})

	h.archiveRun(req, result)

	response := map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"engine":    "benchmark",
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// archiveRun records the run for later replay, with the reference PFE
// as the headline figure. Archive failures are logged and never fail
// the request.
func (h *Handler) archiveRun(req api.BenchmarkRequest, result benchmark.Result) {
	if h.archive == nil {
		return
	}

	record, err := runs.NewRecord(runs.KindBenchmark, runs.Summary{
		PFE:       result.ReferencePFE,
		Alpha:     req.Alpha,
		RuntimeMS: result.TotalRuntimeMS,
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
