package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/quantrisk/internal/modules/benchmark"
	"github.com/aristath/quantrisk/internal/modules/runs"

	_ "modernc.org/sqlite"
)

func setupTestHandler(t *testing.T, archive *runs.Repository) *Handler {
	t.Helper()

	logger := zerolog.New(nil).Level(zerolog.Disabled)
	service := benchmark.NewService(logger)
	return NewHandler(service, archive, 24*time.Hour, logger)
}

func setupTestArchive(t *testing.T) *runs.Repository {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, runs.InitSchema(db))

	return runs.NewRepository(db)
}

func TestHandleConvergence(t *testing.T) {
	handler := setupTestHandler(t, nil)

	body, _ := json.Marshal(map[string]interface{}{
		"sample_sizes":      []int{200, 400, 800},
		"reference_samples": 20000,
		"seed":              42,
	})

	req := httptest.NewRequest("POST", "/api/benchmark/convergence", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.HandleConvergence(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	assert.Contains(t, response, "data")
	data := response["data"].(map[string]interface{})

	assert.Greater(t, data["reference_pfe"].(float64), 0.0)
	assert.Equal(t, float64(20000), data["reference_samples"])
	assert.Len(t, data["sample_sizes"].([]interface{}), 3)
	assert.Len(t, data["pfe_values"].([]interface{}), 3)
	assert.Len(t, data["errors"].([]interface{}), 3)

	metadata := response["metadata"].(map[string]interface{})
	assert.Equal(t, "benchmark", metadata["engine"])
}

func TestHandleConvergenceDefaults(t *testing.T) {
	handler := setupTestHandler(t, nil)

	req := httptest.NewRequest("POST", "/api/benchmark/convergence", nil)
	w := httptest.NewRecorder()

	handler.HandleConvergence(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(1000000), data["reference_samples"])
	assert.Len(t, data["sample_sizes"].([]interface{}), len(benchmark.DefaultSampleSizes))
}

func TestHandleConvergenceRejectsInvalidParams(t *testing.T) {
	handler := setupTestHandler(t, nil)

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "sample size too small",
			body:    `{"sample_sizes": [50]}`,
			wantErr: "sample_sizes entries must be within",
		},
		{
			name:    "reference too small",
			body:    `{"reference_samples": 10}`,
			wantErr: "reference_samples must be within",
		},
		{
			name:    "invalid model",
			body:    `{"tau": -1}`,
			wantErr: "tau must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/benchmark/convergence", bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()

			handler.HandleConvergence(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantErr)
		})
	}
}

func TestHandleConvergenceArchivesRun(t *testing.T) {
	archive := setupTestArchive(t)
	handler := setupTestHandler(t, archive)

	body := []byte(`{"sample_sizes": [200], "reference_samples": 10000}`)
	req := httptest.NewRequest("POST", "/api/benchmark/convergence", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.HandleConvergence(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	records, err := archive.List(runs.DefaultListLimit)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, runs.KindBenchmark, records[0].Kind)
	assert.Greater(t, records[0].PFE, 0.0)

	stored, err := archive.Get(records[0].ID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	result, err := stored.DecodeResult()
	require.NoError(t, err)
	assert.Contains(t, result, "reference_pfe")
}
