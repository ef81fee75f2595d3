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

	"github.com/aristath/quantrisk/internal/modules/classical"
	"github.com/aristath/quantrisk/internal/modules/runs"

	_ "modernc.org/sqlite"
)

func setupTestHandler(t *testing.T, archive *runs.Repository) *Handler {
	t.Helper()

	logger := zerolog.New(nil).Level(zerolog.Disabled)
	service := classical.NewService(logger)
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

func TestHandleSimulateDefaults(t *testing.T) {
	handler := setupTestHandler(t, nil)

	req := httptest.NewRequest("POST", "/api/simulate/classical", nil)
	w := httptest.NewRecorder()

	handler.HandleSimulate(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	assert.Contains(t, response, "data")
	assert.Contains(t, response, "metadata")

	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(10000), data["samples_used"])
	assert.Equal(t, 0.95, data["alpha"])
	assert.Equal(t, "antithetic", data["variance_reduction"])
	assert.Greater(t, data["pfe"].(float64), 0.0)

	metadata := response["metadata"].(map[string]interface{})
	assert.Equal(t, "classical", metadata["engine"])
}

func TestHandleSimulateScenario(t *testing.T) {
	handler := setupTestHandler(t, nil)

	body, _ := json.Marshal(map[string]interface{}{
		"w1":          0.5,
		"w2":          0.5,
		"strike":      100.0,
		"s0":          100.0,
		"mu":          0.05,
		"sigma":       0.2,
		"tau":         1.0,
		"num_samples": 1000,
		"alpha":       0.95,
		"seed":        42,
	})

	req := httptest.NewRequest("POST", "/api/simulate/classical", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.HandleSimulate(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	data := response["data"].(map[string]interface{})
	pfe := data["pfe"].(float64)
	ee := data["expected_exposure"].(float64)

	assert.Greater(t, pfe, 0.0)
	assert.Greater(t, ee, 0.0)
	assert.GreaterOrEqual(t, pfe, ee)
	assert.Equal(t, float64(1000), data["samples_used"])
	assert.Equal(t, float64(42), data["seed"])
}

func TestHandleSimulateRejectsInvalidParams(t *testing.T) {
	handler := setupTestHandler(t, nil)

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "weight out of range",
			body:    `{"w1": 1.5}`,
			wantErr: "w1 must be within [0, 1]",
		},
		{
			name:    "negative strike",
			body:    `{"strike": -10}`,
			wantErr: "strike must be positive",
		},
		{
			name:    "sample count too small",
			body:    `{"num_samples": 10}`,
			wantErr: "num_samples must be within",
		},
		{
			name:    "malformed JSON",
			body:    `{"w1": `,
			wantErr: "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/simulate/classical", bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()

			handler.HandleSimulate(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantErr)
		})
	}
}

func TestHandleSimulateArchivesRun(t *testing.T) {
	archive := setupTestArchive(t)
	handler := setupTestHandler(t, archive)

	body := []byte(`{"num_samples": 1000, "seed": 7}`)
	req := httptest.NewRequest("POST", "/api/simulate/classical", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.HandleSimulate(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	records, err := archive.List(runs.DefaultListLimit)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, runs.KindClassical, records[0].Kind)
	assert.Greater(t, records[0].PFE, 0.0)

	stored, err := archive.Get(records[0].ID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	request, err := stored.DecodeRequest()
	require.NoError(t, err)
	assert.EqualValues(t, 1000, request["num_samples"])
}
