package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/quantrisk/internal/modules/runs"

	_ "modernc.org/sqlite"
)

func setupTestRouter(t *testing.T) (*chi.Mux, *runs.Repository) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, runs.InitSchema(db))

	repo := runs.NewRepository(db)
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	handler := NewHandler(repo, logger)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	return router, repo
}

func seedRecord(t *testing.T, repo *runs.Repository, createdAt time.Time) runs.Record {
	t.Helper()

	record, err := runs.NewRecord(runs.KindClassical, runs.Summary{
		PFE:              28.21,
		ExpectedExposure: 9.5,
		Alpha:            0.95,
		RuntimeMS:        3.2,
	}, map[string]any{"num_samples": 1000}, map[string]any{"pfe": 28.21}, 24*time.Hour)
	require.NoError(t, err)

	record.CreatedAt = createdAt
	record.ExpiresAt = createdAt.Add(24 * time.Hour)
	require.NoError(t, repo.Save(record))

	return record
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Contains(t, response, "data")

	return response["data"].(map[string]interface{})
}

func TestHandleList(t *testing.T) {
	router, repo := setupTestRouter(t)

	base := time.Now().UTC().Truncate(time.Second)
	older := seedRecord(t, repo, base.Add(-time.Minute))
	newer := seedRecord(t, repo, base)

	req := httptest.NewRequest("GET", "/runs", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeEnvelope(t, w)
	assert.Equal(t, float64(2), data["count"])

	records := data["runs"].([]interface{})
	require.Len(t, records, 2)

	first := records[0].(map[string]interface{})
	second := records[1].(map[string]interface{})
	assert.Equal(t, newer.ID, first["id"])
	assert.Equal(t, older.ID, second["id"])

	// Payload blobs are omitted from listings.
	assert.NotContains(t, first, "request")
	assert.NotContains(t, first, "result")
}

func TestHandleListLimit(t *testing.T) {
	router, repo := setupTestRouter(t)

	base := time.Now().UTC().Truncate(time.Second)
	seedRecord(t, repo, base.Add(-time.Minute))
	seedRecord(t, repo, base)

	req := httptest.NewRequest("GET", "/runs?limit=1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeEnvelope(t, w)
	assert.Equal(t, float64(1), data["count"])
}

func TestHandleListRejectsBadLimit(t *testing.T) {
	router, _ := setupTestRouter(t)

	for _, limit := range []string{"0", "-5", "abc"} {
		req := httptest.NewRequest("GET", "/runs?limit="+limit, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "limit must be a positive integer")
	}
}

func TestHandleGet(t *testing.T) {
	router, repo := setupTestRouter(t)

	record := seedRecord(t, repo, time.Now().UTC().Truncate(time.Second))

	req := httptest.NewRequest("GET", "/runs/"+record.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeEnvelope(t, w)

	run := data["run"].(map[string]interface{})
	assert.Equal(t, record.ID, run["id"])
	assert.Equal(t, "classical", run["kind"])

	request := data["request"].(map[string]interface{})
	assert.EqualValues(t, 1000, request["num_samples"])

	result := data["result"].(map[string]interface{})
	assert.InDelta(t, 28.21, result["pfe"].(float64), 1e-9)
}

func TestHandleGetMissing(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/runs/does-not-exist", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "run not found")
}

func TestHandleDelete(t *testing.T) {
	router, repo := setupTestRouter(t)

	record := seedRecord(t, repo, time.Now().UTC().Truncate(time.Second))

	req := httptest.NewRequest("DELETE", "/runs/"+record.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeEnvelope(t, w)
	assert.Equal(t, true, data["deleted"])
	assert.Equal(t, record.ID, data["id"])

	// Deleting again reports not found.
	req = httptest.NewRequest("DELETE", "/runs/"+record.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
