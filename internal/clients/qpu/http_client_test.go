package qpu

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

func TestSubmitJob(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/jobs", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var spec JobSpec
		require.NoError(t, json.NewDecoder(r.Body).Decode(&spec))
		assert.Equal(t, 8192, spec.Shots)
		assert.InDelta(t, 0.25, spec.Threshold, 1e-12)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"job_id": "job-123"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "test-key", testLogger())
	id, err := client.SubmitJob(context.Background(), JobSpec{
		Probabilities: []float64{0.5, 0.5},
		Values:        []float64{0.0, 1.0},
		Threshold:     0.25,
		Shots:         8192,
		Seed:          42,
	})

	require.NoError(t, err)
	assert.Equal(t, "job-123", id)
}

func TestSubmitJobRejectsEmptyID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "", testLogger())
	_, err := client.SubmitJob(context.Background(), JobSpec{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "empty job id")
}

func TestJobStatusAndResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/jobs/job-9":
			json.NewEncoder(w).Encode(map[string]string{"status": "succeeded"})
		case "/v1/jobs/job-9/result":
			json.NewEncoder(w).Encode(JobResult{MarkedFrequency: 0.9312, Shots: 8192})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "", testLogger())

	status, err := client.JobStatus(context.Background(), "job-9")
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, status)
	assert.True(t, status.Terminal())

	result, err := client.JobResult(context.Background(), "job-9")
	require.NoError(t, err)
	assert.InDelta(t, 0.9312, result.MarkedFrequency, 1e-12)
	assert.Equal(t, 8192, result.Shots)
}

func TestClientSurfacesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "", testLogger())
	_, err := client.JobStatus(context.Background(), "job-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
	assert.Contains(t, err.Error(), "backend overloaded")
}

// pollingProvider reports queued for a few polls before succeeding.
type pollingProvider struct {
	mu    sync.Mutex
	polls int
}

func (p *pollingProvider) SubmitJob(_ context.Context, _ JobSpec) (string, error) {
	return "job-1", nil
}

func (p *pollingProvider) JobStatus(_ context.Context, _ string) (JobStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.polls++
	if p.polls < 3 {
		return StatusRunning, nil
	}
	return StatusSucceeded, nil
}

func (p *pollingProvider) JobResult(_ context.Context, _ string) (JobResult, error) {
	return JobResult{MarkedFrequency: 0.5, Shots: 100}, nil
}

func TestWaitForResultPollsUntilTerminal(t *testing.T) {
	provider := &pollingProvider{}

	result, err := WaitForResult(context.Background(), provider, "job-1", time.Millisecond)

	require.NoError(t, err)
	assert.InDelta(t, 0.5, result.MarkedFrequency, 1e-12)
	assert.Equal(t, 3, provider.polls)
}

func TestWaitForResultHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := &pollingProvider{}
	_, err := WaitForResult(ctx, provider, "job-1", time.Hour)

	assert.ErrorIs(t, err, context.Canceled)
}
