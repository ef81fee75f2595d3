package qpu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HTTPClient talks to a remote quantum provider over its job API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     zerolog.Logger
}

// NewHTTPClient creates a provider client for the given endpoint. The
// API key is optional; when set it is sent as a bearer token.
func NewHTTPClient(baseURL, apiKey string, log zerolog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("client", "qpu").Logger(),
	}
}

type submitResponse struct {
	JobID string `json:"job_id"`
}

type statusResponse struct {
	Status JobStatus `json:"status"`
}

// SubmitJob queues an evaluation job and returns its identifier.
func (c *HTTPClient) SubmitJob(ctx context.Context, spec JobSpec) (string, error) {
	body, err := json.Marshal(spec)
	if err != nil {
		return "", fmt.Errorf("failed to encode job spec: %w", err)
	}

	var out submitResponse
	if err := c.do(ctx, http.MethodPost, "/v1/jobs", bytes.NewReader(body), &out); err != nil {
		return "", err
	}
	if out.JobID == "" {
		return "", fmt.Errorf("provider returned an empty job id")
	}

	c.log.Debug().Str("job_id", out.JobID).Int("shots", spec.Shots).Msg("Submitted oracle job")
	return out.JobID, nil
}

// JobStatus fetches the current lifecycle state of a job.
func (c *HTTPClient) JobStatus(ctx context.Context, id string) (JobStatus, error) {
	var out statusResponse
	if err := c.do(ctx, http.MethodGet, "/v1/jobs/"+id, nil, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

// JobResult fetches the measurement result of a finished job.
func (c *HTTPClient) JobResult(ctx context.Context, id string) (JobResult, error) {
	var out JobResult
	if err := c.do(ctx, http.MethodGet, "/v1/jobs/"+id+"/result", nil, &out); err != nil {
		return JobResult{}, err
	}
	return out, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("provider returned status %d for %s %s: %s",
			resp.StatusCode, method, path, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse provider response: %w", err)
	}
	return nil
}
