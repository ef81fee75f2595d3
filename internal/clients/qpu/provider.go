// Package qpu defines the capability interface for delegating amplitude
// estimation oracle evaluations to a quantum processing provider. The
// provider is injected where needed; there is no process-wide session or
// workspace state.
package qpu

import (
	"context"
	"fmt"
	"time"
)

// JobSpec describes a single threshold-probability evaluation: measure
// how much probability mass the encoded distribution places on outcomes
// whose value lies at or below the threshold.
type JobSpec struct {
	Probabilities []float64 `json:"probabilities"`
	Values        []float64 `json:"values"`
	Threshold     float64   `json:"threshold"`
	Shots         int       `json:"shots"`
	Iterations    int       `json:"iterations"`
	Seed          uint64    `json:"seed"`
}

// JobStatus is the lifecycle state reported by a provider.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRunning   JobStatus = "running"
	StatusSucceeded JobStatus = "succeeded"
	StatusFailed    JobStatus = "failed"
)

// Terminal reports whether the status will no longer change.
func (s JobStatus) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// JobResult carries the measured marked-outcome frequency.
type JobResult struct {
	MarkedFrequency float64 `json:"marked_frequency"`
	Shots           int     `json:"shots"`
}

// Provider submits evaluation jobs and reports their status and result.
// Implementations must be safe for concurrent use.
type Provider interface {
	SubmitJob(ctx context.Context, spec JobSpec) (string, error)
	JobStatus(ctx context.Context, id string) (JobStatus, error)
	JobResult(ctx context.Context, id string) (JobResult, error)
}

// WaitForResult polls the provider until the job reaches a terminal
// status, then fetches the result. The poll interval bounds how quickly
// a fast provider returns; synchronous providers resolve on the first
// status check without sleeping.
func WaitForResult(ctx context.Context, p Provider, id string, interval time.Duration) (JobResult, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := p.JobStatus(ctx, id)
		if err != nil {
			return JobResult{}, fmt.Errorf("failed to poll job %s: %w", id, err)
		}

		switch status {
		case StatusSucceeded:
			return p.JobResult(ctx, id)
		case StatusFailed:
			return JobResult{}, fmt.Errorf("job %s failed on the provider", id)
		}

		select {
		case <-ctx.Done():
			return JobResult{}, ctx.Err()
		case <-ticker.C:
		}
	}
}
