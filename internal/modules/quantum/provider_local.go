package quantum

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/aristath/quantrisk/internal/clients/qpu"
)

// LocalProvider answers oracle jobs synchronously from the in-process
// simulator. It implements the same capability interface as a remote
// hardware provider, so the rest of the pipeline cannot tell them
// apart.
type LocalProvider struct {
	mu   sync.Mutex
	jobs map[string]qpu.JobSpec
}

// NewLocalProvider creates an empty in-process provider.
func NewLocalProvider() *LocalProvider {
	return &LocalProvider{jobs: make(map[string]qpu.JobSpec)}
}

// SubmitJob records the job and returns its identifier. Evaluation is
// deferred to JobResult.
func (l *LocalProvider) SubmitJob(_ context.Context, spec qpu.JobSpec) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := uuid.NewString()
	l.jobs[id] = spec
	return id, nil
}

// JobStatus reports succeeded for every known job; local jobs complete
// as soon as they are submitted.
func (l *LocalProvider) JobStatus(_ context.Context, id string) (qpu.JobStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.jobs[id]; !ok {
		return "", fmt.Errorf("unknown job %s", id)
	}
	return qpu.StatusSucceeded, nil
}

// JobResult evaluates the job on the simulator and forgets it.
func (l *LocalProvider) JobResult(_ context.Context, id string) (qpu.JobResult, error) {
	l.mu.Lock()
	spec, ok := l.jobs[id]
	if ok {
		delete(l.jobs, id)
	}
	l.mu.Unlock()

	if !ok {
		return qpu.JobResult{}, fmt.Errorf("unknown job %s", id)
	}

	state := PrepareState(DiscreteDistribution{Values: spec.Values, Probs: spec.Probabilities})
	shots := spec.Shots
	if shots <= 0 {
		shots = OracleShots
	}
	freq := sampleThresholdFrequency(state, spec.Values, spec.Threshold, shots, spec.Seed)

	return qpu.JobResult{MarkedFrequency: freq, Shots: shots}, nil
}
