package quantum

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/quantrisk/internal/basket"
	"github.com/aristath/quantrisk/internal/clients/qpu"
	"github.com/aristath/quantrisk/pkg/formulas"
)

const (
	// BackendSimulator runs the oracle on the in-process simulator.
	// Any other backend name is delegated to the configured provider.
	BackendSimulator = "simulator"

	// SearchTolerance is the acceptable gap between the measured
	// cumulative probability and the confidence level.
	SearchTolerance = 0.03

	// SearchMaxSteps bounds the bisection before it settles for the
	// midpoint of the remaining interval.
	SearchMaxSteps = 15

	defaultPollInterval = 500 * time.Millisecond
)

// Params bundles the inputs of one quantum-path estimation call.
type Params struct {
	Spec         basket.Spec
	Asset        basket.Asset
	NumQubits    int
	AEIterations int
	Alpha        float64
	Seed         uint64
	Backend      string
}

// Result is the flat record of a quantum-path estimation.
type Result struct {
	PFE                    float64 `json:"pfe" msgpack:"pfe"`
	ExpectedExposure       float64 `json:"expected_exposure" msgpack:"expected_exposure"`
	Alpha                  float64 `json:"alpha" msgpack:"alpha"`
	NumQubits              int     `json:"num_qubits" msgpack:"num_qubits"`
	AEIterations           int     `json:"ae_iterations" msgpack:"ae_iterations"`
	Backend                string  `json:"backend" msgpack:"backend"`
	DiscretizationBins     int     `json:"discretization_bins" msgpack:"discretization_bins"`
	RuntimeMS              float64 `json:"runtime_ms" msgpack:"runtime_ms"`
	Seed                   uint64  `json:"seed" msgpack:"seed"`
	DegenerateDistribution bool    `json:"degenerate_distribution" msgpack:"degenerate_distribution"`
	SearchExhausted        bool    `json:"search_exhausted" msgpack:"search_exhausted"`
	SearchSteps            int     `json:"search_steps" msgpack:"search_steps"`
}

// Service runs the estimation pipeline against either the in-process
// simulator or a remote provider.
type Service struct {
	log          zerolog.Logger
	provider     qpu.Provider
	pollInterval time.Duration
}

// NewService creates the quantum estimation service. The provider may
// be nil, in which case every call runs on the in-process simulator.
func NewService(provider qpu.Provider, log zerolog.Logger) *Service {
	return &Service{
		log:          log.With().Str("service", "quantum").Logger(),
		provider:     provider,
		pollInterval: defaultPollInterval,
	}
}

// ComputePFE estimates the potential future exposure along the quantum
// path: discretize the exposure model onto 2^num_qubits bins, encode it
// as amplitudes, then bisect for the alpha-quantile using oracle
// measurements.
//
// Degenerate distributions and exhausted searches are reported through
// result flags, never as errors. Only remote provider failures return
// an error.
func (s *Service) ComputePFE(ctx context.Context, p Params) (Result, error) {
	start := time.Now()

	backend := p.Backend
	if backend == "" {
		backend = BackendSimulator
	}
	if backend != BackendSimulator && s.provider == nil {
		s.log.Warn().Str("backend", backend).Msg("No provider configured, running on the local simulator")
		backend = BackendSimulator
	}

	model := basket.Derive(p.Spec, p.Asset)
	bins := 1 << p.NumQubits

	raw := Discretize(model.Mean, model.Std, bins, EstimatorNumStd)
	exposure, degenerate := raw.ExposureDistribution()
	if degenerate {
		s.log.Warn().
			Float64("model_mean", model.Mean).
			Float64("model_std", model.Std).
			Msg("Exposure distribution carries no positive mass, falling back to uniform")
	}

	state := PrepareState(exposure)
	estimate, failure := s.estimator(ctx, p, state, exposure.Values, backend)

	search := FindQuantile(
		estimate,
		formulas.Min(exposure.Values),
		formulas.Max(exposure.Values),
		p.Alpha,
		SearchTolerance,
		SearchMaxSteps,
	)
	if err := failure(); err != nil {
		return Result{}, fmt.Errorf("backend %s evaluation failed: %w", backend, err)
	}

	result := Result{
		PFE:                    search.Value,
		ExpectedExposure:       exposure.Mean(),
		Alpha:                  p.Alpha,
		NumQubits:              p.NumQubits,
		AEIterations:           p.AEIterations,
		Backend:                backend,
		DiscretizationBins:     bins,
		RuntimeMS:              float64(time.Since(start)) / float64(time.Millisecond),
		Seed:                   p.Seed,
		DegenerateDistribution: degenerate,
		SearchExhausted:        search.State == StateExhausted,
		SearchSteps:            search.Steps,
	}

	s.log.Info().
		Str("backend", backend).
		Int("num_qubits", p.NumQubits).
		Int("search_steps", search.Steps).
		Str("search_state", string(search.State)).
		Float64("alpha", p.Alpha).
		Float64("pfe", result.PFE).
		Float64("expected_exposure", result.ExpectedExposure).
		Float64("runtime_ms", result.RuntimeMS).
		Msg("Quantum PFE computed")

	return result, nil
}

// estimator returns the probability oracle for the chosen backend plus
// a closure reporting any provider failure observed during the search.
func (s *Service) estimator(ctx context.Context, p Params, state *EncodedState, values []float64, backend string) (ProbabilityFn, func() error) {
	if backend == BackendSimulator {
		local := func(threshold float64) float64 {
			return EstimateThresholdProbability(state, values, threshold, p.AEIterations, p.Seed)
		}
		return local, func() error { return nil }
	}

	var failed error
	remote := func(threshold float64) float64 {
		if failed != nil {
			return 0
		}
		freq, err := s.evaluateRemote(ctx, p, state, values, threshold)
		if err != nil {
			failed = err
			return 0
		}
		return freq
	}
	return remote, func() error { return failed }
}

func (s *Service) evaluateRemote(ctx context.Context, p Params, state *EncodedState, values []float64, threshold float64) (float64, error) {
	id, err := s.provider.SubmitJob(ctx, qpu.JobSpec{
		Probabilities: state.Probabilities(),
		Values:        values,
		Threshold:     threshold,
		Shots:         OracleShots,
		Iterations:    p.AEIterations,
		Seed:          p.Seed,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to submit oracle job: %w", err)
	}

	result, err := qpu.WaitForResult(ctx, s.provider, id, s.pollInterval)
	if err != nil {
		return 0, err
	}
	return result.MarkedFrequency, nil
}
