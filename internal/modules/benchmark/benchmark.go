// Package benchmark measures classical Monte Carlo convergence by driving
// the estimator across sample sizes against a high-sample reference run.
package benchmark

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/quantrisk/internal/basket"
	"github.com/aristath/quantrisk/internal/modules/classical"
)

// DefaultSampleSizes is the ladder used when a request omits its own.
var DefaultSampleSizes = []int{1000, 3000, 10000, 30000, 100000}

// DefaultReferenceSamples sizes the reference run.
const DefaultReferenceSamples = 1000000

// Params bundles the inputs of a convergence run.
type Params struct {
	Spec             basket.Spec
	Asset            basket.Asset
	Alpha            float64
	SampleSizes      []int
	ReferenceSamples int
	Seed             uint64
}

// Result reports the reference value and the per-size deviations.
type Result struct {
	ReferencePFE     float64   `json:"reference_pfe" msgpack:"reference_pfe"`
	ReferenceSamples int       `json:"reference_samples" msgpack:"reference_samples"`
	SampleSizes      []int     `json:"sample_sizes" msgpack:"sample_sizes"`
	PFEValues        []float64 `json:"pfe_values" msgpack:"pfe_values"`
	Errors           []float64 `json:"errors" msgpack:"errors"`
	RuntimesMS       []float64 `json:"runtimes_ms" msgpack:"runtimes_ms"`
	TotalRuntimeMS   float64   `json:"total_runtime_ms" msgpack:"total_runtime_ms"`
}

// Run computes the reference PFE, then re-invokes the estimator at each
// requested size with the same seed, recording absolute deviation from
// the reference and per-call runtime.
func Run(p Params) Result {
	start := time.Now()

	if len(p.SampleSizes) == 0 {
		p.SampleSizes = DefaultSampleSizes
	}
	if p.ReferenceSamples <= 0 {
		p.ReferenceSamples = DefaultReferenceSamples
	}

	reference := classical.ComputePFE(classical.Params{
		Spec:       p.Spec,
		Asset:      p.Asset,
		NumSamples: p.ReferenceSamples,
		Alpha:      p.Alpha,
		Seed:       p.Seed,
	})

	result := Result{
		ReferencePFE:     reference.PFE,
		ReferenceSamples: reference.SamplesUsed,
		SampleSizes:      p.SampleSizes,
		PFEValues:        make([]float64, 0, len(p.SampleSizes)),
		Errors:           make([]float64, 0, len(p.SampleSizes)),
		RuntimesMS:       make([]float64, 0, len(p.SampleSizes)),
	}

	for _, size := range p.SampleSizes {
		run := classical.ComputePFE(classical.Params{
			Spec:       p.Spec,
			Asset:      p.Asset,
			NumSamples: size,
			Alpha:      p.Alpha,
			Seed:       p.Seed,
		})

		result.PFEValues = append(result.PFEValues, run.PFE)
		result.Errors = append(result.Errors, math.Abs(run.PFE-reference.PFE))
		result.RuntimesMS = append(result.RuntimesMS, run.RuntimeMS)
	}

	result.TotalRuntimeMS = float64(time.Since(start)) / float64(time.Millisecond)
	return result
}

// Service wraps Run with structured logging for the API layer.
type Service struct {
	log zerolog.Logger
}

// NewService creates a new convergence benchmark service
func NewService(log zerolog.Logger) *Service {
	return &Service{
		log: log.With().Str("service", "benchmark").Logger(),
	}
}

// Run executes the benchmark and logs a summary.
func (s *Service) Run(p Params) Result {
	s.log.Info().
		Ints("sample_sizes", p.SampleSizes).
		Int("reference_samples", p.ReferenceSamples).
		Msg("Starting convergence benchmark")

	result := Run(p)

	s.log.Info().
		Float64("reference_pfe", result.ReferencePFE).
		Int("sizes_tested", len(result.SampleSizes)).
		Float64("total_runtime_ms", result.TotalRuntimeMS).
		Msg("Convergence benchmark completed")

	return result
}
