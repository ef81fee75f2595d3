// Package analysis runs the classical and quantum estimation paths on
// the same inputs and quantifies how far apart they land.
package analysis

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/quantrisk/internal/basket"
	"github.com/aristath/quantrisk/internal/modules/classical"
	"github.com/aristath/quantrisk/internal/modules/quantum"
)

// Params carries the shared model inputs plus the per-path tuning.
type Params struct {
	Spec         basket.Spec
	Asset        basket.Asset
	Alpha        float64
	Seed         uint64
	NumSamples   int
	NumQubits    int
	AEIterations int
	Backend      string
}

// Result pairs the two estimates with their disagreement. The relative
// difference is a percentage of the classical PFE and the runtime ratio
// is classical over quantum, both zero when the denominator is.
type Result struct {
	Classical             classical.Result `json:"classical" msgpack:"classical"`
	Quantum               quantum.Result   `json:"quantum" msgpack:"quantum"`
	AbsoluteDifference    float64          `json:"absolute_difference" msgpack:"absolute_difference"`
	RelativeDifferencePct float64          `json:"relative_difference_pct" msgpack:"relative_difference_pct"`
	RuntimeRatio          float64          `json:"runtime_ratio" msgpack:"runtime_ratio"`
	TotalRuntimeMS        float64          `json:"total_runtime_ms" msgpack:"total_runtime_ms"`
}

// Service orchestrates the two estimation services.
type Service struct {
	classical *classical.Service
	quantum   *quantum.Service
	log       zerolog.Logger
}

// NewService creates the comparison service.
func NewService(classicalSvc *classical.Service, quantumSvc *quantum.Service, log zerolog.Logger) *Service {
	return &Service{
		classical: classicalSvc,
		quantum:   quantumSvc,
		log:       log.With().Str("service", "analysis").Logger(),
	}
}

// Compare runs both estimators with the same model, confidence level
// and seed, then reports the gap between the two PFE figures.
func (s *Service) Compare(ctx context.Context, p Params) (Result, error) {
	start := time.Now()

	classicalResult := s.classical.ComputePFE(classical.Params{
		Spec:       p.Spec,
		Asset:      p.Asset,
		NumSamples: p.NumSamples,
		Alpha:      p.Alpha,
		Seed:       p.Seed,
	})

	quantumResult, err := s.quantum.ComputePFE(ctx, quantum.Params{
		Spec:         p.Spec,
		Asset:        p.Asset,
		NumQubits:    p.NumQubits,
		AEIterations: p.AEIterations,
		Alpha:        p.Alpha,
		Seed:         p.Seed,
		Backend:      p.Backend,
	})
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Classical:          classicalResult,
		Quantum:            quantumResult,
		AbsoluteDifference: math.Abs(quantumResult.PFE - classicalResult.PFE),
		TotalRuntimeMS:     float64(time.Since(start)) / float64(time.Millisecond),
	}
	if classicalResult.PFE != 0 {
		result.RelativeDifferencePct = result.AbsoluteDifference / classicalResult.PFE * 100
	}
	if quantumResult.RuntimeMS > 0 {
		result.RuntimeRatio = classicalResult.RuntimeMS / quantumResult.RuntimeMS
	}

	s.log.Info().
		Float64("classical_pfe", classicalResult.PFE).
		Float64("quantum_pfe", quantumResult.PFE).
		Float64("absolute_difference", result.AbsoluteDifference).
		Float64("relative_difference_pct", result.RelativeDifferencePct).
		Msg("Estimation paths compared")

	return result, nil
}
