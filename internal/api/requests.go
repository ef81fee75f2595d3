// Package api defines the request payloads shared by the simulation
// endpoints, their documented defaults and their validation rules.
//
// Handlers decode JSON over a defaults-filled value, so absent fields
// (and empty bodies) fall back to the documented defaults while
// explicit zeroes are kept and validated.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/aristath/quantrisk/internal/basket"
)

// Parameter bounds enforced at the API boundary.
const (
	MinSamples = 100
	MaxSamples = 10_000_000

	MinQubits = 3
	MaxQubits = 10

	MinAEIterations = 2
	MaxAEIterations = 15
)

// ModelParams carries the basket model, the confidence level and the
// RNG seed common to every simulation endpoint.
type ModelParams struct {
	W1          float64 `json:"w1" msgpack:"w1"`
	W2          float64 `json:"w2" msgpack:"w2"`
	Strike      float64 `json:"strike" msgpack:"strike"`
	S0          float64 `json:"s0" msgpack:"s0"`
	Mu          float64 `json:"mu" msgpack:"mu"`
	Sigma       float64 `json:"sigma" msgpack:"sigma"`
	Tau         float64 `json:"tau" msgpack:"tau"`
	Correlation float64 `json:"correlation" msgpack:"correlation"`
	Alpha       float64 `json:"alpha" msgpack:"alpha"`
	Seed        int64   `json:"seed" msgpack:"seed"`
}

// DefaultModelParams returns the documented defaults: an at-the-money
// equal-weight basket at the 95% confidence level.
func DefaultModelParams() ModelParams {
	return ModelParams{
		W1:          0.5,
		W2:          0.5,
		Strike:      100.0,
		S0:          100.0,
		Mu:          0.05,
		Sigma:       0.2,
		Tau:         1.0,
		Correlation: 0.0,
		Alpha:       0.95,
		Seed:        42,
	}
}

// Validate checks the model constraints and names the offending
// parameter in the error.
func (p ModelParams) Validate() error {
	if err := p.Spec().Validate(); err != nil {
		return err
	}
	if err := p.Asset().Validate(); err != nil {
		return err
	}
	if p.Alpha <= 0 || p.Alpha >= 1 {
		return fmt.Errorf("alpha must be within (0, 1), got %g", p.Alpha)
	}
	return nil
}

// Spec returns the basket portfolio definition.
func (p ModelParams) Spec() basket.Spec {
	return basket.Spec{
		W1:          p.W1,
		W2:          p.W2,
		Strike:      p.Strike,
		Correlation: p.Correlation,
	}
}

// Asset returns the market model parameters.
func (p ModelParams) Asset() basket.Asset {
	return basket.Asset{
		S0:    p.S0,
		Mu:    p.Mu,
		Sigma: p.Sigma,
		Tau:   p.Tau,
	}
}

// SeedValue returns the seed as consumed by the samplers.
func (p ModelParams) SeedValue() uint64 {
	return uint64(p.Seed)
}

// ClassicalRequest is the body of POST /api/simulate/classical.
type ClassicalRequest struct {
	ModelParams
	NumSamples int `json:"num_samples" msgpack:"num_samples"`
}

// DefaultClassicalRequest returns the documented defaults.
func DefaultClassicalRequest() ClassicalRequest {
	return ClassicalRequest{
		ModelParams: DefaultModelParams(),
		NumSamples:  10_000,
	}
}

// Validate checks the full request.
func (r ClassicalRequest) Validate() error {
	if err := r.ModelParams.Validate(); err != nil {
		return err
	}
	if r.NumSamples < MinSamples || r.NumSamples > MaxSamples {
		return fmt.Errorf("num_samples must be within [%d, %d], got %d", MinSamples, MaxSamples, r.NumSamples)
	}
	return nil
}

// QuantumRequest is the body of POST /api/simulate/quantum.
type QuantumRequest struct {
	ModelParams
	NumQubits    int    `json:"num_qubits" msgpack:"num_qubits"`
	AEIterations int    `json:"ae_iterations" msgpack:"ae_iterations"`
	Backend      string `json:"backend" msgpack:"backend"`
}

// DefaultQuantumRequest returns the documented defaults: a 32-bin
// register on the in-process simulator.
func DefaultQuantumRequest() QuantumRequest {
	return QuantumRequest{
		ModelParams:  DefaultModelParams(),
		NumQubits:    5,
		AEIterations: 6,
		Backend:      "simulator",
	}
}

// Validate checks the full request.
func (r QuantumRequest) Validate() error {
	if err := r.ModelParams.Validate(); err != nil {
		return err
	}
	if r.NumQubits < MinQubits || r.NumQubits > MaxQubits {
		return fmt.Errorf("num_qubits must be within [%d, %d], got %d", MinQubits, MaxQubits, r.NumQubits)
	}
	if r.AEIterations < MinAEIterations || r.AEIterations > MaxAEIterations {
		return fmt.Errorf("ae_iterations must be within [%d, %d], got %d", MinAEIterations, MaxAEIterations, r.AEIterations)
	}
	if r.Backend == "" {
		return fmt.Errorf("backend must not be empty")
	}
	return nil
}

// BenchmarkRequest is the body of POST /api/benchmark/convergence.
// Empty sample sizes fall back to the benchmark defaults.
type BenchmarkRequest struct {
	ModelParams
	SampleSizes      []int `json:"sample_sizes" msgpack:"sample_sizes"`
	ReferenceSamples int   `json:"reference_samples" msgpack:"reference_samples"`
}

// DefaultBenchmarkRequest returns the documented defaults.
func DefaultBenchmarkRequest() BenchmarkRequest {
	return BenchmarkRequest{ModelParams: DefaultModelParams()}
}

// Validate checks the full request.
func (r BenchmarkRequest) Validate() error {
	if err := r.ModelParams.Validate(); err != nil {
		return err
	}
	for _, size := range r.SampleSizes {
		if size < MinSamples || size > MaxSamples {
			return fmt.Errorf("sample_sizes entries must be within [%d, %d], got %d", MinSamples, MaxSamples, size)
		}
	}
	if r.ReferenceSamples != 0 && (r.ReferenceSamples < MinSamples || r.ReferenceSamples > MaxSamples) {
		return fmt.Errorf("reference_samples must be within [%d, %d], got %d", MinSamples, MaxSamples, r.ReferenceSamples)
	}
	return nil
}

// CompareRequest is the body of POST /api/simulate/compare.
type CompareRequest struct {
	ModelParams
	NumSamples   int    `json:"num_samples" msgpack:"num_samples"`
	NumQubits    int    `json:"num_qubits" msgpack:"num_qubits"`
	AEIterations int    `json:"ae_iterations" msgpack:"ae_iterations"`
	Backend      string `json:"backend" msgpack:"backend"`
}

// DefaultCompareRequest returns the documented defaults.
func DefaultCompareRequest() CompareRequest {
	return CompareRequest{
		ModelParams:  DefaultModelParams(),
		NumSamples:   10_000,
		NumQubits:    5,
		AEIterations: 6,
		Backend:      "simulator",
	}
}

// Validate checks the full request.
func (r CompareRequest) Validate() error {
	classical := ClassicalRequest{ModelParams: r.ModelParams, NumSamples: r.NumSamples}
	if err := classical.Validate(); err != nil {
		return err
	}
	quantum := QuantumRequest{
		ModelParams:  r.ModelParams,
		NumQubits:    r.NumQubits,
		AEIterations: r.AEIterations,
		Backend:      r.Backend,
	}
	return quantum.Validate()
}

// Decode parses a JSON request body over dst, which should already
// hold the defaults. An empty body keeps the defaults untouched.
func Decode(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}

	err := json.NewDecoder(r.Body).Decode(dst)
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("invalid request body: %v", err)
	}
	return nil
}
