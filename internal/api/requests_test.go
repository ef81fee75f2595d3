package api

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultModelParams(t *testing.T) {
	p := DefaultModelParams()

	assert.Equal(t, 0.5, p.W1)
	assert.Equal(t, 0.5, p.W2)
	assert.Equal(t, 100.0, p.Strike)
	assert.Equal(t, 100.0, p.S0)
	assert.Equal(t, 0.05, p.Mu)
	assert.Equal(t, 0.2, p.Sigma)
	assert.Equal(t, 1.0, p.Tau)
	assert.Equal(t, 0.0, p.Correlation)
	assert.Equal(t, 0.95, p.Alpha)
	assert.Equal(t, int64(42), p.Seed)
	assert.NoError(t, p.Validate())
}

func TestModelParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ModelParams)
		wantErr string
	}{
		{
			name:    "w1 above range",
			mutate:  func(p *ModelParams) { p.W1 = 1.5 },
			wantErr: "w1 must be within [0, 1]",
		},
		{
			name:    "w2 negative",
			mutate:  func(p *ModelParams) { p.W2 = -0.1 },
			wantErr: "w2 must be within [0, 1]",
		},
		{
			name:    "zero strike",
			mutate:  func(p *ModelParams) { p.Strike = 0 },
			wantErr: "strike must be positive",
		},
		{
			name:    "correlation out of range",
			mutate:  func(p *ModelParams) { p.Correlation = -1.2 },
			wantErr: "correlation must be within [-1, 1]",
		},
		{
			name:    "zero spot",
			mutate:  func(p *ModelParams) { p.S0 = 0 },
			wantErr: "s0 must be positive",
		},
		{
			name:    "negative volatility",
			mutate:  func(p *ModelParams) { p.Sigma = -0.2 },
			wantErr: "sigma must be positive",
		},
		{
			name:    "zero horizon",
			mutate:  func(p *ModelParams) { p.Tau = 0 },
			wantErr: "tau must be positive",
		},
		{
			name:    "alpha at zero",
			mutate:  func(p *ModelParams) { p.Alpha = 0 },
			wantErr: "alpha must be within (0, 1)",
		},
		{
			name:    "alpha at one",
			mutate:  func(p *ModelParams) { p.Alpha = 1 },
			wantErr: "alpha must be within (0, 1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultModelParams()
			tt.mutate(&p)

			err := p.Validate()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSeedValueWrapsNegatives(t *testing.T) {
	p := DefaultModelParams()
	p.Seed = -1

	assert.Equal(t, uint64(18446744073709551615), p.SeedValue())

	p.Seed = 42
	assert.Equal(t, uint64(42), p.SeedValue())
}

func TestDecodeOverDefaults(t *testing.T) {
	body := `{"strike": 110.0, "num_samples": 5000, "seed": null}`
	r := httptest.NewRequest("POST", "/api/simulate/classical", strings.NewReader(body))

	req := DefaultClassicalRequest()
	require.NoError(t, Decode(r, &req))

	// Overridden fields take effect, everything else keeps defaults.
	// A JSON null leaves the target untouched, so seed stays at 42.
	assert.Equal(t, 110.0, req.Strike)
	assert.Equal(t, 5000, req.NumSamples)
	assert.Equal(t, 0.5, req.W1)
	assert.Equal(t, 0.95, req.Alpha)
	assert.Equal(t, int64(42), req.Seed)
}

func TestDecodeEmptyBodyKeepsDefaults(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/simulate/classical", nil)

	req := DefaultClassicalRequest()
	require.NoError(t, Decode(r, &req))

	assert.Equal(t, DefaultClassicalRequest(), req)
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/simulate/classical", strings.NewReader(`{"w1": `))

	req := DefaultClassicalRequest()
	err := Decode(r, &req)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid request body")
}

func TestClassicalRequestValidate(t *testing.T) {
	req := DefaultClassicalRequest()
	require.NoError(t, req.Validate())

	req.NumSamples = 10
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "num_samples must be within [100, 10000000]")

	req.NumSamples = 20_000_000
	assert.Error(t, req.Validate())
}

func TestQuantumRequestValidate(t *testing.T) {
	req := DefaultQuantumRequest()
	require.NoError(t, req.Validate())

	tests := []struct {
		name    string
		mutate  func(*QuantumRequest)
		wantErr string
	}{
		{
			name:    "too few qubits",
			mutate:  func(r *QuantumRequest) { r.NumQubits = 2 },
			wantErr: "num_qubits must be within [3, 10]",
		},
		{
			name:    "too many qubits",
			mutate:  func(r *QuantumRequest) { r.NumQubits = 11 },
			wantErr: "num_qubits must be within [3, 10]",
		},
		{
			name:    "too few iterations",
			mutate:  func(r *QuantumRequest) { r.AEIterations = 1 },
			wantErr: "ae_iterations must be within [2, 15]",
		},
		{
			name:    "blank backend",
			mutate:  func(r *QuantumRequest) { r.Backend = "" },
			wantErr: "backend must not be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := DefaultQuantumRequest()
			tt.mutate(&req)

			err := req.Validate()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBenchmarkRequestValidate(t *testing.T) {
	req := DefaultBenchmarkRequest()
	require.NoError(t, req.Validate(), "empty sizes defer to the benchmark defaults")

	req.SampleSizes = []int{100, 1000, 10_000}
	req.ReferenceSamples = 500_000
	require.NoError(t, req.Validate())

	req.SampleSizes = []int{100, 50}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample_sizes entries must be within")

	req.SampleSizes = nil
	req.ReferenceSamples = 10
	err = req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reference_samples must be within")
}

func TestCompareRequestValidate(t *testing.T) {
	req := DefaultCompareRequest()
	require.NoError(t, req.Validate())

	req.NumSamples = 1
	assert.Error(t, req.Validate())

	req = DefaultCompareRequest()
	req.NumQubits = 20
	assert.Error(t, req.Validate())
}
