package benchmark

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/quantrisk/internal/basket"
	"github.com/aristath/quantrisk/internal/modules/classical"
	"github.com/aristath/quantrisk/pkg/formulas"
)

func benchmarkParams() Params {
	return Params{
		Spec:             basket.Spec{W1: 0.5, W2: 0.5, Strike: 100.0},
		Asset:            basket.Asset{S0: 100.0, Mu: 0.05, Sigma: 0.2, Tau: 1.0},
		Alpha:            0.95,
		SampleSizes:      []int{500, 2000, 8000},
		ReferenceSamples: 200000,
		Seed:             42,
	}
}

func TestRunShape(t *testing.T) {
	p := benchmarkParams()
	result := Run(p)

	require.Len(t, result.PFEValues, len(p.SampleSizes))
	require.Len(t, result.Errors, len(p.SampleSizes))
	require.Len(t, result.RuntimesMS, len(p.SampleSizes))
	assert.Equal(t, p.SampleSizes, result.SampleSizes)

	// Antithetic doubling applies to the reference run as well.
	assert.Equal(t, 200000, result.ReferenceSamples)
	assert.Greater(t, result.ReferencePFE, 0.0)
	assert.GreaterOrEqual(t, result.TotalRuntimeMS, 0.0)

	for i, e := range result.Errors {
		assert.GreaterOrEqual(t, e, 0.0, "error %d is an absolute deviation", i)
	}
}

func TestRunMatchesDirectEstimates(t *testing.T) {
	p := benchmarkParams()
	result := Run(p)

	for i, size := range p.SampleSizes {
		direct := classical.ComputePFE(classical.Params{
			Spec:       p.Spec,
			Asset:      p.Asset,
			NumSamples: size,
			Alpha:      p.Alpha,
			Seed:       p.Seed,
		})
		assert.Equal(t, direct.PFE, result.PFEValues[i],
			"benchmark must reuse the estimator verbatim at size %d", size)
		assert.InDelta(t, math.Abs(direct.PFE-result.ReferencePFE), result.Errors[i], 1e-12)
	}
}

func TestRunDefaults(t *testing.T) {
	p := benchmarkParams()
	p.SampleSizes = []int{200}
	p.ReferenceSamples = 0

	result := Run(p)
	assert.Equal(t, DefaultReferenceSamples, result.ReferenceSamples)

	p.SampleSizes = nil
	p.ReferenceSamples = 50000
	result = Run(p)
	assert.Equal(t, DefaultSampleSizes, result.SampleSizes)
}

func TestErrorShrinksWithSampleSize(t *testing.T) {
	// Average the deviation over several seeds: the estimator error at
	// n=1000 should clearly dominate the error at n=100000.
	spec := basket.Spec{W1: 0.5, W2: 0.5, Strike: 100.0}
	asset := basket.Asset{S0: 100.0, Mu: 0.05, Sigma: 0.2, Tau: 1.0}
	alpha := 0.95

	reference := classical.ComputePFE(classical.Params{
		Spec: spec, Asset: asset, NumSamples: 400000, Alpha: alpha, Seed: 1,
	}).PFE

	var smallErrs, largeErrs []float64
	for seed := uint64(100); seed < 110; seed++ {
		small := classical.ComputePFE(classical.Params{
			Spec: spec, Asset: asset, NumSamples: 1000, Alpha: alpha, Seed: seed,
		}).PFE
		large := classical.ComputePFE(classical.Params{
			Spec: spec, Asset: asset, NumSamples: 100000, Alpha: alpha, Seed: seed,
		}).PFE

		smallErrs = append(smallErrs, math.Abs(small-reference))
		largeErrs = append(largeErrs, math.Abs(large-reference))
	}

	assert.Greater(t, formulas.Mean(smallErrs), formulas.Mean(largeErrs),
		"mean deviation must shrink as the sample count grows")
}
