// Package quantum implements the quantum-inspired estimation path:
// discretization of the exposure model onto a qubit register, amplitude
// encoding, a shot-based amplitude estimation oracle, and a bisection
// search that reads the loss quantile off the oracle.
package quantum

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/aristath/quantrisk/internal/basket"
	"github.com/aristath/quantrisk/pkg/formulas"
)

const (
	// DefaultNumStd is the half-width of the discretization grid in
	// standard deviations.
	DefaultNumStd = 3.0

	// EstimatorNumStd is the wider grid used by the PFE pipeline so the
	// tail around the confidence level keeps enough resolution.
	EstimatorNumStd = 3.5
)

// DiscreteDistribution is a probability mass function over ordered bin
// values. Probs always sums to one.
type DiscreteDistribution struct {
	Values []float64 `json:"values"`
	Probs  []float64 `json:"probs"`
}

// Discretize maps a normal value distribution onto numBins equal-width
// bins spanning mean ± numStd·std. Each bin receives the CDF mass
// between its edges and carries its center as the representative value.
//
// A zero-variance model collapses to a point mass on the center bin.
func Discretize(mean, std float64, numBins int, numStd float64) DiscreteDistribution {
	values := make([]float64, numBins)
	probs := make([]float64, numBins)

	if std <= 0 {
		for i := range values {
			values[i] = mean
		}
		probs[numBins/2] = 1.0
		return DiscreteDistribution{Values: values, Probs: probs}
	}

	lo := mean - numStd*std
	width := 2 * numStd * std / float64(numBins)
	normal := distuv.Normal{Mu: mean, Sigma: std}

	for i := 0; i < numBins; i++ {
		left := lo + float64(i)*width
		right := left + width
		values[i] = (left + right) / 2
		probs[i] = normal.CDF(right) - normal.CDF(left)
	}

	normalize(probs)
	return DiscreteDistribution{Values: values, Probs: probs}
}

// ExposureDistribution maps every bin value through the exposure payoff
// max(v, 0) and restricts the probability mass to the strictly positive
// bins, renormalized to sum to one.
//
// When no bin keeps a positive value the distribution is degenerate and
// the mass falls back to uniform over all bins; the second return value
// reports that fallback.
func (d DiscreteDistribution) ExposureDistribution() (DiscreteDistribution, bool) {
	n := len(d.Values)
	values := make([]float64, n)
	probs := make([]float64, n)

	positiveMass := 0.0
	for i, v := range d.Values {
		values[i] = basket.Exposure(v)
		if values[i] > 0 {
			positiveMass += d.Probs[i]
		}
	}

	if positiveMass <= 0 {
		uniform := 1.0 / float64(n)
		for i := range probs {
			probs[i] = uniform
		}
		return DiscreteDistribution{Values: values, Probs: probs}, true
	}

	for i := range probs {
		if values[i] > 0 {
			probs[i] = d.Probs[i] / positiveMass
		}
	}
	return DiscreteDistribution{Values: values, Probs: probs}, false
}

// Mean returns the expectation of the distribution.
func (d DiscreteDistribution) Mean() float64 {
	total := 0.0
	for i, v := range d.Values {
		total += v * d.Probs[i]
	}
	return total
}

func normalize(probs []float64) {
	total := formulas.Sum(probs)
	if total <= 0 {
		uniform := 1.0 / float64(len(probs))
		for i := range probs {
			probs[i] = uniform
		}
		return
	}
	for i := range probs {
		probs[i] /= total
	}
}
