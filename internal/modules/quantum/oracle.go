package quantum

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// OracleShots is the number of simulated measurements per oracle
// evaluation. It sets the statistical noise floor of a single estimate,
// roughly ±0.005 at one standard error near p = 0.5.
const OracleShots = 8192

// EstimateThresholdProbability measures the cumulative probability
// P(value ≤ threshold) by sampling the encoded state and counting the
// marked outcomes. The same seed always produces the same estimate.
//
// iterations is carried for parity with hardware amplitude estimation
// schedules; the simulated oracle's precision is fixed by OracleShots.
func EstimateThresholdProbability(state *EncodedState, values []float64, threshold float64, iterations int, seed uint64) float64 {
	return sampleThresholdFrequency(state, values, threshold, OracleShots, seed)
}

func sampleThresholdFrequency(state *EncodedState, values []float64, threshold float64, shots int, seed uint64) float64 {
	if shots <= 0 {
		shots = OracleShots
	}

	sampler := distuv.NewCategorical(state.Probabilities(), rand.NewSource(seed))

	marked := 0
	for shot := 0; shot < shots; shot++ {
		outcome := int(sampler.Rand())
		if values[outcome] <= threshold {
			marked++
		}
	}
	return float64(marked) / float64(shots)
}
