package quantum

import "math"

// EncodedState is the amplitude encoding of a discrete distribution:
// basis outcome i carries amplitude √pᵢ, so measurement in the
// computational basis reproduces the distribution exactly.
type EncodedState struct {
	amplitudes []float64
}

// PrepareState amplitude-encodes a distribution. Zero-probability bins
// keep a zero amplitude.
func PrepareState(dist DiscreteDistribution) *EncodedState {
	amps := make([]float64, len(dist.Probs))
	for i, p := range dist.Probs {
		if p > 0 {
			amps[i] = math.Sqrt(p)
		}
	}
	return &EncodedState{amplitudes: amps}
}

// Probabilities returns the measurement distribution of the state, the
// squared amplitudes.
func (s *EncodedState) Probabilities() []float64 {
	probs := make([]float64, len(s.amplitudes))
	for i, a := range s.amplitudes {
		probs[i] = a * a
	}
	return probs
}

// NumOutcomes returns the number of basis outcomes in the register.
func (s *EncodedState) NumOutcomes() int {
	return len(s.amplitudes)
}
