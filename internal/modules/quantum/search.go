package quantum

import "math"

// SearchState labels how a quantile search terminated. Both converged
// and exhausted searches yield a usable value; exhausted only means the
// step budget ran out before the tolerance was met.
type SearchState string

const (
	StateSearching SearchState = "searching"
	StateConverged SearchState = "converged"
	StateExhausted SearchState = "exhausted"
)

// ProbabilityFn evaluates the cumulative probability at a candidate
// threshold. Implementations may be noisy; the search only assumes the
// estimates are roughly monotone in the threshold.
type ProbabilityFn func(threshold float64) float64

// SearchResult reports the threshold the search settled on, the last
// probability estimate observed there, and how the search ended.
type SearchResult struct {
	Value       float64
	Probability float64
	Steps       int
	State       SearchState
}

// FindQuantile bisects [lo, hi] for the threshold whose cumulative
// probability matches target within tolerance. Estimates below the
// target move the lower bound up, estimates at or above it move the
// upper bound down. After maxSteps the midpoint of the remaining
// interval is returned as a best-effort answer.
func FindQuantile(estimate ProbabilityFn, lo, hi, target, tolerance float64, maxSteps int) SearchResult {
	result := SearchResult{State: StateSearching}
	low, high := lo, hi

	for step := 1; step <= maxSteps; step++ {
		mid := (low + high) / 2
		p := estimate(mid)

		result.Steps = step
		result.Probability = p

		if math.Abs(p-target) < tolerance {
			result.Value = mid
			result.State = StateConverged
			return result
		}

		if p < target {
			low = mid
		} else {
			high = mid
		}
	}

	result.Value = (low + high) / 2
	result.State = StateExhausted
	return result
}
