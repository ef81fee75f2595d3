// Package basket models the two-asset basket option whose counterparty
// exposure both estimation engines measure.
//
// Market model: S(τ) = S0 + μ·τ + σ·√τ·Z with Z standard normal, the same
// single-asset model for both underlyings. Basket value:
// V(τ) = w1·S1(τ) + w2·S2(τ) − K. Exposure: E(τ) = max(V(τ), 0).
package basket

import (
	"fmt"
	"math"
)

// Spec defines the basket portfolio: asset weights, strike price and the
// correlation between the two underlyings. Immutable, supplied per request.
type Spec struct {
	W1          float64 `json:"w1" msgpack:"w1"`
	W2          float64 `json:"w2" msgpack:"w2"`
	Strike      float64 `json:"strike" msgpack:"strike"`
	Correlation float64 `json:"correlation" msgpack:"correlation"`
}

// Asset defines the market model parameters shared by both underlyings.
type Asset struct {
	S0    float64 `json:"s0" msgpack:"s0"`
	Mu    float64 `json:"mu" msgpack:"mu"`
	Sigma float64 `json:"sigma" msgpack:"sigma"`
	Tau   float64 `json:"tau" msgpack:"tau"`
}

// Distribution is the analytic distribution of the basket value V(τ).
// Derived from Spec + Asset, never stored.
type Distribution struct {
	Mean float64
	Std  float64
}

// Validate checks the portfolio constraints enforced at the API boundary.
func (s Spec) Validate() error {
	if s.W1 < 0 || s.W1 > 1 {
		return fmt.Errorf("w1 must be within [0, 1], got %g", s.W1)
	}
	if s.W2 < 0 || s.W2 > 1 {
		return fmt.Errorf("w2 must be within [0, 1], got %g", s.W2)
	}
	if s.Strike <= 0 {
		return fmt.Errorf("strike must be positive, got %g", s.Strike)
	}
	if s.Correlation < -1 || s.Correlation > 1 {
		return fmt.Errorf("correlation must be within [-1, 1], got %g", s.Correlation)
	}
	return nil
}

// Validate checks the market model constraints enforced at the API boundary.
func (a Asset) Validate() error {
	if a.S0 <= 0 {
		return fmt.Errorf("s0 must be positive, got %g", a.S0)
	}
	if a.Sigma <= 0 {
		return fmt.Errorf("sigma must be positive, got %g", a.Sigma)
	}
	if a.Tau <= 0 {
		return fmt.Errorf("tau must be positive, got %g", a.Tau)
	}
	return nil
}

// Derive computes the analytic basket-value distribution.
//
// Mean:     (w1+w2)·(S0+μτ) − K
// Variance: (w1² + w2² + 2·w1·w2·ρ)·σ²τ
//
// The variance term is non-negative for every ρ ∈ [-1, 1] since it lower
// bounds at (w1−w2)². Purely analytic, no sampling.
func Derive(spec Spec, asset Asset) Distribution {
	mean := (spec.W1+spec.W2)*(asset.S0+asset.Mu*asset.Tau) - spec.Strike
	variance := (spec.W1*spec.W1 + spec.W2*spec.W2 + 2*spec.W1*spec.W2*spec.Correlation) *
		asset.Sigma * asset.Sigma * asset.Tau
	return Distribution{Mean: mean, Std: math.Sqrt(variance)}
}

// Price maps a standard-normal draw to the asset price at the horizon.
func (a Asset) Price(z float64) float64 {
	return a.S0 + a.Mu*a.Tau + a.Sigma*math.Sqrt(a.Tau)*z
}

// Value computes the basket value for a pair of realized asset prices.
func (s Spec) Value(s1, s2 float64) float64 {
	return s.W1*s1 + s.W2*s2 - s.Strike
}

// Exposure is the non-negative part of a basket value.
func Exposure(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}
