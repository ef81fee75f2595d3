package classical

import (
	"github.com/rs/zerolog"
)

// Service wraps the estimator with structured logging for the API layer.
type Service struct {
	log zerolog.Logger
}

// NewService creates a new classical estimation service
func NewService(log zerolog.Logger) *Service {
	return &Service{
		log: log.With().Str("service", "classical").Logger(),
	}
}

// ComputePFE runs the estimator and logs the outcome.
func (s *Service) ComputePFE(p Params) Result {
	result := ComputePFE(p)

	s.log.Info().
		Int("samples_used", result.SamplesUsed).
		Float64("alpha", result.Alpha).
		Float64("pfe", result.PFE).
		Float64("expected_exposure", result.ExpectedExposure).
		Float64("runtime_ms", result.RuntimeMS).
		Msg("Classical PFE computed")

	return result
}
