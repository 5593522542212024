package featureflags

import (
	"context"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the feature flags service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger
}

// Service provides typed access to feature flags. All accessors are
// nil-safe and fall back to the documented default.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a new feature flags service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}
}

// ConcurrentVerificationEnabled reports whether both endpoints verify in
// parallel. Default: true.
func (s *Service) ConcurrentVerificationEnabled(ctx context.Context) bool {
	return s.boolFlag(ctx, FlagConcurrentVerification, true)
}

// StaleResponseGuardEnabled reports whether superseded search responses
// are discarded. Default: true.
func (s *Service) StaleResponseGuardEnabled(ctx context.Context) bool {
	return s.boolFlag(ctx, FlagStaleResponseGuard, true)
}

func (s *Service) boolFlag(ctx context.Context, key string, defaultValue bool) bool {
	if s == nil || s.repo == nil {
		return defaultValue
	}
	flag, err := s.repo.GetFlag(ctx, key)
	if err != nil {
		return defaultValue
	}
	return flag.BoolValue(defaultValue)
}

// All returns every stored flag.
func (s *Service) All(ctx context.Context) (map[string]*Flag, error) {
	return s.repo.GetAllFlags(ctx)
}

// Set stores a flag value.
func (s *Service) Set(ctx context.Context, key string, value interface{}) (*Flag, error) {
	flag := &Flag{Key: key, Value: value}
	if err := s.repo.SetFlag(ctx, flag); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("flag", key).
		Interface("value", value).
		Msg("feature flag updated")
	return flag, nil
}
