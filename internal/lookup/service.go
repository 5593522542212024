package lookup

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Client is the raw backend surface wrapped by Service.
type Client interface {
	All(ctx context.Context) ([]PopulationCenter, error)
	ByID(ctx context.Context, id CenterID) (*PopulationCenter, error)
	Route(ctx context.Context, fromID, toID CenterID) (*Route, error)
}

// ServiceConfig holds configuration for the directory service.
type ServiceConfig struct {
	// Client is the backend client.
	Client Client

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long the full center dump stays fresh (default: 5 minutes).
	CacheTTL time.Duration

	// StaleIfErrorTTL allows serving a stale dump on backend errors (default: 15 minutes).
	StaleIfErrorTTL time.Duration
}

// Service serves population center searches from an in-memory copy of the
// backend's full dump. The backend exposes no server-side filtering, so
// every search is a substring scan over the dump; the dump is cached with a
// TTL and refreshed at most once at a time.
type Service struct {
	client          Client
	logger          zerolog.Logger
	cacheTTL        time.Duration
	staleIfErrorTTL time.Duration

	group singleflight.Group

	mu        sync.RWMutex
	centers   []PopulationCenter
	fetchedAt time.Time
	expiresAt time.Time
}

// NewService creates a new directory service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 15 * time.Minute
	}

	return &Service{
		client:          cfg.Client,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		staleIfErrorTTL: staleIfErrorTTL,
	}
}

// All returns the full population center dump, from cache when fresh.
func (s *Service) All(ctx context.Context) ([]PopulationCenter, error) {
	s.mu.RLock()
	if s.centers != nil && time.Now().Before(s.expiresAt) {
		centers := s.centers
		s.mu.RUnlock()
		return centers, nil
	}
	s.mu.RUnlock()

	return s.refresh(ctx)
}

// refresh fetches the dump from the backend. Concurrent callers share a
// single in-flight fetch.
func (s *Service) refresh(ctx context.Context) ([]PopulationCenter, error) {
	v, err, _ := s.group.Do("centers", func() (interface{}, error) {
		centers, err := s.client.All(ctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to fetch population centers")

			// Stale-if-error: keep answering from the last good dump for a while.
			s.mu.RLock()
			defer s.mu.RUnlock()
			if s.centers != nil && time.Now().Before(s.fetchedAt.Add(s.staleIfErrorTTL)) {
				s.logger.Warn().
					Time("fetched_at", s.fetchedAt).
					Msg("serving stale population center dump due to backend error")
				return s.centers, nil
			}
			return nil, err
		}

		now := time.Now()
		s.mu.Lock()
		s.centers = centers
		s.fetchedAt = now
		s.expiresAt = now.Add(s.cacheTTL)
		s.mu.Unlock()

		s.logger.Debug().
			Int("center_count", len(centers)).
			Msg("cached population center dump")

		return centers, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]PopulationCenter), nil
}

// Search returns centers whose display name contains the query,
// case-insensitively, preserving dump ordering.
func (s *Service) Search(ctx context.Context, query string) ([]PopulationCenter, error) {
	centers, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	term := strings.ToLower(query)
	var matches []PopulationCenter
	for _, c := range centers {
		if strings.Contains(strings.ToLower(c.Name), term) {
			matches = append(matches, c)
		}
	}
	return matches, nil
}

// ByID returns a single center, preferring the cached dump over a
// round-trip.
func (s *Service) ByID(ctx context.Context, id CenterID) (*PopulationCenter, error) {
	s.mu.RLock()
	for i := range s.centers {
		if s.centers[i].ID == id {
			c := s.centers[i]
			s.mu.RUnlock()
			return &c, nil
		}
	}
	s.mu.RUnlock()

	return s.client.ByID(ctx, id)
}

// Route computes a route between two centers.
func (s *Service) Route(ctx context.Context, fromID, toID CenterID) (*Route, error) {
	return s.client.Route(ctx, fromID, toID)
}
