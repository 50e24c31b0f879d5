package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/insights/internal/model"
)

// ErrProfileNotFound is returned when neither the table nor the fallback knows the symbol
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository is the persistent side of the profile lookup
type ProfileRepository interface {
	GetProfile(ctx context.Context, symbol string) (*model.Profile, error)
	UpsertProfile(ctx context.Context, p *model.Profile) error
}

// ProfileFetcher loads a profile from an upstream source
type ProfileFetcher interface {
	Profile(ctx context.Context, symbol string) (*model.Profile, error)
}

// ProfileStore looks profiles up in memory, then in the repository, then upstream.
// Upstream hits are written back to the repository.
type ProfileStore struct {
	repo     ProfileRepository
	fallback ProfileFetcher
	cache    *cache.Cache
	logger   zerolog.Logger
}

// NewProfileStore creates a profile store. repo and fallback may be nil.
func NewProfileStore(repo ProfileRepository, fallback ProfileFetcher, ttl time.Duration) *ProfileStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ProfileStore{
		repo:     repo,
		fallback: fallback,
		cache:    cache.New(ttl, 2*ttl),
		logger:   log.With().Str("component", "profile_store").Logger(),
	}
}

// Profile returns metadata for symbol
func (s *ProfileStore) Profile(ctx context.Context, symbol string) (*model.Profile, error) {
	key := strings.ToUpper(strings.TrimSpace(symbol))
	if cached, found := s.cache.Get(key); found {
		return cached.(*model.Profile), nil
	}

	if s.repo != nil {
		p, err := s.repo.GetProfile(ctx, key)
		if err != nil {
			s.logger.Warn().Err(err).Str("symbol", key).Msg("Profile lookup failed")
		} else if p != nil {
			s.cache.Set(key, p, cache.DefaultExpiration)
			return p, nil
		}
	}

	if s.fallback == nil {
		return nil, ErrProfileNotFound
	}
	p, err := s.fallback.Profile(ctx, key)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}

	if s.repo != nil {
		if err := s.repo.UpsertProfile(ctx, p); err != nil {
			s.logger.Warn().Err(err).Str("symbol", key).Msg("Failed to store profile")
		}
	}
	s.cache.Set(key, p, cache.DefaultExpiration)
	return p, nil
}
