package parks

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ngmaloney/pota-planner/internal/models"
	"github.com/ngmaloney/pota-planner/internal/option"
	"github.com/ngmaloney/pota-planner/internal/timeconv"
	"github.com/ngmaloney/pota-planner/internal/tzlookup"
)

// Service adds lazy timezone resolution on top of the repository.
type Service struct {
	repo     *Repository
	resolver tzlookup.Resolver
	logger   *zap.SugaredLogger
}

// NewService creates a park service. resolver may be nil, in which case
// timezones are never filled in.
func NewService(repo *Repository, resolver tzlookup.Resolver, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{repo: repo, resolver: resolver, logger: logger}
}

// Repository exposes the underlying store.
func (s *Service) Repository() *Repository {
	return s.repo
}

// ParkByReference reads a park and, the first time it is seen with
// coordinates but no timezone, resolves and stores one. Resolver failures
// leave the timezone empty; the read itself still succeeds.
func (s *Service) ParkByReference(ctx context.Context, ref string) (option.Option[models.Park], error) {
	found, err := s.repo.GetByReference(ctx, ref)
	if err != nil {
		return found, err
	}
	park, ok := found.Get()
	if !ok || park.Timezone != "" || !park.HasCoordinates() || s.resolver == nil {
		return found, nil
	}

	tz, err := s.resolve(ctx, *park.Latitude, *park.Longitude)
	if err != nil {
		s.logger.Warnf("timezone lookup failed for %s: %v", ref, err)
		return found, nil
	}

	written, err := s.repo.SetTimezoneIfAbsent(ctx, ref, tz)
	if err != nil {
		s.logger.Warnf("storing timezone for %s: %v", ref, err)
		return found, nil
	}
	if written {
		park.Timezone = tz
		return option.Some(park), nil
	}

	// Someone else stored one first; theirs wins.
	return s.repo.GetByReference(ctx, ref)
}

// resolve calls the resolver, turning panics and unusable zone names into
// errors.
func (s *Service) resolve(ctx context.Context, lat, lon float64) (tz string, err error) {
	defer func() {
		if r := recover(); r != nil {
			tz, err = "", fmt.Errorf("resolver panic: %v", r)
		}
	}()

	tz, err = s.resolver.Resolve(ctx, lat, lon)
	if err != nil {
		return "", err
	}
	if !timeconv.ValidZone(tz) {
		return "", fmt.Errorf("resolver returned unknown zone %q", tz)
	}
	return tz, nil
}

// Search passes through to the repository.
func (s *Service) Search(ctx context.Context, f models.ParkSearchFilters) (models.ParkSearchResult, error) {
	return s.repo.Search(ctx, f)
}

// ToggleFavorite passes through to the repository.
func (s *Service) ToggleFavorite(ctx context.Context, ref string) (option.Option[models.FavoriteToggle], error) {
	return s.repo.ToggleFavorite(ctx, ref)
}
