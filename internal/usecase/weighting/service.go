package weighting

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/searchgate/internal/domain"
	domweighting "github.com/kailas-cloud/searchgate/internal/domain/weighting"
	"github.com/kailas-cloud/searchgate/internal/metrics"
)

// Service reads and replaces the weighting settings.
type Service struct {
	repo    Repository
	catalog domweighting.Catalog
	initial domweighting.Settings
}

// New creates a weighting service. initial is served until the first save;
// it is normalized against the catalog.
func New(repo Repository, catalog domweighting.Catalog, initial domweighting.Settings) *Service {
	return &Service{repo: repo, catalog: catalog, initial: initial.Normalize(catalog)}
}

// Catalog returns the weightable fields.
func (s *Service) Catalog() domweighting.Catalog {
	return s.catalog
}

// Get returns the current settings with a weight for every catalog field.
func (s *Service) Get(ctx context.Context) (domweighting.Settings, error) {
	stored, found, err := s.repo.Load(ctx)
	if err != nil {
		return domweighting.Settings{}, fmt.Errorf("get weighting: %w", err)
	}
	if !found {
		return s.initial.Clone(), nil
	}
	return stored.Normalize(s.catalog), nil
}

// Save validates every post type and replaces the stored settings in one
// write. Any violation rejects the whole submission and nothing is stored.
// The returned settings are the canonical persisted form.
func (s *Service) Save(ctx context.Context, in domweighting.Settings) (domweighting.Settings, error) {
	if in.MetaMode == "" {
		in.MetaMode = domweighting.MetaModeAuto
	}
	if err := in.Validate(s.catalog); err != nil {
		metrics.WeightingSavesTotal.WithLabelValues("invalid").Inc()
		return domweighting.Settings{}, fmt.Errorf("%w: %w", domain.ErrInvalidWeighting, err)
	}

	canonical := in.Normalize(s.catalog)
	if err := s.repo.Replace(ctx, canonical); err != nil {
		metrics.WeightingSavesTotal.WithLabelValues("error").Inc()
		return domweighting.Settings{}, fmt.Errorf("save weighting: %w", err)
	}
	metrics.WeightingSavesTotal.WithLabelValues("ok").Inc()

	return s.Get(ctx)
}
