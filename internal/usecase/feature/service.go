package feature

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/searchgate/internal/domain"
	domfeature "github.com/kailas-cloud/searchgate/internal/domain/feature"
	"github.com/kailas-cloud/searchgate/internal/domain/indexable"
	"github.com/kailas-cloud/searchgate/internal/metrics"
)

// Activation is the result of switching a feature on or off.
type Activation struct {
	Toggle          domfeature.Toggle
	ReindexRequired bool
}

// Service manages the feature catalog and its persisted on/off flags.
type Service struct {
	repo     Repository
	features []domfeature.Feature
	bySlug   map[string]domfeature.Feature
	defaults map[string]bool
}

// New creates a feature service. features keeps display order; defaults
// apply to features that have no persisted flag yet.
func New(repo Repository, features []domfeature.Feature, defaults map[string]bool) (*Service, error) {
	bySlug := make(map[string]domfeature.Feature, len(features))
	for _, f := range features {
		if err := domfeature.ValidateSlug(f.Slug()); err != nil {
			return nil, fmt.Errorf("register feature: %w", err)
		}
		if _, dup := bySlug[f.Slug()]; dup {
			return nil, fmt.Errorf("register feature %s: %w", f.Slug(), domain.ErrAlreadyExists)
		}
		bySlug[f.Slug()] = f
	}
	return &Service{repo: repo, features: features, bySlug: bySlug, defaults: defaults}, nil
}

// List returns every feature with its current flag.
func (s *Service) List(ctx context.Context) ([]domfeature.Toggle, error) {
	states, err := s.states(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domfeature.Toggle, 0, len(s.features))
	for _, f := range s.features {
		out = append(out, domfeature.NewToggle(ctx, f, states[f.Slug()]))
	}
	return out, nil
}

// Get returns one feature.
func (s *Service) Get(ctx context.Context, slug string) (domfeature.Toggle, error) {
	f, ok := s.bySlug[slug]
	if !ok {
		return domfeature.Toggle{}, fmt.Errorf("feature %s: %w", slug, domain.ErrNotFound)
	}
	states, err := s.states(ctx)
	if err != nil {
		return domfeature.Toggle{}, err
	}
	return domfeature.NewToggle(ctx, f, states[slug]), nil
}

// IsEnabled reports whether a feature is on. Unknown features are off.
func (s *Service) IsEnabled(ctx context.Context, slug string) (bool, error) {
	if _, ok := s.bySlug[slug]; !ok {
		return false, nil
	}
	states, err := s.states(ctx)
	if err != nil {
		return false, err
	}
	return states[slug], nil
}

// SetActive switches a feature on or off. Enabling is refused when the
// feature's requirements are unavailable.
func (s *Service) SetActive(ctx context.Context, slug string, active bool) (Activation, error) {
	f, ok := s.bySlug[slug]
	if !ok {
		return Activation{}, fmt.Errorf("feature %s: %w", slug, domain.ErrNotFound)
	}

	states, err := s.states(ctx)
	if err != nil {
		return Activation{}, err
	}
	wasEnabled := states[slug]

	if active {
		if st := f.RequirementsStatus(ctx); !st.Allows() {
			return Activation{}, fmt.Errorf("feature %s: %w", slug, domain.ErrFeatureUnavailable)
		}
	}

	if err := s.repo.SetState(ctx, slug, active); err != nil {
		return Activation{}, fmt.Errorf("set feature %s: %w", slug, err)
	}
	metrics.FeatureTogglesTotal.WithLabelValues(slug, strconv.FormatBool(active)).Inc()

	return Activation{
		Toggle:          domfeature.NewToggle(ctx, f, active),
		ReindexRequired: active && !wasEnabled && f.RequiresReindex(),
	}, nil
}

// SetupActive runs Setup of every enabled feature against the registry.
func (s *Service) SetupActive(ctx context.Context, r *indexable.Registry) error {
	states, err := s.states(ctx)
	if err != nil {
		return err
	}
	for _, f := range s.features {
		if !states[f.Slug()] {
			continue
		}
		if err := f.Setup(r); err != nil {
			return fmt.Errorf("setup feature %s: %w", f.Slug(), err)
		}
	}
	return nil
}

// states merges persisted flags over configured defaults.
func (s *Service) states(ctx context.Context) (map[string]bool, error) {
	stored, err := s.repo.States(ctx)
	if err != nil {
		return nil, fmt.Errorf("load features: %w", err)
	}
	out := make(map[string]bool, len(s.features))
	for _, f := range s.features {
		slug := f.Slug()
		if v, ok := stored[slug]; ok {
			out[slug] = v
			continue
		}
		out[slug] = s.defaults[slug]
	}
	return out, nil
}
