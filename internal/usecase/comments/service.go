package comments

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchgate/internal/domain"
	domcomment "github.com/kailas-cloud/searchgate/internal/domain/comment"
	"github.com/kailas-cloud/searchgate/internal/domain/indexable"
	"github.com/kailas-cloud/searchgate/internal/domain/query"
	"github.com/kailas-cloud/searchgate/internal/features"
	"github.com/kailas-cloud/searchgate/internal/gate"
	"github.com/kailas-cloud/searchgate/internal/logger"
	"github.com/kailas-cloud/searchgate/internal/metrics"
)

const (
	backendIndex = "index"
	backendStore = "store"
)

// Result is the outcome of a comment search.
type Result struct {
	Hits     []domcomment.Hit
	Decision gate.Decision
}

// Service runs comment searches through the integration gate.
type Service struct {
	index      Index
	store      Store
	features   FeatureChecker
	indexables Indexables
	siteURL    string
	filter     domcomment.ArgsFilter
}

// New creates a comments service. filter may be nil.
func New(
	index Index, store Store, feats FeatureChecker, ixs Indexables,
	siteURL string, filter domcomment.ArgsFilter,
) *Service {
	return &Service{
		index:      index,
		store:      store,
		features:   feats,
		indexables: ixs,
		siteURL:    siteURL,
		filter:     filter,
	}
}

// Search finds comments matching term on published posts of the indexable
// post types. The gate picks the search index or the default store.
func (s *Service) Search(ctx context.Context, qc query.Context, term string) (Result, error) {
	if strings.TrimSpace(term) == "" {
		return Result{}, fmt.Errorf("search term is required: %w", domain.ErrInvalidRequest)
	}

	postTypes, err := s.subtypes(indexable.SlugPost)
	if err != nil {
		return Result{}, err
	}

	q := domcomment.NewSearchQuery(term, postTypes)
	if s.filter != nil {
		q = s.filter(q)
	}
	if err := q.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	enabled, err := s.features.IsEnabled(ctx, features.SlugComments)
	if err != nil {
		return Result{}, fmt.Errorf("check comments feature: %w", err)
	}

	decision := gate.Evaluate(qc, enabled, q.HasSearchTerm())
	metrics.GateDecisionsTotal.WithLabelValues(
		features.SlugComments, metrics.GateResult(decision.Integrate), string(decision.Reason),
	).Inc()

	backend, searcher := backendStore, Searcher(s.store)
	if decision.Integrate {
		backend, searcher = backendIndex, s.index
	}

	start := time.Now()
	found, err := searcher.Search(ctx, q)
	metrics.CommentSearchDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
	if err != nil {
		return Result{}, fmt.Errorf("search comments (%s): %w", backend, err)
	}

	logger.FromContext(ctx).Debug("comment search",
		zap.String("backend", backend),
		zap.String("reason", string(decision.Reason)),
		zap.Int("hits", len(found)),
	)

	hits := make([]domcomment.Hit, 0, len(found))
	for _, c := range found {
		hits = append(hits, domcomment.ToHit(s.siteURL, c))
	}
	return Result{Hits: hits, Decision: decision}, nil
}

// Ingest saves comments to the default store and, while the comment
// indexable is registered, syncs the indexable ones to the search index.
func (s *Service) Ingest(ctx context.Context, comments ...domcomment.Comment) (indexed int, err error) {
	if len(comments) == 0 {
		return 0, nil
	}
	now := time.Now()
	for i := range comments {
		if comments[i].ID <= 0 || comments[i].PostID <= 0 {
			return 0, fmt.Errorf("comment %d: ids must be positive: %w", comments[i].ID, domain.ErrInvalidRequest)
		}
		if !comments[i].Status.IsValid() {
			return 0, fmt.Errorf("comment %d: invalid status %q: %w", comments[i].ID, comments[i].Status, domain.ErrInvalidRequest)
		}
		if comments[i].Type == "" {
			comments[i].Type = "comment"
		}
		if comments[i].Date.IsZero() {
			comments[i].Date = now
		}
	}

	if err := s.store.Save(ctx, comments...); err != nil {
		return 0, fmt.Errorf("ingest comments: %w", err)
	}

	types, err := s.subtypes(indexable.SlugComment)
	if errors.Is(err, domain.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return s.indexOf(ctx, types, comments)
}

// Reindex rebuilds the search index from the default store.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	types, err := s.subtypes(indexable.SlugComment)
	if err != nil {
		return 0, err
	}
	all, err := s.store.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("reindex comments: %w", err)
	}
	return s.indexOf(ctx, types, all)
}

func (s *Service) indexOf(ctx context.Context, types []string, comments []domcomment.Comment) (int, error) {
	batch := make([]domcomment.Comment, 0, len(comments))
	for _, c := range comments {
		if slices.Contains(types, c.Type) {
			batch = append(batch, c)
		}
	}
	if err := s.index.Index(ctx, batch...); err != nil {
		return 0, fmt.Errorf("index comments: %w", err)
	}
	return len(batch), nil
}

func (s *Service) subtypes(slug string) ([]string, error) {
	ix, err := s.indexables.Get(slug)
	if err != nil {
		return nil, fmt.Errorf("resolve %s indexable: %w", slug, err)
	}
	return ix.IndexableSubtypes(), nil
}
