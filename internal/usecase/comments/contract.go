package comments

import (
	"context"

	domcomment "github.com/kailas-cloud/searchgate/internal/domain/comment"
	"github.com/kailas-cloud/searchgate/internal/domain/indexable"
)

// Searcher answers a comment query. Both the search index and the default
// comment store implement it.
type Searcher interface {
	Search(ctx context.Context, q domcomment.Query) ([]domcomment.Comment, error)
}

// Store is the default comment store.
type Store interface {
	Searcher
	All(ctx context.Context) ([]domcomment.Comment, error)
	Save(ctx context.Context, comments ...domcomment.Comment) error
}

// Index is the search-backed comment path.
type Index interface {
	Searcher
	Index(ctx context.Context, comments ...domcomment.Comment) error
}

// FeatureChecker reports whether a feature is switched on.
type FeatureChecker interface {
	IsEnabled(ctx context.Context, slug string) (bool, error)
}

// Indexables resolves registered indexables.
type Indexables interface {
	Get(slug string) (indexable.Indexable, error)
}
