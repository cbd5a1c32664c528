// Package indexable holds the registry of content kinds that can be sent to
// the search index.
package indexable

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kailas-cloud/searchgate/internal/domain"
)

const (
	// SlugPost is the post indexable.
	SlugPost = "post"
	// SlugComment is the comment indexable.
	SlugComment = "comment"
)

// Indexable is a content kind known to the search index.
type Indexable interface {
	Slug() string
	// IndexableSubtypes lists the sub-types that are indexed (post types, comment types).
	IndexableSubtypes() []string
}

// Registry maps a slug to its indexable. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	items map[string]Indexable
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]Indexable)}
}

// Register adds an indexable. Slugs are unique.
func (r *Registry) Register(ix Indexable) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	slug := ix.Slug()
	if slug == "" {
		return fmt.Errorf("register indexable: empty slug")
	}
	if _, ok := r.items[slug]; ok {
		return fmt.Errorf("register indexable %s: %w", slug, domain.ErrAlreadyExists)
	}
	r.items[slug] = ix
	return nil
}

// Get returns the indexable registered under slug.
func (r *Registry) Get(slug string) (Indexable, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ix, ok := r.items[slug]
	if !ok {
		return nil, fmt.Errorf("indexable %s: %w", slug, domain.ErrNotFound)
	}
	return ix, nil
}

// Slugs returns registered slugs in sorted order.
func (r *Registry) Slugs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.items))
	for s := range r.items {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Static is an indexable with a fixed list of sub-types.
type Static struct {
	slug     string
	subtypes []string
}

// NewStatic creates a fixed indexable.
func NewStatic(slug string, subtypes ...string) *Static {
	cp := make([]string, len(subtypes))
	copy(cp, subtypes)
	return &Static{slug: slug, subtypes: cp}
}

// Slug returns the indexable slug.
func (s *Static) Slug() string { return s.slug }

// IndexableSubtypes returns a copy of the sub-types.
func (s *Static) IndexableSubtypes() []string {
	out := make([]string, len(s.subtypes))
	copy(out, s.subtypes)
	return out
}
