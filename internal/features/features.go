// Package features declares the built-in feature toggles.
package features

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/searchgate/internal/domain/feature"
	"github.com/kailas-cloud/searchgate/internal/domain/indexable"
)

const (
	// SlugSearch is the post search feature.
	SlugSearch = "search"
	// SlugComments is the comment search feature.
	SlugComments = "comments"
)

// Builtin returns every built-in feature in display order.
func Builtin(comments *Comments) []feature.Feature {
	return []feature.Feature{
		&Search{},
		comments,
	}
}

// Search integrates post search queries.
type Search struct{}

// Slug returns "search".
func (*Search) Slug() string { return SlugSearch }

// Title returns the display name.
func (*Search) Title() string { return "Post Search" }

// Summary returns the one-line description.
func (*Search) Summary() string {
	return "Instantly find the content you're looking for. The first time."
}

// RequiresReindex is false: posts are always indexed.
func (*Search) RequiresReindex() bool { return false }

// RequirementsStatus is always OK.
func (*Search) RequirementsStatus(context.Context) feature.RequirementsStatus {
	return feature.RequirementsStatus{Code: feature.StatusOK}
}

// Setup is a no-op; the post indexable is registered by the core.
func (*Search) Setup(*indexable.Registry) error { return nil }

// Comments integrates comment search queries.
type Comments struct {
	commentTypes []string
}

// NewComments creates the comments feature. Empty commentTypes defaults to ["comment"].
func NewComments(commentTypes []string) *Comments {
	if len(commentTypes) == 0 {
		commentTypes = []string{"comment"}
	}
	return &Comments{commentTypes: commentTypes}
}

// Slug returns "comments".
func (*Comments) Slug() string { return SlugComments }

// Title returns the display name.
func (*Comments) Title() string { return "Comments" }

// Summary returns the one-line description.
func (*Comments) Summary() string {
	return "Improve comment search relevancy and query performance."
}

// RequiresReindex is true: comments are not indexed until the feature is on.
func (*Comments) RequiresReindex() bool { return true }

// RequirementsStatus reports a warning because enabling requires a reindex.
func (*Comments) RequirementsStatus(context.Context) feature.RequirementsStatus {
	return feature.RequirementsStatus{Code: feature.StatusWarning}
}

// Setup registers the comment indexable.
func (c *Comments) Setup(r *indexable.Registry) error {
	if err := r.Register(indexable.NewStatic(indexable.SlugComment, c.commentTypes...)); err != nil {
		return fmt.Errorf("comments feature setup: %w", err)
	}
	return nil
}
