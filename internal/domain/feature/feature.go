package feature

import (
	"context"
	"fmt"
	"regexp"

	"github.com/kailas-cloud/searchgate/internal/domain/indexable"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9_-]+$`)

// StatusCode grades whether a feature may be enabled.
type StatusCode int

const (
	// StatusOK means every requirement is met.
	StatusOK StatusCode = 0
	// StatusWarning means the feature can run but needs attention (e.g. a reindex).
	StatusWarning StatusCode = 1
	// StatusUnavailable means the feature cannot be enabled.
	StatusUnavailable StatusCode = 2
)

// String returns the wire name of the code.
func (c StatusCode) String() string {
	switch c {
	case StatusOK:
		return "ok"
	case StatusWarning:
		return "warning"
	case StatusUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("status(%d)", int(c))
	}
}

// RequirementsStatus is the outcome of a requirements check.
type RequirementsStatus struct {
	Code     StatusCode
	Messages []string
}

// Allows reports whether the feature may be enabled.
func (s RequirementsStatus) Allows() bool {
	return s.Code != StatusUnavailable
}

// Feature is a named capability that can be switched on and off.
type Feature interface {
	Slug() string
	Title() string
	Summary() string
	RequiresReindex() bool
	RequirementsStatus(ctx context.Context) RequirementsStatus
	// Setup wires the feature into the indexables registry. Called once at startup.
	Setup(r *indexable.Registry) error
}

// Toggle is the persisted view of a feature: its identity plus the on/off flag.
type Toggle struct {
	Slug            string
	Title           string
	Summary         string
	Enabled         bool
	RequiresReindex bool
	Requirements    RequirementsStatus
}

// ValidateSlug checks a feature slug.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("feature slug is required")
	}
	if len(slug) > 64 {
		return fmt.Errorf("feature slug too long (max 64)")
	}
	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("feature slug must be lowercase alphanumeric with underscores and hyphens")
	}
	return nil
}

// NewToggle builds the toggle view of a feature.
func NewToggle(ctx context.Context, f Feature, enabled bool) Toggle {
	return Toggle{
		Slug:            f.Slug(),
		Title:           f.Title(),
		Summary:         f.Summary(),
		Enabled:         enabled,
		RequiresReindex: f.RequiresReindex(),
		Requirements:    f.RequirementsStatus(ctx),
	}
}
