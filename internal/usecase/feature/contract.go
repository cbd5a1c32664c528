package feature

import "context"

// Repository defines the storage contract for feature flags.
type Repository interface {
	States(ctx context.Context) (map[string]bool, error)
	SetState(ctx context.Context, slug string, enabled bool) error
}
