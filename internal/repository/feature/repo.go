package feature

import (
	"context"
	"fmt"
)

// store is the consumer interface for feature state (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Repo keeps feature on/off flags in one hash, one field per slug.
type Repo struct {
	store store
	key   string
}

// New creates a feature repository. keyPrefix is prepended to the hash key.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, key: keyPrefix + "features"}
}

// States returns the persisted flag of every feature that has one.
func (r *Repo) States(ctx context.Context) (map[string]bool, error) {
	raw, err := r.store.HGetAll(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("load feature states: %w", err)
	}
	out := make(map[string]bool, len(raw))
	for slug, v := range raw {
		out[slug] = v == "1"
	}
	return out, nil
}

// SetState persists the flag of one feature.
func (r *Repo) SetState(ctx context.Context, slug string, enabled bool) error {
	v := "0"
	if enabled {
		v = "1"
	}
	if err := r.store.HSet(ctx, r.key, map[string]string{slug: v}); err != nil {
		return fmt.Errorf("save feature %s: %w", slug, err)
	}
	return nil
}
