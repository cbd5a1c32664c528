package weighting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/searchgate/internal/db"
	domweighting "github.com/kailas-cloud/searchgate/internal/domain/weighting"
)

// store is the consumer interface for settings persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Repo persists the weighting settings as one JSON document under one key,
// so every save replaces the whole configuration in a single write.
type Repo struct {
	store store
	key   string
}

// New creates a weighting repository. keyPrefix is prepended to the key.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, key: keyPrefix + "weighting"}
}

// Load returns the stored settings. found is false when nothing was saved yet.
func (r *Repo) Load(ctx context.Context) (settings domweighting.Settings, found bool, err error) {
	data, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domweighting.Settings{}, false, nil
		}
		return domweighting.Settings{}, false, fmt.Errorf("load weighting: %w", err)
	}

	if err := json.Unmarshal(data, &settings); err != nil {
		return domweighting.Settings{}, false, fmt.Errorf("decode weighting: %w", err)
	}
	return settings, true, nil
}

// Replace overwrites the stored settings.
func (r *Repo) Replace(ctx context.Context, settings domweighting.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode weighting: %w", err)
	}
	if err := r.store.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("save weighting: %w", err)
	}
	return nil
}
