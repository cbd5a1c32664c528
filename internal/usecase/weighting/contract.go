package weighting

import (
	"context"

	domweighting "github.com/kailas-cloud/searchgate/internal/domain/weighting"
)

// Repository defines the storage contract for weighting settings.
type Repository interface {
	Load(ctx context.Context) (settings domweighting.Settings, found bool, err error)
	Replace(ctx context.Context, settings domweighting.Settings) error
}
