package sink

import (
	"context"

	"onlinesync/internal/models"
)

// Sink is a durable store of profile rows.
//
// Load returns the current rows; an error means the store cannot be used this
// cycle. Apply never fails as a whole: per-record failures are reported in the
// result and the remaining decisions are still applied.
type Sink interface {
	Name() string
	Load(ctx context.Context) ([]models.PersistedRow, error)
	Apply(ctx context.Context, decisions []models.Decision) models.ApplyResult
}

// TagSource reads the tags side table.
type TagSource interface {
	Name() string
	Load(ctx context.Context) (*models.TagTable, error)
}
