package interfaces

import (
	"context"

	"onlinesync/internal/models"
)

type SchedulerInterface interface {
	Init(ctx context.Context) error
	Stop()
	Last() (models.Summary, bool)
}
