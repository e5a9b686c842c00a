package repository

import (
	"context"

	"flightwatch-service/internal/domain/entity"
)

// Notifier delivers engine outputs to the user's notification target.
// A delivery failure is surfaced to the caller but never rolls back the
// already-computed recommendation.
type Notifier interface {
	SendDisruption(ctx context.Context, event *entity.DisruptionEvent) error
	SendRecommendation(ctx context.Context, event *entity.DisruptionEvent, rec *entity.RebookingRecommendation) error
}
