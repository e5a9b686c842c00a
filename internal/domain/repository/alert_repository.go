package repository

import (
	"context"

	"flightwatch-service/internal/domain/entity"
)

// AlertRepository defines the interface for alert persistence
type AlertRepository interface {
	Record(ctx context.Context, alert *entity.Alert) error
	FindUnresolvedByTrip(ctx context.Context, tripID string) ([]*entity.Alert, error)
	Resolve(ctx context.Context, id string) error
}
