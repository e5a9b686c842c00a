package repository

import (
	"context"
	"time"

	"flightwatch-service/internal/domain/entity"
)

// MonitoringTaskRepository defines the interface for monitoring task operations
type MonitoringTaskRepository interface {
	Create(ctx context.Context, task *entity.MonitoringTask) error
	FindByID(ctx context.Context, id string) (*entity.MonitoringTask, error)
	ListEnabled(ctx context.Context) ([]*entity.MonitoringTask, error)
	SetEnabled(ctx context.Context, id string, enabled bool) error
	UpdateLastStatus(ctx context.Context, id string, status *entity.FlightStatus, polledAt time.Time) error
}
