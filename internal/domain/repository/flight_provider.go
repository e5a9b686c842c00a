package repository

import (
	"context"
	"time"

	"flightwatch-service/internal/domain/entity"
)

// StatusProvider is the single-operation capability every external
// flight-data source exposes. Adapters are interchangeable; callers depend
// on nothing beyond this interface and configuration.
type StatusProvider interface {
	Name() string
	FetchStatus(ctx context.Context, flightNumber, date string) (*entity.FlightStatus, error)
}

// AlternativeSearcher finds same-route candidate flights departing within
// a window around a reference departure time
type AlternativeSearcher interface {
	SearchAlternatives(ctx context.Context, origin, destination, date string, around time.Time, window time.Duration) ([]entity.Alternative, error)
}
