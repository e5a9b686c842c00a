package usecase

import (
	"context"
	"strings"
	"time"

	"flightwatch-service/internal/domain/entity"
	"flightwatch-service/internal/domain/repository"
	"flightwatch-service/pkg/logger"
)

// Half-width of the departure window searched around the original flight
const defaultSearchWindow = 6 * time.Hour

// AlternativeFinder queries for same-route replacement flights around the
// disrupted flight's scheduled departure
type AlternativeFinder struct {
	searcher repository.AlternativeSearcher
	window   time.Duration
	logger   logger.Logger
}

// NewAlternativeFinder creates a finder over the given searcher; a
// non-positive window falls back to the default ±6 hours
func NewAlternativeFinder(searcher repository.AlternativeSearcher, window time.Duration, logger logger.Logger) *AlternativeFinder {
	if window <= 0 {
		window = defaultSearchWindow
	}
	return &AlternativeFinder{
		searcher: searcher,
		window:   window,
		logger:   logger,
	}
}

// FindAlternatives returns candidate replacements for the disrupted task,
// excluding the disrupted flight itself. A search failure degrades to an
// empty list and is logged; it never prevents the disruption itself from
// being reported.
func (f *AlternativeFinder) FindAlternatives(ctx context.Context, task *entity.MonitoringTask, status *entity.FlightStatus) []entity.Alternative {
	around := status.ScheduledDeparture
	if around.IsZero() {
		// Providers without schedule data (the live-feed fallback) leave
		// this unset; anchor the window on the flight date instead.
		if parsed, err := time.Parse("2006-01-02", task.FlightDate); err == nil {
			around = parsed.Add(12 * time.Hour)
		} else {
			around = time.Now()
		}
	}

	candidates, err := f.searcher.SearchAlternatives(ctx, task.DepartureAirport, task.ArrivalAirport, task.FlightDate, around, f.window)
	if err != nil {
		f.logger.Error("Alternative search failed, continuing without candidates",
			"task", task.ID, "flight", task.FlightNumber, "error", err)
		return nil
	}

	alternatives := make([]entity.Alternative, 0, len(candidates))
	for _, candidate := range candidates {
		if sameFlight(candidate.FlightNumber, task.FlightNumber) {
			continue
		}
		if candidate.Departure.Before(around.Add(-f.window)) || candidate.Departure.After(around.Add(f.window)) {
			continue
		}
		alternatives = append(alternatives, candidate)
	}

	f.logger.Info("Alternative search finished",
		"task", task.ID, "flight", task.FlightNumber,
		"candidates", len(candidates), "inWindow", len(alternatives))
	return alternatives
}

func sameFlight(a, b string) bool {
	normalize := func(s string) string {
		return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "/", ""))
	}
	return normalize(a) == normalize(b)
}
