package usecase

import (
	"flightwatch-service/internal/domain/entity"
)

// Delay minutes at or above which a delay risks the itinerary. Coarser
// than the detector's jitter floor on purpose: not every material change
// warrants a rebooking search.
const defaultDelayThreshold = 120

// DisruptionClassifier maps a flight status to a disruption kind
type DisruptionClassifier struct {
	delayThreshold int
}

// NewDisruptionClassifier creates a classifier with the given delay
// threshold in minutes; values below one fall back to the default
func NewDisruptionClassifier(delayThreshold int) *DisruptionClassifier {
	if delayThreshold < 1 {
		delayThreshold = defaultDelayThreshold
	}
	return &DisruptionClassifier{delayThreshold: delayThreshold}
}

// Classify is a pure function over the status: cancellation always wins,
// regardless of the reported delay
func (c *DisruptionClassifier) Classify(status *entity.FlightStatus) entity.DisruptionKind {
	if status.IsCancelled() {
		return entity.CancelledDisruption
	}
	if status.DelayMinutes >= c.delayThreshold {
		return entity.DelayDisruption
	}
	return entity.NoAction
}
