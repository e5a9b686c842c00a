package usecase

import (
	"flightwatch-service/internal/domain/entity"
)

// Minutes of delay movement below which a change is treated as jitter
const defaultDelayJitter = 15

// ChangeDetector decides whether a freshly fetched status differs
// materially from the last known one. Sub-jitter delay wobble and
// unrelated metadata are deliberately ignored to avoid notification
// flooding.
type ChangeDetector struct {
	delayJitter int
}

// NewChangeDetector creates a detector with the given jitter floor in
// minutes; values below one fall back to the default
func NewChangeDetector(delayJitter int) *ChangeDetector {
	if delayJitter < 1 {
		delayJitter = defaultDelayJitter
	}
	return &ChangeDetector{delayJitter: delayJitter}
}

// HasChanged reports whether current is a material change over previous.
// The first observation of a flight always counts as a change; it
// establishes the baseline.
func (d *ChangeDetector) HasChanged(previous, current *entity.FlightStatus) bool {
	if previous == nil {
		return true
	}
	if previous.State != current.State {
		return true
	}
	if abs(current.DelayMinutes-previous.DelayMinutes) >= d.delayJitter {
		return true
	}
	if gateChanged(previous.DepartureGate, current.DepartureGate) {
		return true
	}
	if gateChanged(previous.ArrivalGate, current.ArrivalGate) {
		return true
	}
	return false
}

func gateChanged(old, new *string) bool {
	if old == nil && new == nil {
		return false
	}
	if old == nil || new == nil {
		return true
	}
	return *old != *new
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
