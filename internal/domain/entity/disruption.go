package entity

import (
	"time"
)

// DisruptionKind classifies how severely a status change affects a trip
type DisruptionKind string

const (
	NoAction            DisruptionKind = "no_action"
	DelayDisruption     DisruptionKind = "delay"
	CancelledDisruption DisruptionKind = "cancelled"
)

// DisruptionEvent is handed to the notification and persistence
// collaborators whenever the classifier yields other than NoAction
type DisruptionEvent struct {
	Task       *MonitoringTask
	Kind       DisruptionKind
	Status     *FlightStatus
	DetectedAt time.Time
}
