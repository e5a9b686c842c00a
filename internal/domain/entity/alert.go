package entity

import (
	"time"
)

// AlertType identifies what kind of event produced an alert
type AlertType string

const (
	AlertFlightDelay       AlertType = "flight_delay"
	AlertFlightCancelled   AlertType = "flight_cancelled"
	AlertRebookingProposed AlertType = "rebooking_proposed"
)

// Alert is the persisted record of a disruption or recommendation, kept so
// the dashboard can show it even when the notification channel failed
type Alert struct {
	ID           string                   `bson:"_id,omitempty"`
	TaskID       string                   `bson:"taskId"`
	TripID       string                   `bson:"tripId"`
	Type         AlertType                `bson:"type"`
	Severity     string                   `bson:"severity"`
	FlightNumber string                   `bson:"flightNumber"`
	Message      string                   `bson:"message"`
	Status       *FlightStatus            `bson:"status,omitempty"`
	Rebooking    *RebookingRecommendation `bson:"rebooking,omitempty"`
	Resolved     bool                     `bson:"resolved"`
	ResolvedAt   *time.Time               `bson:"resolvedAt,omitempty"`
	CreatedAt    time.Time                `bson:"createdAt"`
}
