package entity

import (
	"time"
)

// MonitoringTask represents one flight under watch for a user trip.
// Tasks are disabled, not deleted, when a trip completes or tracking is
// cancelled, so the last-known status survives a pause.
type MonitoringTask struct {
	ID               string        `bson:"_id,omitempty"`
	TripID           string        `bson:"tripId"`
	UserID           string        `bson:"userId"`
	NotifyEmail      string        `bson:"notifyEmail"`
	FlightNumber     string        `bson:"flightNumber"`
	FlightDate       string        `bson:"flightDate"` // YYYY-MM-DD
	DepartureAirport string        `bson:"departureAirport"`
	ArrivalAirport   string        `bson:"arrivalAirport"`
	PollInterval     time.Duration `bson:"pollIntervalNs"`
	AutoRebook       bool          `bson:"autoRebook"`
	Enabled          bool          `bson:"enabled"`
	LastStatus       *FlightStatus `bson:"lastStatus,omitempty"`
	LastPolledAt     *time.Time    `bson:"lastPolledAt,omitempty"`
	CreatedAt        time.Time     `bson:"createdAt"`
	UpdatedAt        time.Time     `bson:"updatedAt"`
}
