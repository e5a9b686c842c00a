package entity

import (
	"time"
)

// FlightState is the lifecycle state of a flight as reported by a provider
type FlightState string

const (
	StateScheduled FlightState = "scheduled"
	StateActive    FlightState = "active"
	StateLanded    FlightState = "landed"
	StateCancelled FlightState = "cancelled"
	StateDiverted  FlightState = "diverted"
	StateIncident  FlightState = "incident"
)

// FlightStatus is a normalized snapshot of a flight at a point in time.
// A new poll produces a new instance; instances are never mutated.
type FlightStatus struct {
	FlightNumber       string      `bson:"flightNumber"`
	Carrier            string      `bson:"carrier"`
	State              FlightState `bson:"state"`
	ScheduledDeparture time.Time   `bson:"scheduledDeparture"`
	ActualDeparture    *time.Time  `bson:"actualDeparture,omitempty"`
	ScheduledArrival   time.Time   `bson:"scheduledArrival"`
	ActualArrival      *time.Time  `bson:"actualArrival,omitempty"`
	DepartureAirport   string      `bson:"departureAirport"`
	ArrivalAirport     string      `bson:"arrivalAirport"`
	DepartureGate      *string     `bson:"departureGate,omitempty"`
	ArrivalGate        *string     `bson:"arrivalGate,omitempty"`
	DelayMinutes       int         `bson:"delayMinutes"`
	CapturedAt         time.Time   `bson:"capturedAt"`
}

// IsCancelled reports whether the flight has been cancelled upstream
func (s *FlightStatus) IsCancelled() bool {
	return s.State == StateCancelled
}
