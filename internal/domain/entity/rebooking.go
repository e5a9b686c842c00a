package entity

import (
	"time"
)

// Alternative is a candidate replacement flight considered during
// rebooking. Alternatives are computed per recommendation request and are
// never persisted on their own.
type Alternative struct {
	FlightNumber   string    `bson:"flightNumber"`
	Carrier        string    `bson:"carrier"`
	Departure      time.Time `bson:"departure"`
	Arrival        time.Time `bson:"arrival"`
	AvailableSeats int       `bson:"availableSeats"`
	PriceDeltaUSD  float64   `bson:"priceDeltaUsd"`
	Score          float64   `bson:"score"`
	Chosen         bool      `bson:"chosen"`
}

// RebookingRecommendation is the ranked decision output for a disrupted
// task. If Alternatives is non-empty, exactly one element is marked chosen
// unless policy rejected them all; Recommended then points at that element.
type RebookingRecommendation struct {
	TaskID       string        `bson:"taskId"`
	FlightNumber string        `bson:"flightNumber"`
	Recommended  *Alternative  `bson:"recommended,omitempty"`
	Reason       string        `bson:"reason"`
	Alternatives []Alternative `bson:"alternatives"`
	Deadline     time.Time     `bson:"deadline"`
	CreatedAt    time.Time     `bson:"createdAt"`
}
