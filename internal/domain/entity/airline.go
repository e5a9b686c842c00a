package entity

import (
	"time"

	"gorm.io/gorm"
)

// Airline represents an airline reference entity, keyed by two-letter
// IATA carrier code
type Airline struct {
	ID        uint
	Code      string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt
}
