package entity

import (
	"time"

	"gorm.io/gorm"
)

// Airport represents airport reference data, including the IANA timezone
// used to render departure and arrival times in local time
type Airport struct {
	ID        uint
	Code      string
	Name      string
	CityCode  string
	CityName  string
	TzName    string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt
}
