package utils

import (
	"fmt"
	"strings"
	"time"
)

// Layouts seen across the free flight-data providers. AeroDataBox returns
// "2026-02-15 10:00Z", AviationStack returns RFC3339 with offset.
var providerTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04Z",
	"2006-01-02 15:04",
}

// ParseProviderTime parses a timestamp string from any supported provider
func ParseProviderTime(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range providerTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// CarrierCode extracts the two-letter IATA carrier prefix from a flight
// number like "UA2013" or "UA/2013"
func CarrierCode(flightNumber string) string {
	cleaned := strings.ReplaceAll(strings.TrimSpace(flightNumber), "/", "")
	if len(cleaned) < 2 {
		return strings.ToUpper(cleaned)
	}
	return strings.ToUpper(cleaned[:2])
}

// FlightDigits returns the numeric part of a flight number
func FlightDigits(flightNumber string) string {
	cleaned := strings.ReplaceAll(strings.TrimSpace(flightNumber), "/", "")
	if len(cleaned) <= 2 {
		return ""
	}
	return cleaned[2:]
}

// FormatInLocation renders a timestamp in the named IANA timezone,
// falling back to UTC when the zone cannot be loaded
func FormatInLocation(t time.Time, tzName string) string {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02 15:04 MST")
}

// DelayBetween returns the whole minutes from scheduled to actual,
// negative when actual is earlier
func DelayBetween(scheduled, actual time.Time) int {
	return int(actual.Sub(scheduled).Minutes())
}
