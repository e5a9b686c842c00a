package entity

import (
	"time"
)

// ProviderBudget tracks the rolling daily call budget for one provider
// adapter. It is owned exclusively by the provider chain that created it
// and is never shared across chains.
type ProviderBudget struct {
	CallsUsed  int
	DailyLimit int
	ResetDate  time.Time // midnight of the local date the counter belongs to
}

// NewProviderBudget creates a fresh budget for today
func NewProviderBudget(dailyLimit int) *ProviderBudget {
	return &ProviderBudget{
		DailyLimit: dailyLimit,
		ResetDate:  truncateToDate(time.Now()),
	}
}

// ResetIfStale zeroes the counter when the wall-clock date has advanced
// past the stored reset date
func (b *ProviderBudget) ResetIfStale(now time.Time) bool {
	today := truncateToDate(now)
	if today.After(b.ResetDate) {
		b.CallsUsed = 0
		b.ResetDate = today
		return true
	}
	return false
}

// Remaining returns the calls left before the hard daily limit
func (b *ProviderBudget) Remaining() int {
	return b.DailyLimit - b.CallsUsed
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
