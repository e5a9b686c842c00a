package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"flightwatch-service/internal/domain/entity"
	"flightwatch-service/internal/domain/repository"
	"flightwatch-service/pkg/logger"
	"flightwatch-service/pkg/metrics"
)

// ErrAllProvidersFailed means every adapter in the chain was exhausted or
// failed. The poll loop logs it and retries on the next interval.
var ErrAllProvidersFailed = errors.New("all flight data providers failed or exhausted")

type chainEntry struct {
	provider repository.StatusProvider
	budget   *entity.ProviderBudget
}

// ProviderUsage is a point-in-time snapshot of one adapter's budget
type ProviderUsage struct {
	Provider   string
	CallsUsed  int
	DailyLimit int
	Remaining  int
	ResetDate  time.Time
}

// ProviderChain resolves flight status through an ordered list of adapters,
// highest-quality and most-generous-quota first. Each adapter carries its
// own daily call budget; a reserve margin keeps a noisy polling cycle from
// starving the rest of the day. The chain owns the budgets outright and
// serializes every read-modify-write on them.
type ProviderChain struct {
	mu            sync.Mutex
	entries       []*chainEntry
	reserveMargin int
	logger        logger.Logger
	metrics       *metrics.Metrics
	now           func() time.Time
}

// NewProviderChain creates an empty chain with the given reserve margin
func NewProviderChain(reserveMargin int, logger logger.Logger, m *metrics.Metrics) *ProviderChain {
	return &ProviderChain{
		reserveMargin: reserveMargin,
		logger:        logger,
		metrics:       m,
		now:           time.Now,
	}
}

// Register appends an adapter with a fresh daily budget. Registration
// order is fallback order.
func (c *ProviderChain) Register(provider repository.StatusProvider, dailyLimit int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, &chainEntry{
		provider: provider,
		budget:   entity.NewProviderBudget(dailyLimit),
	})
}

// Resolve tries each adapter in order until one returns a status. Budget
// exhaustion and adapter failures both fall through to the next adapter;
// only a successful call consumes budget.
func (c *ProviderChain) Resolve(ctx context.Context, flightNumber, date string) (*entity.FlightStatus, error) {
	c.resetStaleBudgets()

	for _, entry := range c.entries {
		name := entry.provider.Name()

		// The slot is reserved before the call so concurrent resolves
		// cannot all pass the check and overshoot the quota
		used, ok := c.reserve(entry)
		if !ok {
			c.logger.Debug("Provider budget exhausted, falling through",
				"provider", name, "flight", flightNumber)
			if c.metrics != nil {
				c.metrics.ProviderCalls.WithLabelValues(name, "skipped").Inc()
			}
			continue
		}

		status, err := entry.provider.FetchStatus(ctx, flightNumber, date)
		if err != nil {
			c.release(entry)
			c.logger.Warn("Provider fetch failed, falling through",
				"provider", name, "flight", flightNumber, "error", err)
			if c.metrics != nil {
				c.metrics.ProviderCalls.WithLabelValues(name, "failure").Inc()
			}
			continue
		}

		c.logger.Info("Provider fetch succeeded",
			"provider", name, "flight", flightNumber,
			"callsUsedToday", used, "dailyLimit", entry.budget.DailyLimit)
		if c.metrics != nil {
			c.metrics.ProviderCalls.WithLabelValues(name, "success").Inc()
		}
		return status, nil
	}

	c.logger.Warn("All providers failed", "flight", flightNumber, "date", date)
	return nil, ErrAllProvidersFailed
}

// Usage returns a snapshot of every adapter's budget, in chain order
func (c *ProviderChain) Usage() []ProviderUsage {
	c.mu.Lock()
	defer c.mu.Unlock()

	usage := make([]ProviderUsage, 0, len(c.entries))
	for _, entry := range c.entries {
		usage = append(usage, ProviderUsage{
			Provider:   entry.provider.Name(),
			CallsUsed:  entry.budget.CallsUsed,
			DailyLimit: entry.budget.DailyLimit,
			Remaining:  entry.budget.Remaining(),
			ResetDate:  entry.budget.ResetDate,
		})
	}
	return usage
}

func (c *ProviderChain) resetStaleBudgets() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for _, entry := range c.entries {
		if entry.budget.ResetIfStale(now) {
			c.logger.Info("Reset daily call budget",
				"provider", entry.provider.Name(), "dailyLimit", entry.budget.DailyLimit)
		}
	}
}

// reserve claims one budget slot under the lock, returning the count after
// the claim. The margin collapses to zero for adapters whose daily limit is
// smaller than the margin itself, so a tight free tier is not starved out
// of its few calls.
func (c *ProviderChain) reserve(entry *chainEntry) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	margin := c.reserveMargin
	if margin >= entry.budget.DailyLimit {
		margin = 0
	}
	if entry.budget.CallsUsed >= entry.budget.DailyLimit-margin {
		return entry.budget.CallsUsed, false
	}
	entry.budget.CallsUsed++
	return entry.budget.CallsUsed, true
}

// release returns a reserved slot after a failed call; only successful
// calls count against the daily quota
func (c *ProviderChain) release(entry *chainEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry.budget.CallsUsed > 0 {
		entry.budget.CallsUsed--
	}
}
