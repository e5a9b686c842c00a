package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightwatch-service/internal/domain/entity"
	"flightwatch-service/pkg/logger"
)

// stubProvider is an injectable status source standing in for a real
// flight-data adapter
type stubProvider struct {
	name   string
	status *entity.FlightStatus
	err    error
	calls  int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) FetchStatus(ctx context.Context, flightNumber, date string) (*entity.FlightStatus, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.status, nil
}

func okProvider(name string) *stubProvider {
	return &stubProvider{
		name:   name,
		status: &entity.FlightStatus{FlightNumber: "UA2013", State: entity.StateScheduled},
	}
}

func TestChain_FirstProviderWins(t *testing.T) {
	a := okProvider("primary")
	b := okProvider("secondary")

	chain := NewProviderChain(0, logger.NewNopLogger(), nil)
	chain.Register(a, 100)
	chain.Register(b, 100)

	status, err := chain.Resolve(context.Background(), "UA2013", "2026-02-15")
	require.NoError(t, err)
	assert.Equal(t, "UA2013", status.FlightNumber)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 0, b.calls)
}

func TestChain_FallsThroughOnFailure(t *testing.T) {
	a := &stubProvider{name: "primary", err: errors.New("upstream 500")}
	b := okProvider("secondary")

	chain := NewProviderChain(0, logger.NewNopLogger(), nil)
	chain.Register(a, 100)
	chain.Register(b, 100)

	_, err := chain.Resolve(context.Background(), "UA2013", "2026-02-15")
	require.NoError(t, err)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestChain_ExhaustedBudgetRoutesToNext(t *testing.T) {
	a := okProvider("primary")
	b := okProvider("secondary")

	chain := NewProviderChain(0, logger.NewNopLogger(), nil)
	chain.Register(a, 150)
	chain.Register(b, 100)

	// Burn primary's entire budget
	chain.mu.Lock()
	chain.entries[0].budget.CallsUsed = 150
	chain.mu.Unlock()

	for i := 0; i < 5; i++ {
		_, err := chain.Resolve(context.Background(), "UA2013", "2026-02-15")
		require.NoError(t, err)
	}

	assert.Equal(t, 0, a.calls, "exhausted provider must never be invoked")
	assert.Equal(t, 5, b.calls)
}

func TestChain_ReserveMarginStopsEarly(t *testing.T) {
	a := okProvider("primary")
	b := okProvider("secondary")

	chain := NewProviderChain(10, logger.NewNopLogger(), nil)
	chain.Register(a, 150)
	chain.Register(b, 100)

	chain.mu.Lock()
	chain.entries[0].budget.CallsUsed = 140 // limit - margin
	chain.mu.Unlock()

	_, err := chain.Resolve(context.Background(), "UA2013", "2026-02-15")
	require.NoError(t, err)
	assert.Equal(t, 0, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestChain_OnlySuccessConsumesBudget(t *testing.T) {
	a := &stubProvider{name: "primary", err: errors.New("timeout")}
	b := okProvider("secondary")

	chain := NewProviderChain(0, logger.NewNopLogger(), nil)
	chain.Register(a, 100)
	chain.Register(b, 100)

	_, err := chain.Resolve(context.Background(), "UA2013", "2026-02-15")
	require.NoError(t, err)

	usage := chain.Usage()
	assert.Equal(t, 0, usage[0].CallsUsed)
	assert.Equal(t, 1, usage[1].CallsUsed)
}

func TestChain_AllProvidersFailed(t *testing.T) {
	a := &stubProvider{name: "primary", err: errors.New("down")}
	b := &stubProvider{name: "secondary", err: errors.New("down too")}

	chain := NewProviderChain(0, logger.NewNopLogger(), nil)
	chain.Register(a, 100)
	chain.Register(b, 100)

	_, err := chain.Resolve(context.Background(), "UA2013", "2026-02-15")
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
}

func TestChain_EmptyChainFails(t *testing.T) {
	chain := NewProviderChain(0, logger.NewNopLogger(), nil)
	_, err := chain.Resolve(context.Background(), "UA2013", "2026-02-15")
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
}

func TestChain_BudgetResetsAtDateRollover(t *testing.T) {
	a := okProvider("primary")

	chain := NewProviderChain(0, logger.NewNopLogger(), nil)
	chain.Register(a, 150)

	chain.mu.Lock()
	chain.entries[0].budget.CallsUsed = 150
	chain.mu.Unlock()

	// Exhausted today
	_, err := chain.Resolve(context.Background(), "UA2013", "2026-02-15")
	assert.ErrorIs(t, err, ErrAllProvidersFailed)

	// Advance the chain's clock past midnight
	chain.now = func() time.Time { return time.Now().AddDate(0, 0, 1) }

	status, err := chain.Resolve(context.Background(), "UA2013", "2026-02-16")
	require.NoError(t, err)
	assert.NotNil(t, status)

	usage := chain.Usage()
	assert.Equal(t, 1, usage[0].CallsUsed)
}

// blockingProvider holds every call open until released, so a test can
// park many in-flight resolves on the same budget
type blockingProvider struct {
	mu      sync.Mutex
	calls   int
	proceed chan struct{}
}

func (p *blockingProvider) Name() string { return "blocking" }

func (p *blockingProvider) FetchStatus(ctx context.Context, flightNumber, date string) (*entity.FlightStatus, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	<-p.proceed
	return &entity.FlightStatus{FlightNumber: flightNumber, State: entity.StateScheduled}, nil
}

func (p *blockingProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func TestChain_ConcurrentResolvesNeverOvershootBudget(t *testing.T) {
	p := &blockingProvider{proceed: make(chan struct{})}

	chain := NewProviderChain(0, logger.NewNopLogger(), nil)
	chain.Register(p, 5)

	var wg sync.WaitGroup
	var failures sync.Map
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := chain.Resolve(context.Background(), "UA2013", "2026-02-15"); err != nil {
				failures.Store(i, err)
			}
		}(i)
	}

	// Let the in-flight calls pile up before releasing them all at once
	assert.Eventually(t, func() bool { return p.callCount() == 5 },
		2*time.Second, 5*time.Millisecond)
	close(p.proceed)
	wg.Wait()

	usage := chain.Usage()
	assert.Equal(t, 5, usage[0].CallsUsed, "callsUsedToday must never exceed dailyLimit")
	assert.Equal(t, 5, p.callCount(), "adapter must not be invoked past its budget")

	failed := 0
	failures.Range(func(_, _ any) bool { failed++; return true })
	assert.Equal(t, 5, failed)
}

func TestChain_TinyLimitKeepsItsFullBudget(t *testing.T) {
	a := &stubProvider{name: "primary", err: errors.New("down")}
	b := okProvider("secondary")

	// Margin larger than secondary's whole tier must not starve it out
	chain := NewProviderChain(10, logger.NewNopLogger(), nil)
	chain.Register(a, 150)
	chain.Register(b, 3)

	for i := 0; i < 3; i++ {
		_, err := chain.Resolve(context.Background(), "UA2013", "2026-02-15")
		require.NoError(t, err)
	}
	_, err := chain.Resolve(context.Background(), "UA2013", "2026-02-15")
	assert.ErrorIs(t, err, ErrAllProvidersFailed)

	assert.Equal(t, 3, b.calls)
	assert.Equal(t, 3, chain.Usage()[1].CallsUsed)
}

func TestChain_UsageSnapshot(t *testing.T) {
	a := okProvider("primary")
	chain := NewProviderChain(5, logger.NewNopLogger(), nil)
	chain.Register(a, 150)

	_, err := chain.Resolve(context.Background(), "UA2013", "2026-02-15")
	require.NoError(t, err)

	usage := chain.Usage()
	require.Len(t, usage, 1)
	assert.Equal(t, "primary", usage[0].Provider)
	assert.Equal(t, 1, usage[0].CallsUsed)
	assert.Equal(t, 150, usage[0].DailyLimit)
	assert.Equal(t, 149, usage[0].Remaining)
}
