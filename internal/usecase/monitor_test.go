package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightwatch-service/internal/domain/entity"
	"flightwatch-service/pkg/logger"
)

type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]*entity.MonitoringTask
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*entity.MonitoringTask)}
}

func (r *fakeTaskRepo) Create(ctx context.Context, task *entity.MonitoringTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.ID] = task
	return nil
}

func (r *fakeTaskRepo) FindByID(ctx context.Context, id string) (*entity.MonitoringTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tasks[id], nil
}

func (r *fakeTaskRepo) ListEnabled(ctx context.Context) ([]*entity.MonitoringTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var enabled []*entity.MonitoringTask
	for _, task := range r.tasks {
		if task.Enabled {
			enabled = append(enabled, task)
		}
	}
	return enabled, nil
}

func (r *fakeTaskRepo) SetEnabled(ctx context.Context, id string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if task, ok := r.tasks[id]; ok {
		task.Enabled = enabled
	}
	return nil
}

func (r *fakeTaskRepo) UpdateLastStatus(ctx context.Context, id string, status *entity.FlightStatus, polledAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if task, ok := r.tasks[id]; ok {
		task.LastStatus = status
		task.LastPolledAt = &polledAt
	}
	return nil
}

type fakeAlertRepo struct {
	mu     sync.Mutex
	alerts []*entity.Alert
}

func (r *fakeAlertRepo) Record(ctx context.Context, alert *entity.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, alert)
	return nil
}

func (r *fakeAlertRepo) FindUnresolvedByTrip(ctx context.Context, tripID string) ([]*entity.Alert, error) {
	return nil, nil
}

func (r *fakeAlertRepo) Resolve(ctx context.Context, id string) error { return nil }

func (r *fakeAlertRepo) recorded() []*entity.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Alert, len(r.alerts))
	copy(out, r.alerts)
	return out
}

type fakeNotifier struct {
	mu              sync.Mutex
	disruptions     []*entity.DisruptionEvent
	recommendations []*entity.RebookingRecommendation
}

func (n *fakeNotifier) SendDisruption(ctx context.Context, event *entity.DisruptionEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.disruptions = append(n.disruptions, event)
	return nil
}

func (n *fakeNotifier) SendRecommendation(ctx context.Context, event *entity.DisruptionEvent, rec *entity.RebookingRecommendation) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.recommendations = append(n.recommendations, rec)
	return nil
}

// scriptedResolver returns statuses in sequence, sticking on the last one
type scriptedResolver struct {
	mu       sync.Mutex
	statuses []*entity.FlightStatus
	err      error
	calls    int
}

func (r *scriptedResolver) Resolve(ctx context.Context, flightNumber, date string) (*entity.FlightStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	idx := r.calls - 1
	if idx >= len(r.statuses) {
		idx = len(r.statuses) - 1
	}
	return r.statuses[idx], nil
}

func (r *scriptedResolver) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func monitorUnderTest(taskRepo *fakeTaskRepo, alertRepo *fakeAlertRepo, notifier *fakeNotifier, resolver StatusResolver) *FlightMonitor {
	log := logger.NewNopLogger()
	return NewFlightMonitor(
		taskRepo,
		alertRepo,
		notifier,
		nil,
		resolver,
		NewChangeDetector(15),
		NewDisruptionClassifier(120),
		NewAlternativeFinder(&stubSearcher{}, 6*time.Hour, log),
		NewRecommendationRanker(2*time.Hour),
		log,
		nil,
		MonitorConfig{
			CycleInterval:  time.Hour, // cycles are driven manually in tests
			InterTaskDelay: time.Millisecond,
			GracePeriod:    time.Second,
		},
	)
}

func watchedTask() *entity.MonitoringTask {
	return &entity.MonitoringTask{
		ID:               "task-1",
		TripID:           "trip-1",
		UserID:           "user-1",
		NotifyEmail:      "traveler@example.com",
		FlightNumber:     "UA2013",
		FlightDate:       "2026-02-15",
		DepartureAirport: "EWR",
		ArrivalAirport:   "LAX",
		PollInterval:     time.Nanosecond,
		Enabled:          true,
	}
}

func scheduledStatus() *entity.FlightStatus {
	return &entity.FlightStatus{
		FlightNumber: "UA2013",
		Carrier:      "United Airlines",
		State:        entity.StateScheduled,
		CapturedAt:   time.Now(),
	}
}

func cancelledStatus() *entity.FlightStatus {
	return &entity.FlightStatus{
		FlightNumber: "UA2013",
		Carrier:      "United Airlines",
		State:        entity.StateCancelled,
		CapturedAt:   time.Now(),
	}
}

func TestMonitor_BaselineIsNotReported(t *testing.T) {
	taskRepo := newFakeTaskRepo()
	alertRepo := &fakeAlertRepo{}
	notifier := &fakeNotifier{}
	resolver := &scriptedResolver{statuses: []*entity.FlightStatus{scheduledStatus()}}

	m := monitorUnderTest(taskRepo, alertRepo, notifier, resolver)
	require.NoError(t, m.AddTask(context.Background(), watchedTask()))

	m.RunCycle(context.Background())

	assert.Empty(t, notifier.disruptions)
	assert.Empty(t, alertRepo.recorded())

	// Baseline is persisted so a restart resumes from here
	task, _ := taskRepo.FindByID(context.Background(), "task-1")
	require.NotNil(t, task.LastStatus)
	assert.Equal(t, entity.StateScheduled, task.LastStatus.State)
}

func TestMonitor_CancellationDispatchesPipeline(t *testing.T) {
	taskRepo := newFakeTaskRepo()
	alertRepo := &fakeAlertRepo{}
	notifier := &fakeNotifier{}
	resolver := &scriptedResolver{statuses: []*entity.FlightStatus{scheduledStatus(), cancelledStatus()}}

	m := monitorUnderTest(taskRepo, alertRepo, notifier, resolver)
	require.NoError(t, m.AddTask(context.Background(), watchedTask()))

	m.RunCycle(context.Background()) // baseline
	m.RunCycle(context.Background()) // cancellation

	require.Len(t, notifier.disruptions, 1)
	assert.Equal(t, entity.CancelledDisruption, notifier.disruptions[0].Kind)
	require.Len(t, notifier.recommendations, 1)
	assert.Equal(t, "No alternatives found in window", notifier.recommendations[0].Reason)

	alerts := alertRepo.recorded()
	require.Len(t, alerts, 2)
	assert.Equal(t, entity.AlertFlightCancelled, alerts[0].Type)
	assert.Equal(t, entity.AlertRebookingProposed, alerts[1].Type)
}

func TestMonitor_MinorDelayChangeIsNotADisruption(t *testing.T) {
	taskRepo := newFakeTaskRepo()
	alertRepo := &fakeAlertRepo{}
	notifier := &fakeNotifier{}

	delayed := scheduledStatus()
	delayed.DelayMinutes = 30 // material change, below rebooking threshold
	resolver := &scriptedResolver{statuses: []*entity.FlightStatus{scheduledStatus(), delayed}}

	m := monitorUnderTest(taskRepo, alertRepo, notifier, resolver)
	require.NoError(t, m.AddTask(context.Background(), watchedTask()))

	m.RunCycle(context.Background())
	m.RunCycle(context.Background())

	assert.Empty(t, notifier.disruptions)
	assert.Empty(t, alertRepo.recorded())

	task, _ := taskRepo.FindByID(context.Background(), "task-1")
	assert.Equal(t, 30, task.LastStatus.DelayMinutes)
}

func TestMonitor_DisableStopsPollingAndReenableDoesNotRealert(t *testing.T) {
	taskRepo := newFakeTaskRepo()
	alertRepo := &fakeAlertRepo{}
	notifier := &fakeNotifier{}
	resolver := &scriptedResolver{statuses: []*entity.FlightStatus{cancelledStatus()}}

	m := monitorUnderTest(taskRepo, alertRepo, notifier, resolver)
	require.NoError(t, m.AddTask(context.Background(), watchedTask()))

	m.RunCycle(context.Background()) // baseline (cancelled is the first observation)
	baselineCalls := resolver.callCount()
	assert.Equal(t, 1, baselineCalls)

	require.NoError(t, m.DisableTask(context.Background(), "task-1"))
	m.RunCycle(context.Background())
	m.RunCycle(context.Background())
	assert.Equal(t, baselineCalls, resolver.callCount(), "disabled task must not be fetched")

	require.NoError(t, m.EnableTask(context.Background(), "task-1"))
	m.RunCycle(context.Background())
	assert.Equal(t, baselineCalls+1, resolver.callCount())

	// Same cancelled status as before disabling: no new alert
	assert.Empty(t, notifier.disruptions)
	assert.Empty(t, alertRepo.recorded())
}

func TestMonitor_ResolverFailureKeepsLoopAlive(t *testing.T) {
	taskRepo := newFakeTaskRepo()
	alertRepo := &fakeAlertRepo{}
	notifier := &fakeNotifier{}
	resolver := &scriptedResolver{err: ErrAllProvidersFailed}

	m := monitorUnderTest(taskRepo, alertRepo, notifier, resolver)
	require.NoError(t, m.AddTask(context.Background(), watchedTask()))

	m.RunCycle(context.Background())
	m.RunCycle(context.Background())

	assert.Equal(t, 2, resolver.callCount(), "failed resolution retries next cycle")
	assert.Empty(t, alertRepo.recorded())

	task, _ := taskRepo.FindByID(context.Background(), "task-1")
	assert.Nil(t, task.LastStatus, "no partial status write on failure")
}

func TestMonitor_StartIsIdempotentAndStopIsGraceful(t *testing.T) {
	taskRepo := newFakeTaskRepo()
	alertRepo := &fakeAlertRepo{}
	notifier := &fakeNotifier{}
	resolver := &scriptedResolver{statuses: []*entity.FlightStatus{scheduledStatus()}}

	m := monitorUnderTest(taskRepo, alertRepo, notifier, resolver)

	ctx := context.Background()
	m.Start(ctx)
	m.Start(ctx) // no-op, must not spawn a second loop
	m.Stop()
	m.Stop() // stopping twice is safe too
}
