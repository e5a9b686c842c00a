package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"flightwatch-service/internal/domain/entity"
	"flightwatch-service/internal/domain/repository"
	"flightwatch-service/pkg/logger"
	"flightwatch-service/pkg/metrics"
	"flightwatch-service/pkg/utils"
)

// StatusResolver is what the monitor needs from the provider chain
type StatusResolver interface {
	Resolve(ctx context.Context, flightNumber, date string) (*entity.FlightStatus, error)
}

// MonitorConfig tunes the poll loop
type MonitorConfig struct {
	// CycleInterval is how often the loop scans for due tasks
	CycleInterval time.Duration
	// DefaultPollInterval is assigned to tasks registered without one
	DefaultPollInterval time.Duration
	// InterTaskDelay throttles successive provider calls inside one cycle;
	// the free-tier providers are the shared constrained resource
	InterTaskDelay time.Duration
	// GracePeriod bounds how long Stop waits for an in-flight cycle
	GracePeriod time.Duration
}

func (c *MonitorConfig) applyDefaults() {
	if c.CycleInterval <= 0 {
		c.CycleInterval = 30 * time.Second
	}
	if c.DefaultPollInterval <= 0 {
		c.DefaultPollInterval = 15 * time.Minute
	}
	if c.InterTaskDelay <= 0 {
		c.InterTaskDelay = 2 * time.Second
	}
	if c.GracePeriod <= 0 {
		c.GracePeriod = 30 * time.Second
	}
}

// FlightMonitor owns the set of tracked flights and drives the poll loop:
// resolve status through the chain, detect material changes, classify
// disruptions and hand recommendations to the notification and persistence
// collaborators. The loop runs as a single long-lived background goroutine
// and never terminates on a cycle failure.
type FlightMonitor struct {
	taskRepo    repository.MonitoringTaskRepository
	alertRepo   repository.AlertRepository
	notifier    repository.Notifier
	airlineRepo repository.AirlineRepository
	resolver    StatusResolver
	detector    *ChangeDetector
	classifier  *DisruptionClassifier
	finder      *AlternativeFinder
	ranker      *RecommendationRanker
	logger      logger.Logger
	metrics     *metrics.Metrics
	cfg         MonitorConfig

	mu         sync.Mutex
	running    bool
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	lastPoll   map[string]time.Time
	lastStatus map[string]*entity.FlightStatus
}

// NewFlightMonitor creates a new flight monitor
func NewFlightMonitor(
	taskRepo repository.MonitoringTaskRepository,
	alertRepo repository.AlertRepository,
	notifier repository.Notifier,
	airlineRepo repository.AirlineRepository,
	resolver StatusResolver,
	detector *ChangeDetector,
	classifier *DisruptionClassifier,
	finder *AlternativeFinder,
	ranker *RecommendationRanker,
	logger logger.Logger,
	m *metrics.Metrics,
	cfg MonitorConfig,
) *FlightMonitor {
	cfg.applyDefaults()
	return &FlightMonitor{
		taskRepo:    taskRepo,
		alertRepo:   alertRepo,
		notifier:    notifier,
		airlineRepo: airlineRepo,
		resolver:    resolver,
		detector:    detector,
		classifier:  classifier,
		finder:      finder,
		ranker:      ranker,
		logger:      logger,
		metrics:     m,
		cfg:         cfg,
		lastPoll:    make(map[string]time.Time),
		lastStatus:  make(map[string]*entity.FlightStatus),
	}
}

// AddTask registers a flight for monitoring; it is picked up on the next
// poll cycle
func (m *FlightMonitor) AddTask(ctx context.Context, task *entity.MonitoringTask) error {
	task.Enabled = true
	if task.PollInterval <= 0 {
		task.PollInterval = m.cfg.DefaultPollInterval
	}
	if err := m.taskRepo.Create(ctx, task); err != nil {
		return fmt.Errorf("failed to create monitoring task: %w", err)
	}
	m.logger.Info("Monitoring task added",
		"task", task.ID, "flight", task.FlightNumber, "date", task.FlightDate)
	return nil
}

// DisableTask pauses polling for a task at the next poll boundary. The
// last-known status is kept so re-enabling resumes change detection
// without re-alerting on the already-known state.
func (m *FlightMonitor) DisableTask(ctx context.Context, taskID string) error {
	if err := m.taskRepo.SetEnabled(ctx, taskID, false); err != nil {
		return fmt.Errorf("failed to disable task: %w", err)
	}
	m.logger.Info("Monitoring task disabled", "task", taskID)
	return nil
}

// EnableTask resumes polling for a paused task
func (m *FlightMonitor) EnableTask(ctx context.Context, taskID string) error {
	if err := m.taskRepo.SetEnabled(ctx, taskID, true); err != nil {
		return fmt.Errorf("failed to enable task: %w", err)
	}
	m.logger.Info("Monitoring task enabled", "task", taskID)
	return nil
}

// Start launches the poll loop. Calling Start on a running monitor is a
// no-op.
func (m *FlightMonitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		m.logger.Warn("Monitor already running, ignoring start")
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true

	m.wg.Add(1)
	go m.loop(loopCtx)
	m.logger.Info("Flight monitor started",
		"cycleInterval", m.cfg.CycleInterval, "interTaskDelay", m.cfg.InterTaskDelay)
}

// Stop cancels the loop and waits up to the grace period for the in-flight
// cycle to finish
func (m *FlightMonitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	cancel := m.cancel
	m.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("Flight monitor stopped")
	case <-time.After(m.cfg.GracePeriod):
		m.logger.Warn("Flight monitor stop timed out", "gracePeriod", m.cfg.GracePeriod)
	}
}

func (m *FlightMonitor) loop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.CycleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.runCycle(ctx)
		}
	}
}

// RunCycle polls every enabled task that is due. Exported so callers that
// own their own scheduling (and tests) can drive cycles directly.
func (m *FlightMonitor) RunCycle(ctx context.Context) {
	m.runCycle(ctx)
}

func (m *FlightMonitor) runCycle(ctx context.Context) {
	start := time.Now()

	tasks, err := m.taskRepo.ListEnabled(ctx)
	if err != nil {
		m.logger.Error("Failed to list enabled tasks, retrying next cycle", "error", err)
		if m.metrics != nil {
			m.metrics.ErrorsCount.WithLabelValues("list_tasks").Inc()
		}
		return
	}

	polled := 0
	for _, task := range tasks {
		if ctx.Err() != nil {
			return
		}
		if !m.due(task, start) {
			continue
		}

		if polled > 0 {
			// Deliberate throttle between provider calls, not a sleep for
			// luck: the free tiers rate-limit aggressively.
			select {
			case <-ctx.Done():
				return
			case <-time.After(m.cfg.InterTaskDelay):
			}
		}

		m.pollTask(ctx, task)
		polled++
	}

	if m.metrics != nil {
		m.metrics.PollCycles.Inc()
		m.metrics.CycleDuration.Observe(time.Since(start).Seconds())
	}
	if polled > 0 {
		m.logger.Info("Poll cycle finished", "tasksPolled", polled, "elapsed", time.Since(start))
	}
}

func (m *FlightMonitor) due(task *entity.MonitoringTask, now time.Time) bool {
	m.mu.Lock()
	last, seen := m.lastPoll[task.ID]
	m.mu.Unlock()

	if !seen && task.LastPolledAt != nil {
		last = *task.LastPolledAt
		seen = true
	}
	if !seen {
		return true
	}

	interval := task.PollInterval
	if interval <= 0 {
		interval = m.cfg.DefaultPollInterval
	}
	return now.Sub(last) >= interval
}

func (m *FlightMonitor) pollTask(ctx context.Context, task *entity.MonitoringTask) {
	log := m.logger.With("task", task.ID, "flight", task.FlightNumber)

	status, err := m.resolver.Resolve(ctx, task.FlightNumber, task.FlightDate)
	m.recordPoll(task.ID, time.Now())
	if err != nil {
		// Never fatal to the loop; the next interval retries
		log.Error("Status resolution failed", "error", err)
		if m.metrics != nil {
			m.metrics.ErrorsCount.WithLabelValues("resolve_status").Inc()
		}
		return
	}

	previous := m.previousStatus(task)
	if !m.detector.HasChanged(previous, status) {
		log.Debug("No material change", "state", status.State, "delayMinutes", status.DelayMinutes)
		return
	}

	m.storeStatus(ctx, task, status, log)

	if previous == nil {
		// Baseline observation, not a disruption
		log.Info("Baseline status recorded", "state", status.State, "delayMinutes", status.DelayMinutes)
		return
	}

	kind := m.classifier.Classify(status)
	if m.metrics != nil {
		m.metrics.StatusChanges.Inc()
	}
	log.Info("Material status change detected",
		"state", status.State, "delayMinutes", status.DelayMinutes, "disruption", kind)

	if kind == entity.NoAction {
		return
	}

	event := &entity.DisruptionEvent{
		Task:       task,
		Kind:       kind,
		Status:     m.enrichCarrier(ctx, status),
		DetectedAt: time.Now(),
	}
	m.dispatchDisruption(ctx, event, log)
}

func (m *FlightMonitor) dispatchDisruption(ctx context.Context, event *entity.DisruptionEvent, log logger.Logger) {
	if m.metrics != nil {
		m.metrics.Disruptions.WithLabelValues(string(event.Kind)).Inc()
	}

	if err := m.notifier.SendDisruption(ctx, event); err != nil {
		// Surfaced but non-fatal; the alert record below keeps the
		// disruption visible on the dashboard
		log.Error("Disruption notification failed", "error", err)
		if m.metrics != nil {
			m.metrics.ErrorsCount.WithLabelValues("notify_disruption").Inc()
		}
	}

	alert := disruptionAlert(event)
	if err := m.alertRepo.Record(ctx, alert); err != nil {
		log.Error("Failed to record disruption alert", "error", err)
		if m.metrics != nil {
			m.metrics.ErrorsCount.WithLabelValues("record_alert").Inc()
		}
	}

	rec := m.ranker.Rank(event.Task, event.Status, m.finder.FindAlternatives(ctx, event.Task, event.Status))
	log.Info("Rebooking recommendation ready",
		"alternatives", len(rec.Alternatives), "reason", rec.Reason, "deadline", rec.Deadline)
	if m.metrics != nil {
		m.metrics.Recommendations.Inc()
	}

	if err := m.notifier.SendRecommendation(ctx, event, rec); err != nil {
		log.Error("Recommendation notification failed", "error", err)
		if m.metrics != nil {
			m.metrics.ErrorsCount.WithLabelValues("notify_recommendation").Inc()
		}
	}

	rebookingAlert := &entity.Alert{
		TaskID:       event.Task.ID,
		TripID:       event.Task.TripID,
		Type:         entity.AlertRebookingProposed,
		Severity:     "info",
		FlightNumber: event.Task.FlightNumber,
		Message:      rec.Reason,
		Rebooking:    rec,
		CreatedAt:    time.Now(),
	}
	if err := m.alertRepo.Record(ctx, rebookingAlert); err != nil {
		log.Error("Failed to record rebooking alert", "error", err)
		if m.metrics != nil {
			m.metrics.ErrorsCount.WithLabelValues("record_alert").Inc()
		}
	}
}

func (m *FlightMonitor) previousStatus(task *entity.MonitoringTask) *entity.FlightStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if status, ok := m.lastStatus[task.ID]; ok {
		return status
	}
	// Fall back to the persisted snapshot so a restart or a re-enabled
	// task does not re-alert on the already-known state
	return task.LastStatus
}

func (m *FlightMonitor) storeStatus(ctx context.Context, task *entity.MonitoringTask, status *entity.FlightStatus, log logger.Logger) {
	m.mu.Lock()
	m.lastStatus[task.ID] = status
	m.mu.Unlock()

	if err := m.taskRepo.UpdateLastStatus(ctx, task.ID, status, status.CapturedAt); err != nil {
		log.Error("Failed to persist last status", "error", err)
		if m.metrics != nil {
			m.metrics.ErrorsCount.WithLabelValues("update_status").Inc()
		}
	}
}

func (m *FlightMonitor) recordPoll(taskID string, at time.Time) {
	m.mu.Lock()
	m.lastPoll[taskID] = at
	m.mu.Unlock()
}

// enrichCarrier swaps a bare IATA carrier code for the airline display
// name when the reference table knows it
func (m *FlightMonitor) enrichCarrier(ctx context.Context, status *entity.FlightStatus) *entity.FlightStatus {
	if m.airlineRepo == nil || len(status.Carrier) > 2 {
		return status
	}
	airline, err := m.airlineRepo.GetByCode(ctx, utils.CarrierCode(status.FlightNumber))
	if err != nil || airline.Name == "" {
		return status
	}
	enriched := *status
	enriched.Carrier = airline.Name
	return &enriched
}

func disruptionAlert(event *entity.DisruptionEvent) *entity.Alert {
	alert := &entity.Alert{
		TaskID:       event.Task.ID,
		TripID:       event.Task.TripID,
		FlightNumber: event.Task.FlightNumber,
		Status:       event.Status,
		CreatedAt:    event.DetectedAt,
	}
	switch event.Kind {
	case entity.CancelledDisruption:
		alert.Type = entity.AlertFlightCancelled
		alert.Severity = "critical"
		alert.Message = fmt.Sprintf("Flight %s has been cancelled", event.Task.FlightNumber)
	default:
		alert.Type = entity.AlertFlightDelay
		alert.Severity = "warning"
		alert.Message = fmt.Sprintf("Flight %s is delayed by %d minutes",
			event.Task.FlightNumber, event.Status.DelayMinutes)
	}
	return alert
}
