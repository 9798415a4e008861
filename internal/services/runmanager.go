package services

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/doeshing/faultline/internal/domain"
	"github.com/doeshing/faultline/internal/ports"
)

const (
	defaultIncidents   = 20
	defaultConcurrency = 4
	defaultSeed        = 7
)

// RunManager owns the fan-out run lifecycle: it generates a synthetic incident
// queue, drains it with a worker pool, and keeps a dashboard-ready snapshot of
// queue, active workers, results, and rolling metrics. At most one run is in
// flight at a time.
type RunManager struct {
	runner ports.IncidentRunner
	env    ports.EnvReporter
	traces ports.TraceRepository
	logger ports.Logger

	maxLogLines  int
	historyLimit int

	mu     sync.Mutex
	state  domain.RunState
	queue  []domain.Incident
	active map[int]domain.Incident
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRunManager builds an idle manager.
func NewRunManager(runner ports.IncidentRunner, env ports.EnvReporter, traces ports.TraceRepository, logger ports.Logger, settings domain.DashboardSettings) *RunManager {
	maxLogLines := settings.MaxLogLines
	if maxLogLines <= 0 {
		maxLogLines = 200
	}
	historyLimit := settings.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = 400
	}
	m := &RunManager{
		runner:       runner,
		env:          env,
		traces:       traces,
		logger:       logger,
		maxLogLines:  maxLogLines,
		historyLimit: historyLimit,
	}
	m.state = m.initialState()
	return m
}

func (m *RunManager) initialState() domain.RunState {
	return domain.RunState{
		Status: domain.RunIdle,
		Env:    m.env.Status(),
	}
}

// Start begins a new run. It returns false with a message when a run is
// already in progress.
func (m *RunManager) Start(cfg domain.RunConfig) (bool, string) {
	cfg = withRunDefaults(cfg)

	m.mu.Lock()
	if m.state.Status == domain.RunRunning {
		m.mu.Unlock()
		return false, "a run is already in progress"
	}

	now := time.Now()
	m.state = m.initialState()
	m.state.Status = domain.RunRunning
	m.state.RunID = now.Format("20060102-150405")
	m.state.StartedAt = &now
	m.state.Config = cfg
	m.queue = nil
	m.active = make(map[int]domain.Incident)

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	done := make(chan struct{})
	m.done = done
	m.mu.Unlock()

	go m.runJob(ctx, cfg, done)
	return true, "started"
}

// Stop requests cancellation of the in-flight run.
func (m *RunManager) Stop() bool {
	m.mu.Lock()
	running := m.state.Status == domain.RunRunning
	cancel := m.cancel
	m.mu.Unlock()

	if !running || cancel == nil {
		return false
	}
	cancel()
	m.log("Stop requested by user")
	return true
}

// Wait blocks until the current run (if any) finishes. Used by the CLI demo
// path and by tests.
func (m *RunManager) Wait() {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Snapshot returns a deep copy of the current run state.
func (m *RunManager) Snapshot() domain.RunState {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.state
	snap.Queue = append([]domain.Incident(nil), m.queue...)
	snap.Active = m.activeItemsLocked()
	snap.Completed = append([]domain.ResultRow(nil), m.state.Completed...)
	snap.Logs = append([]domain.LogEntry(nil), m.state.Logs...)
	snap.Env = make(domain.EnvStatus, len(m.state.Env))
	for k, v := range m.state.Env {
		snap.Env[k] = v
	}
	return snap
}

func withRunDefaults(cfg domain.RunConfig) domain.RunConfig {
	if cfg.Mode == "" {
		cfg.Mode = "optimized"
	}
	if cfg.Incidents <= 0 {
		cfg.Incidents = defaultIncidents
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.Seed == 0 {
		cfg.Seed = defaultSeed
	}
	if cfg.StrategyHint == "" {
		if cfg.Mode == "baseline" {
			cfg.StrategyHint = domain.BaselineHint
		} else {
			cfg.StrategyHint = domain.OptimizedHint
		}
	}
	return cfg
}

func (m *RunManager) runJob(ctx context.Context, cfg domain.RunConfig, done chan struct{}) {
	defer close(done)

	incidents := generateIncidents(cfg.Incidents, cfg.Seed)

	m.mu.Lock()
	m.queue = incidents
	m.state.Summary.Total = len(incidents)
	runID := m.state.RunID
	m.updateMetricsLocked(time.Now())
	m.mu.Unlock()

	m.log(fmt.Sprintf("Run %s started: mode=%s incidents=%d concurrency=%d", runID, cfg.Mode, cfg.Incidents, cfg.Concurrency))

	var wg sync.WaitGroup
	for workerID := 1; workerID <= cfg.Concurrency; workerID++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			m.workerLoop(ctx, workerID, runID, cfg)
		}(workerID)
	}
	wg.Wait()

	m.mu.Lock()
	now := time.Now()
	m.state.FinishedAt = &now
	if ctx.Err() != nil {
		m.state.Status = domain.RunCancelled
	} else {
		m.state.Status = domain.RunCompleted
	}
	status := m.state.Status
	m.updateMetricsLocked(now)
	m.mu.Unlock()

	m.log(fmt.Sprintf("Run %s %s", runID, status))
}

func (m *RunManager) workerLoop(ctx context.Context, workerID int, runID string, cfg domain.RunConfig) {
	for {
		if ctx.Err() != nil {
			return
		}
		inc, ok := m.takeNext(workerID)
		if !ok {
			return
		}

		traceKey := fmt.Sprintf("%s:%s", runID, inc.ID)
		if cfg.SimulateLatency > 0 {
			select {
			case <-time.After(cfg.SimulateLatency):
			case <-ctx.Done():
				m.mu.Lock()
				delete(m.active, workerID)
				m.mu.Unlock()
				return
			}
		}
		started := time.Now()
		result, err := m.runner.Resolve(ctx, domain.IncidentRequest{
			StrategyHint:    cfg.StrategyHint,
			ErrorReport:     inc.Scenario.ErrorReport(),
			Scenario:        inc.Scenario,
			Policy:          cfg.Policy,
			TargetURL:       cfg.TargetURL,
			TargetContainer: cfg.TargetContainer,
			TraceKey:        traceKey,
			DryRun:          true,
		})
		latency := time.Since(started)

		row := domain.ResultRow{
			IncidentID:  inc.ID,
			WorkerID:    workerID,
			Scenario:    inc.Scenario,
			Severity:    inc.Severity,
			ServiceUp:   result.ServiceUp,
			StepCount:   result.StepCount,
			LatencyS:    round2(latency.Seconds()),
			MaxRiskSeen: result.MaxRiskSeen,
			TraceKey:    traceKey,
		}
		if err != nil {
			row.ServiceUp = false
			row.StepCount = 999
			row.MaxRiskSeen = domain.RiskUnknown
			row.Error = err.Error()
		}

		m.complete(workerID, row)
		m.appendTrace(runID, inc, row, latency)
	}
}

func (m *RunManager) takeNext(workerID int) (domain.Incident, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queue) == 0 {
		return domain.Incident{}, false
	}
	inc := m.queue[0]
	m.queue = m.queue[1:]
	m.active[workerID] = inc
	m.updateMetricsLocked(time.Now())
	return inc, true
}

func (m *RunManager) complete(workerID int, row domain.ResultRow) {
	m.mu.Lock()
	delete(m.active, workerID)
	m.state.Completed = append(m.state.Completed, row)
	if len(m.state.Completed) > m.historyLimit {
		m.state.Completed = m.state.Completed[len(m.state.Completed)-m.historyLimit:]
	}
	m.updateMetricsLocked(time.Now())
	m.mu.Unlock()

	status := "FAILED"
	if row.ServiceUp {
		status = "FIXED"
	}
	m.log(fmt.Sprintf("worker-%d %s %s %s steps=%d risk=%s",
		workerID, row.IncidentID, row.Scenario, status, row.StepCount, row.MaxRiskSeen))
}

func (m *RunManager) appendTrace(runID string, inc domain.Incident, row domain.ResultRow, latency time.Duration) {
	if m.traces == nil {
		return
	}
	err := m.traces.Append(domain.TraceRecord{
		RunID:       runID,
		IncidentID:  inc.ID,
		Scenario:    inc.Scenario,
		Severity:    inc.Severity,
		ServiceUp:   row.ServiceUp,
		StepCount:   row.StepCount,
		LatencyMS:   latency.Milliseconds(),
		MaxRiskSeen: row.MaxRiskSeen,
		TraceKey:    row.TraceKey,
		Error:       row.Error,
	})
	if err != nil {
		m.logger.Warn("trace append failed", map[string]interface{}{"error": err.Error()})
	}
}

func (m *RunManager) activeItemsLocked() []domain.ActiveItem {
	items := make([]domain.ActiveItem, 0, len(m.active))
	for workerID, inc := range m.active {
		items = append(items, domain.ActiveItem{
			WorkerID:   workerID,
			IncidentID: inc.ID,
			Scenario:   inc.Scenario,
			Severity:   inc.Severity,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].WorkerID < items[j].WorkerID })
	return items
}

func (m *RunManager) updateMetricsLocked(now time.Time) {
	completed := m.state.Completed
	fixed := 0
	totalSteps := 0
	totalLatency := 0.0
	for _, row := range completed {
		if row.ServiceUp {
			fixed++
		}
		totalSteps += row.StepCount
		totalLatency += row.LatencyS
	}

	summary := domain.RunSummary{
		Total:     m.state.Summary.Total,
		Queued:    len(m.queue),
		Active:    len(m.active),
		Completed: len(completed),
		Fixed:     fixed,
		Failed:    len(completed) - fixed,
	}
	if len(completed) > 0 {
		summary.AvgSteps = round2(float64(totalSteps) / float64(len(completed)))
		summary.AvgLatencyS = round2(totalLatency / float64(len(completed)))
	}
	if m.state.StartedAt != nil {
		elapsed := now.Sub(*m.state.StartedAt).Seconds()
		if elapsed < 0.001 {
			elapsed = 0.001
		}
		summary.ThroughputPS = round2(float64(len(completed)) / elapsed)
	}
	m.state.Summary = summary
}

func (m *RunManager) log(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Logs = append(m.state.Logs, domain.LogEntry{TS: time.Now(), Message: message})
	if len(m.state.Logs) > m.maxLogLines {
		m.state.Logs = m.state.Logs[len(m.state.Logs)-m.maxLogLines:]
	}
}

// generateIncidents builds a seeded incident batch, most severe first. The
// same seed always produces the same queue.
func generateIncidents(count int, seed int64) []domain.Incident {
	rng := rand.New(rand.NewSource(seed))
	scenarios := domain.Scenarios()
	severities := domain.Severities()

	totalWeight := 0
	for _, s := range severities {
		totalWeight += domain.SeverityWeight(s)
	}

	incidents := make([]domain.Incident, 0, count)
	for i := 1; i <= count; i++ {
		pick := rng.Intn(totalWeight)
		severity := severities[len(severities)-1]
		for _, s := range severities {
			pick -= domain.SeverityWeight(s)
			if pick < 0 {
				severity = s
				break
			}
		}
		incidents = append(incidents, domain.Incident{
			ID:        fmt.Sprintf("inc-%04d", i),
			Scenario:  scenarios[rng.Intn(len(scenarios))],
			Severity:  severity,
			CreatedAt: time.Now(),
		})
	}

	sort.SliceStable(incidents, func(i, j int) bool {
		return domain.SeverityRank(incidents[i].Severity) > domain.SeverityRank(incidents[j].Severity)
	})
	return incidents
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
