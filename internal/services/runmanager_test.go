package services

import (
	"testing"
	"time"

	"github.com/doeshing/faultline/internal/domain"
	"github.com/doeshing/faultline/internal/pkg/logger"
)

type stubEnv struct{}

func (stubEnv) LoadProject(string) error { return nil }
func (stubEnv) Status() domain.EnvStatus {
	return domain.EnvStatus{"OPENAI_API_KEY": false, "ANTHROPIC_API_KEY": false}
}

type memoryTraces struct {
	records []domain.TraceRecord
}

func (m *memoryTraces) Append(rec domain.TraceRecord) error {
	m.records = append(m.records, rec)
	return nil
}
func (m *memoryTraces) Records(int, string) ([]domain.TraceRecord, error) { return m.records, nil }
func (m *memoryTraces) Clear() error                                      { return nil }
func (m *memoryTraces) ExportJSON(string) error                           { return nil }

func newTestManager(traces *memoryTraces) *RunManager {
	log := logger.NewStd(false)
	runner := NewSimRunner(stubClassifier{}, log)
	return NewRunManager(runner, stubEnv{}, traces, log, domain.DashboardSettings{})
}

func TestRunDrainsAllIncidents(t *testing.T) {
	traces := &memoryTraces{}
	m := newTestManager(traces)

	ok, msg := m.Start(domain.RunConfig{
		Mode:        "optimized",
		Incidents:   8,
		Concurrency: 3,
		Seed:        42,
		TargetURL:   "http://127.0.0.1:15000",
	})
	if !ok {
		t.Fatalf("Start: %s", msg)
	}
	m.Wait()

	snap := m.Snapshot()
	if snap.Status != domain.RunCompleted {
		t.Fatalf("status = %s (error %q)", snap.Status, snap.Error)
	}
	if len(snap.Completed) != 8 {
		t.Fatalf("completed = %d", len(snap.Completed))
	}
	if snap.Summary.Fixed != 8 || snap.Summary.Failed != 0 {
		t.Fatalf("summary = %+v", snap.Summary)
	}
	if snap.Summary.Queued != 0 || snap.Summary.Active != 0 {
		t.Fatalf("leftover work in summary: %+v", snap.Summary)
	}
	if snap.Summary.AvgSteps != 3 {
		t.Fatalf("optimized runs should average 3 steps, got %v", snap.Summary.AvgSteps)
	}
	if len(traces.records) != 8 {
		t.Fatalf("trace records = %d", len(traces.records))
	}
	if len(snap.Logs) == 0 {
		t.Fatal("expected run log lines")
	}
}

func TestStartRejectsConcurrentRun(t *testing.T) {
	log := logger.NewStd(false)
	runner := NewSimRunner(stubClassifier{}, log)
	runner.SetLatency(50 * time.Millisecond)
	m := NewRunManager(runner, stubEnv{}, nil, log, domain.DashboardSettings{})

	if ok, _ := m.Start(domain.RunConfig{Incidents: 10, Concurrency: 1}); !ok {
		t.Fatal("first start refused")
	}
	if ok, msg := m.Start(domain.RunConfig{}); ok {
		t.Fatal("second start should be refused")
	} else if msg != "a run is already in progress" {
		t.Fatalf("message = %q", msg)
	}

	if !m.Stop() {
		t.Fatal("Stop should succeed while running")
	}
	m.Wait()

	snap := m.Snapshot()
	if snap.Status != domain.RunCancelled && snap.Status != domain.RunCompleted {
		t.Fatalf("status after stop = %s", snap.Status)
	}
	if m.Stop() {
		t.Fatal("Stop should be a no-op once finished")
	}
}

func TestBaselineModeUsesBaselineHint(t *testing.T) {
	m := newTestManager(&memoryTraces{})

	ok, _ := m.Start(domain.RunConfig{Mode: "baseline", Incidents: 4, Concurrency: 2})
	if !ok {
		t.Fatal("Start refused")
	}
	m.Wait()

	snap := m.Snapshot()
	if snap.Config.StrategyHint != domain.BaselineHint {
		t.Fatalf("hint = %q", snap.Config.StrategyHint)
	}
	if snap.Summary.AvgSteps <= 3 {
		t.Fatalf("baseline runs should average more than 3 steps, got %v", snap.Summary.AvgSteps)
	}
}

func TestGenerateIncidentsDeterministicAndSorted(t *testing.T) {
	a := generateIncidents(30, 7)
	b := generateIncidents(30, 7)

	if len(a) != 30 {
		t.Fatalf("len = %d", len(a))
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Scenario != b[i].Scenario || a[i].Severity != b[i].Severity {
			t.Fatalf("seeded generation diverged at %d: %+v vs %+v", i, a[i], b[i])
		}
	}
	for i := 1; i < len(a); i++ {
		if domain.SeverityRank(a[i-1].Severity) < domain.SeverityRank(a[i].Severity) {
			t.Fatalf("queue not sorted by severity at %d", i)
		}
	}
}
