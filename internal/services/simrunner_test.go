package services

import (
	"context"
	"strings"
	"testing"

	"github.com/doeshing/faultline/internal/domain"
	"github.com/doeshing/faultline/internal/pkg/logger"
)

// stubClassifier scores commands the way the default gate rules would without
// pulling the rules engine into these tests.
type stubClassifier struct{}

func (stubClassifier) Classify(command string) (domain.RiskAssessment, error) {
	switch {
	case strings.Contains(command, "rm -rf"):
		return domain.RiskAssessment{Level: domain.RiskHigh}, nil
	case strings.Contains(command, "socat"):
		return domain.RiskAssessment{Level: domain.RiskMedium}, nil
	}
	return domain.RiskAssessment{Level: domain.RiskLow}, nil
}

func TestResolveOptimizedPlanIsShort(t *testing.T) {
	r := NewSimRunner(stubClassifier{}, logger.NewStd(false))

	result, err := r.Resolve(context.Background(), domain.IncidentRequest{
		StrategyHint: domain.OptimizedHint,
		Scenario:     domain.ScenarioStaleLockfile,
		TargetURL:    "http://127.0.0.1:15000",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !result.ServiceUp {
		t.Fatal("expected service restored")
	}
	if result.StepCount != 3 {
		t.Fatalf("optimized plan should take 3 steps, got %d", result.StepCount)
	}
	if result.MaxRiskSeen != domain.RiskLow {
		t.Fatalf("max risk = %s", result.MaxRiskSeen)
	}
}

func TestResolveBaselinePlanIsLonger(t *testing.T) {
	r := NewSimRunner(stubClassifier{}, logger.NewStd(false))

	result, err := r.Resolve(context.Background(), domain.IncidentRequest{
		StrategyHint: domain.BaselineHint,
		Scenario:     domain.ScenarioStaleLockfile,
		TargetURL:    "http://127.0.0.1:15000",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.StepCount <= 3 {
		t.Fatalf("baseline plan should wander, got %d steps", result.StepCount)
	}
}

func TestResolveGatePolicyBlocksSteps(t *testing.T) {
	r := NewSimRunner(stubClassifier{}, logger.NewStd(false))

	result, err := r.Resolve(context.Background(), domain.IncidentRequest{
		StrategyHint: domain.OptimizedHint,
		Scenario:     domain.ScenarioPortMismatch,
		Policy:       domain.GatePolicy{MaxRisk: domain.RiskLow},
		TargetURL:    "http://127.0.0.1:15000",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.ServiceUp {
		t.Fatal("remediation should fail when the forwarder command is blocked")
	}
	if len(result.BlockedSteps) != 1 || !strings.Contains(result.BlockedSteps[0], "socat") {
		t.Fatalf("blocked steps = %v", result.BlockedSteps)
	}
	if result.MaxRiskSeen != domain.RiskMedium {
		t.Fatalf("max risk = %s", result.MaxRiskSeen)
	}
}

func TestResolveInfersScenarioFromReport(t *testing.T) {
	r := NewSimRunner(stubClassifier{}, logger.NewStd(false))

	result, err := r.Resolve(context.Background(), domain.IncidentRequest{
		StrategyHint: domain.BaselineHint,
		ErrorReport:  "Service at localhost:5000 fails with missing REQUIRED_API_KEY.",
		TargetURL:    "http://127.0.0.1:15000",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Scenario != domain.ScenarioBadEnvConfig {
		t.Fatalf("scenario = %s", result.Scenario)
	}
}

func TestInferScenario(t *testing.T) {
	tests := []struct {
		report string
		want   domain.Scenario
	}{
		{"stale lockfile present at /tmp/service.lock", domain.ScenarioStaleLockfile},
		{"missing env REQUIRED_API_KEY", domain.ScenarioBadEnvConfig},
		{"readiness probe stays unhealthy, no ready.flag", domain.ScenarioReadinessProbeFail},
		{"process may be listening on 5001", domain.ScenarioPortMismatch},
		{"something nobody has seen before", domain.ScenarioStaleLockfile},
	}
	for _, tt := range tests {
		if got := InferScenario(tt.report); got != tt.want {
			t.Errorf("InferScenario(%q) = %s, want %s", tt.report, got, tt.want)
		}
	}
}

func TestHintCoverage(t *testing.T) {
	for _, scenario := range domain.Scenarios() {
		if hintCoversScenario(domain.BaselineHint, scenario) {
			t.Errorf("baseline hint should not cover %s", scenario)
		}
		if !hintCoversScenario(domain.OptimizedHint, scenario) {
			t.Errorf("optimized hint should cover %s", scenario)
		}
	}
}
