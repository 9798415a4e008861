package optimize

import (
	"context"
	"strings"
	"testing"

	"github.com/doeshing/faultline/internal/domain"
	"github.com/doeshing/faultline/internal/pkg/logger"
	"github.com/doeshing/faultline/internal/services"
)

type passClassifier struct{}

func (passClassifier) Classify(string) (domain.RiskAssessment, error) {
	return domain.RiskAssessment{Level: domain.RiskLow}, nil
}

func newService() *Service {
	log := logger.NewStd(false)
	return &Service{Runner: services.NewSimRunner(passClassifier{}, log), Logger: log}
}

func TestLoadExamplesEmbedded(t *testing.T) {
	examples, err := LoadExamples("")
	if err != nil {
		t.Fatalf("LoadExamples: %v", err)
	}
	if len(examples) != 4 {
		t.Fatalf("embedded training set has %d examples", len(examples))
	}
	seen := map[domain.Scenario]bool{}
	for _, ex := range examples {
		if !ex.ScenarioID.Valid() {
			t.Fatalf("invalid scenario %q", ex.ScenarioID)
		}
		if ex.ErrorReport == "" {
			t.Fatalf("empty error report for %s", ex.ScenarioID)
		}
		seen[ex.ScenarioID] = true
	}
	if len(seen) != 4 {
		t.Fatalf("training set should cover all scenarios, got %v", seen)
	}
}

func TestScoreFix(t *testing.T) {
	tests := []struct {
		up    bool
		steps int
		want  float64
	}{
		{false, 3, 0.0},
		{true, 16, 0.5},
		{true, 3, 1.0},
		{true, 2, 1.0},
		{true, 8, 0.75},
	}
	for _, tt := range tests {
		if got := ScoreFix(tt.up, tt.steps); got != tt.want {
			t.Errorf("ScoreFix(%v, %d) = %v, want %v", tt.up, tt.steps, got, tt.want)
		}
	}
}

func TestParetoSearchPrefersSpecificHint(t *testing.T) {
	examples, err := LoadExamples("")
	if err != nil {
		t.Fatal(err)
	}

	result, err := newService().ParetoSearch(context.Background(), examples)
	if err != nil {
		t.Fatalf("ParetoSearch: %v", err)
	}
	if result.BestHint == domain.BaselineHint {
		t.Fatal("search should beat the vague baseline hint")
	}
	if result.BestScore <= 0.75 {
		t.Fatalf("best score = %v", result.BestScore)
	}
	if !strings.Contains(result.BestHint, "/tmp") {
		t.Fatalf("winning hint should name triage markers: %q", result.BestHint)
	}
}

func TestIterativeRefinementImproves(t *testing.T) {
	examples, err := LoadExamples("")
	if err != nil {
		t.Fatal(err)
	}

	result, err := newService().IterativeRefinement(context.Background(), examples, 3)
	if err != nil {
		t.Fatalf("IterativeRefinement: %v", err)
	}
	if len(result.History) < 2 {
		t.Fatalf("expected at least one refinement round, history = %d", len(result.History))
	}
	first := result.History[0]
	if first.Hint != domain.BaselineHint {
		t.Fatalf("round 0 hint = %q", first.Hint)
	}
	if result.BestScore <= first.Score {
		t.Fatalf("refinement did not improve: %v -> %v", first.Score, result.BestScore)
	}
	if !strings.Contains(result.BestHint, "service.lock") {
		t.Fatalf("refined hint missing lockfile patch: %q", result.BestHint)
	}
}
