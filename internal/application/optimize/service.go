// Package optimize searches for the strategy hint that resolves the training
// scenarios in the fewest steps.
package optimize

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/doeshing/faultline/assets"
	"github.com/doeshing/faultline/internal/domain"
	"github.com/doeshing/faultline/internal/ports"
)

// Example is one training scenario: the incident report the runner sees and
// the scenario it should resolve.
type Example struct {
	ScenarioID  domain.Scenario `json:"scenario_id"`
	ErrorReport string          `json:"error_report"`
}

// LoadExamples reads a training set from disk, or the embedded default set
// when path is empty.
func LoadExamples(path string) ([]Example, error) {
	data := assets.TrainingScenariosJSON
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read training data: %w", err)
		}
	}
	var examples []Example
	if err := json.Unmarshal(data, &examples); err != nil {
		return nil, fmt.Errorf("parse training data: %w", err)
	}
	if len(examples) == 0 {
		return nil, fmt.Errorf("training data is empty")
	}
	return examples, nil
}

// ScoreFix grades one resolution attempt.
//
//	0.0  service still down
//	0.5  service up but more than 15 steps
//	1.0  service up in 3 steps or fewer
//	0.75 otherwise
func ScoreFix(serviceUp bool, steps int) float64 {
	if !serviceUp {
		return 0.0
	}
	if steps > 15 {
		return 0.5
	}
	if steps <= 3 {
		return 1.0
	}
	return 0.75
}

// CandidateHints is the search space for pareto-style selection, from vague to
// fully specified.
func CandidateHints() []string {
	return []string{
		"Fix the bug.",
		"Check application code and restart the service.",
		"Use quick triage first: verify /tmp lockfiles, readiness artifacts, " +
			"and listening ports; apply the minimal fix and re-verify with curl localhost:5000.",
		"Follow this runbook: (1) curl localhost:5000, (2) inspect /tmp/service.lock and /tmp/ready.flag, " +
			"(3) verify bound ports with ss -lntp, (4) fix the identified issue and retest.",
	}
}

// ScenarioScore is the per-example outcome of evaluating one hint.
type ScenarioScore struct {
	ScenarioID domain.Scenario `json:"scenario_id"`
	Score      float64         `json:"score"`
	StepCount  int             `json:"step_count"`
	ServiceUp  bool            `json:"service_up"`
}

// RoundReport records one round of iterative refinement.
type RoundReport struct {
	Round  int             `json:"round"`
	Hint   string          `json:"hint"`
	Score  float64         `json:"score"`
	Scored []ScenarioScore `json:"scored"`
}

// Result is the outcome of a hint search.
type Result struct {
	Optimizer string        `json:"optimizer"`
	BestHint  string        `json:"best_hint"`
	BestScore float64       `json:"best_score"`
	History   []RoundReport `json:"history,omitempty"`
}

// Service evaluates strategy hints against the training set using a runner.
type Service struct {
	Runner ports.IncidentRunner
	Logger ports.Logger
}

// BestHint dispatches to the chosen optimizer. "iterative" refines a vague
// hint round by round; anything else runs candidate selection.
func (s *Service) BestHint(ctx context.Context, optimizer string, examples []Example, rounds int) (Result, error) {
	if optimizer == "iterative" {
		return s.IterativeRefinement(ctx, examples, rounds)
	}
	return s.ParetoSearch(ctx, examples)
}

// ParetoSearch evaluates every candidate hint and keeps the best mean score.
func (s *Service) ParetoSearch(ctx context.Context, examples []Example) (Result, error) {
	result := Result{Optimizer: "pareto", BestScore: -1}
	for _, hint := range CandidateHints() {
		score, _, err := s.evaluateHint(ctx, examples, hint)
		if err != nil {
			return Result{}, err
		}
		s.Logger.Debug("candidate evaluated", map[string]interface{}{"hint": hint, "score": score})
		if score > result.BestScore {
			result.BestHint = hint
			result.BestScore = score
		}
	}
	return result, nil
}

// scenarioPatches name the triage step a hint is missing when the matching
// scenario scores below 1.0.
var scenarioPatches = map[domain.Scenario]string{
	domain.ScenarioStaleLockfile:      "check /tmp/service.lock and remove stale lockfiles early",
	domain.ScenarioReadinessProbeFail: "check /tmp/ready.flag readiness artifacts",
	domain.ScenarioPortMismatch:       "inspect listening ports and verify 5000 vs 5001",
}

// IterativeRefinement starts from a vague hint and appends the triage steps
// the failing scenarios are missing, one round at a time.
func (s *Service) IterativeRefinement(ctx context.Context, examples []Example, rounds int) (Result, error) {
	if rounds <= 0 {
		rounds = 3
	}

	hint := domain.BaselineHint
	result := Result{Optimizer: "iterative"}

	score, scored, err := s.evaluateHint(ctx, examples, hint)
	if err != nil {
		return Result{}, err
	}
	result.BestHint = hint
	result.BestScore = score
	result.History = append(result.History, RoundReport{Round: 0, Hint: hint, Score: score, Scored: scored})

	for round := 1; round <= rounds; round++ {
		_, scored, err := s.evaluateHint(ctx, examples, hint)
		if err != nil {
			return Result{}, err
		}

		var missing []string
		for _, entry := range scored {
			if entry.Score >= 1.0 {
				continue
			}
			patch, ok := scenarioPatches[entry.ScenarioID]
			if !ok || strings.Contains(hint, patch) || contains(missing, patch) {
				continue
			}
			missing = append(missing, patch)
		}
		if len(missing) == 0 {
			break
		}

		hint = hint + " Then follow this refinement: " + strings.Join(missing, "; ") +
			"; always verify with curl localhost:5000."

		score, scored, err := s.evaluateHint(ctx, examples, hint)
		if err != nil {
			return Result{}, err
		}
		result.History = append(result.History, RoundReport{Round: round, Hint: hint, Score: score, Scored: scored})
		if score > result.BestScore {
			result.BestScore = score
			result.BestHint = hint
		}
	}
	return result, nil
}

func (s *Service) evaluateHint(ctx context.Context, examples []Example, hint string) (float64, []ScenarioScore, error) {
	scored := make([]ScenarioScore, 0, len(examples))
	total := 0.0
	for _, ex := range examples {
		res, err := s.Runner.Resolve(ctx, domain.IncidentRequest{
			StrategyHint: hint,
			ErrorReport:  ex.ErrorReport,
			Scenario:     ex.ScenarioID,
			DryRun:       true,
		})
		if err != nil {
			return 0, nil, fmt.Errorf("evaluate %s: %w", ex.ScenarioID, err)
		}
		score := ScoreFix(res.ServiceUp, res.StepCount)
		total += score
		scored = append(scored, ScenarioScore{
			ScenarioID: ex.ScenarioID,
			Score:      score,
			StepCount:  res.StepCount,
			ServiceUp:  res.ServiceUp,
		})
	}
	return total / float64(len(examples)), scored, nil
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
