// Package services contains the long-running coordination logic shared by the
// dashboard and the CLI: the simulated incident runner and the fan-out run
// manager.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/doeshing/faultline/internal/domain"
	"github.com/doeshing/faultline/internal/ports"
)

// SimRunner resolves incidents by replaying a deterministic remediation plan
// for the incident's scenario. Every planned command still goes through the
// security classifier and the gate policy, so blocked actions surface exactly
// as they would in a live run.
type SimRunner struct {
	classifier ports.SecurityClassifier
	logger     ports.Logger
	latency    time.Duration
}

// NewSimRunner builds a simulated runner.
func NewSimRunner(classifier ports.SecurityClassifier, logger ports.Logger) *SimRunner {
	return &SimRunner{classifier: classifier, logger: logger}
}

// SetLatency adds an artificial delay per incident so fan-out demos are
// watchable.
func (r *SimRunner) SetLatency(d time.Duration) { r.latency = d }

// Resolve implements ports.IncidentRunner.
func (r *SimRunner) Resolve(ctx context.Context, req domain.IncidentRequest) (domain.IncidentResult, error) {
	if r.latency > 0 {
		select {
		case <-time.After(r.latency):
		case <-ctx.Done():
			return domain.IncidentResult{}, ctx.Err()
		}
	}

	scenario := req.Scenario
	if !scenario.Valid() {
		scenario = InferScenario(req.ErrorReport)
	}

	optimized := hintCoversScenario(req.StrategyHint, scenario)
	steps := remediationPlan(scenario, optimized, req.TargetURL)

	result := domain.IncidentResult{
		Scenario:    scenario,
		StepCount:   len(steps),
		MaxRiskSeen: domain.RiskUnknown,
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return domain.IncidentResult{}, err
		}
		assessment, err := r.classifier.Classify(step)
		if err != nil {
			return domain.IncidentResult{}, fmt.Errorf("classify %q: %w", step, err)
		}
		result.MaxRiskSeen = domain.MaxRisk(result.MaxRiskSeen, assessment.Level)

		decision := req.Policy.Decide(assessment.Level)
		if !decision.Allowed {
			result.BlockedSteps = append(result.BlockedSteps, step)
			r.logger.Warn("step blocked by gate policy", map[string]interface{}{
				"command": step,
				"risk":    string(assessment.Level),
				"reason":  decision.Reason,
			})
			continue
		}
		result.Steps = append(result.Steps, step)
	}

	result.ServiceUp = len(result.BlockedSteps) == 0
	quality := "baseline"
	if optimized {
		quality = "optimized"
	}
	if result.ServiceUp {
		result.Summary = fmt.Sprintf("Simulation run (%s): diagnosed %s and restored service.", quality, scenario)
	} else {
		result.Summary = fmt.Sprintf("Simulation run (%s): remediation for %s blocked by security policy.", quality, scenario)
	}
	return result, nil
}

// InferScenario maps an incident error report back to a scenario. Unmatched
// reports default to stale_lockfile, the most common failure in practice.
func InferScenario(errorReport string) domain.Scenario {
	report := strings.ToLower(errorReport)
	switch {
	case strings.Contains(report, "stale_lockfile"), strings.Contains(report, "lockfile"):
		return domain.ScenarioStaleLockfile
	case strings.Contains(report, "bad_env_config"), strings.Contains(report, "required_api_key"), strings.Contains(report, "missing env"):
		return domain.ScenarioBadEnvConfig
	case strings.Contains(report, "readiness_probe_fail"), strings.Contains(report, "ready.flag"), strings.Contains(report, "readiness"):
		return domain.ScenarioReadinessProbeFail
	case strings.Contains(report, "port_mismatch"), strings.Contains(report, "wrong port"), strings.Contains(report, "5001"):
		return domain.ScenarioPortMismatch
	}
	return domain.ScenarioStaleLockfile
}

// hintCoversScenario reports whether the strategy hint names the markers that
// matter for the scenario. Hints that do earn the short plan.
func hintCoversScenario(hint string, scenario domain.Scenario) bool {
	h := strings.ToLower(hint)
	switch scenario {
	case domain.ScenarioStaleLockfile:
		return (strings.Contains(h, "lockfile") || strings.Contains(h, "service.lock")) && strings.Contains(h, "/tmp")
	case domain.ScenarioBadEnvConfig:
		return strings.Contains(h, "required_api_key") || (strings.Contains(h, "env") && strings.Contains(h, "config"))
	case domain.ScenarioReadinessProbeFail:
		return strings.Contains(h, "ready.flag") || strings.Contains(h, "readiness")
	case domain.ScenarioPortMismatch:
		return strings.Contains(h, "port") && (strings.Contains(h, "5000") || strings.Contains(h, "5001"))
	}
	return false
}

func remediationPlan(scenario domain.Scenario, optimized bool, targetURL string) []string {
	probe := "curl -i " + targetURL
	if optimized {
		switch scenario {
		case domain.ScenarioStaleLockfile:
			return []string{"ls -la /tmp | grep service.lock", "rm -f /tmp/service.lock", probe}
		case domain.ScenarioBadEnvConfig:
			return []string{"printenv | grep REQUIRED_API_KEY", "export REQUIRED_API_KEY=demo-key", probe}
		case domain.ScenarioReadinessProbeFail:
			return []string{"ls -la /tmp | grep ready.flag", "touch /tmp/ready.flag", probe}
		case domain.ScenarioPortMismatch:
			return []string{"ss -lntp | grep 5001", "socat TCP-LISTEN:5000,fork TCP:127.0.0.1:5001", probe}
		}
	}
	switch scenario {
	case domain.ScenarioStaleLockfile:
		return []string{probe, "cat /app/app.py", "pip list", "ls -la /tmp", "rm -f /tmp/service.lock", probe}
	case domain.ScenarioBadEnvConfig:
		return []string{probe, "cat /app/app.py", "printenv | sort", "export REQUIRED_API_KEY=demo-key", probe}
	case domain.ScenarioReadinessProbeFail:
		return []string{probe, "cat /app/app.py", "ls -la /tmp", "touch /tmp/ready.flag", probe}
	case domain.ScenarioPortMismatch:
		return []string{probe, "ss -lntp", "curl -i localhost:5001", "socat TCP-LISTEN:5000,fork TCP:127.0.0.1:5001", probe}
	}
	return []string{probe}
}

var _ ports.IncidentRunner = (*SimRunner)(nil)
