// Package demo orchestrates the end-to-end incident demo: boot the faulty
// target container, diagnose, propose a remediation, gate it, optionally ask
// the operator, execute, and verify.
package demo

import (
	"context"
	"fmt"
	"time"

	"github.com/doeshing/faultline/internal/domain"
	"github.com/doeshing/faultline/internal/ports"
)

// Options control one demo run.
type Options struct {
	Scenario      domain.Scenario
	Mode          string
	StrategyHint  string
	Simulate      bool
	SkipBuild     bool
	KeepContainer bool
	Interactive   bool
	EnvFile       string

	// Gate policy overrides; zero values fall back to configuration.
	MaxRisk     domain.RiskLevel
	ConfirmAt   domain.RiskLevel
	AutoConfirm bool
}

// Outcome is everything the CLI needs to narrate what happened.
type Outcome struct {
	Scenario      domain.Scenario
	TargetURL     string
	Container     string
	InitialStatus int
	FinalStatus   int
	SkillID       string
	StrategyHint  string
	Proposed      string
	Risk          domain.RiskAssessment
	Gate          domain.GateDecision
	Intervention  domain.InterventionChoice
	Executed      bool
	ExecExitCode  int
	ServiceUp     bool
	Result        domain.IncidentResult
	TraceKey      string
}

// Service wires the demo pipeline out of ports.
type Service struct {
	Config     ports.ConfigProvider
	Runtime    ports.ContainerRuntime
	Prober     ports.Prober
	Skills     ports.SkillRepository
	Classifier ports.SecurityClassifier
	Executor   ports.CommandExecutor
	Prompter   ports.InterventionPrompter
	Runner     ports.IncidentRunner
	Traces     ports.TraceRepository
	Env        ports.EnvReporter
	Logger     ports.Logger
}

// Run executes the demo and returns the outcome. Simulate mode never touches
// the container engine.
func (s *Service) Run(ctx context.Context, opts Options) (Outcome, error) {
	cfg, err := s.Config.Load(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("load config: %w", err)
	}
	if err := s.Env.LoadProject(opts.EnvFile); err != nil {
		s.Logger.Warn("env file load failed", map[string]interface{}{"error": err.Error()})
	}

	scenario := opts.Scenario
	if !scenario.Valid() {
		scenario = domain.ScenarioStaleLockfile
	}
	policy := s.resolvePolicy(cfg, opts)
	hint, skillID := s.resolveHint(scenario, opts)

	outcome := Outcome{
		Scenario:     scenario,
		Container:    cfg.Demo.ContainerName,
		SkillID:      skillID,
		StrategyHint: hint,
		TraceKey:     fmt.Sprintf("demo:%s", time.Now().Format("20060102-150405")),
	}

	if opts.Simulate {
		return s.runSimulated(ctx, scenario, hint, policy, cfg, outcome)
	}
	return s.runLive(ctx, scenario, policy, cfg, opts, outcome)
}

func (s *Service) resolvePolicy(cfg domain.Config, opts Options) domain.GatePolicy {
	policy := cfg.Gates.Policy()
	if opts.MaxRisk != "" && opts.MaxRisk != domain.RiskUnknown {
		policy.MaxRisk = opts.MaxRisk
	}
	if opts.ConfirmAt != "" && opts.ConfirmAt != domain.RiskUnknown {
		policy.ConfirmAt = opts.ConfirmAt
	}
	if opts.AutoConfirm {
		policy.AutoConfirm = true
	}
	return policy
}

func (s *Service) resolveHint(scenario domain.Scenario, opts Options) (hint, skillID string) {
	if opts.StrategyHint != "" {
		return opts.StrategyHint, ""
	}
	if opts.Mode == "baseline" {
		return domain.BaselineHint, ""
	}
	selection, err := s.Skills.Select(scenario, scenario.ErrorReport())
	if err != nil {
		s.Logger.Warn("skill selection failed", map[string]interface{}{"error": err.Error()})
		return domain.OptimizedHint, ""
	}
	return selection.StrategyHint, selection.SkillID
}

func (s *Service) runSimulated(ctx context.Context, scenario domain.Scenario, hint string, policy domain.GatePolicy, cfg domain.Config, outcome Outcome) (Outcome, error) {
	outcome.TargetURL = fmt.Sprintf("http://127.0.0.1:%d", cfg.Demo.HostPort)

	result, err := s.Runner.Resolve(ctx, domain.IncidentRequest{
		StrategyHint:    hint,
		ErrorReport:     scenario.ErrorReport(),
		Scenario:        scenario,
		Policy:          policy,
		TargetURL:       outcome.TargetURL,
		TargetContainer: cfg.Demo.ContainerName,
		TraceKey:        outcome.TraceKey,
		DryRun:          true,
	})
	if err != nil {
		return outcome, fmt.Errorf("simulated run: %w", err)
	}

	outcome.Result = result
	outcome.ServiceUp = result.ServiceUp
	s.appendTrace(scenario, outcome, 0)
	return outcome, nil
}

func (s *Service) runLive(ctx context.Context, scenario domain.Scenario, policy domain.GatePolicy, cfg domain.Config, opts Options, outcome Outcome) (Outcome, error) {
	if !s.Runtime.Available(ctx) {
		return outcome, fmt.Errorf("docker is not available; start the docker daemon and retry")
	}

	if !opts.SkipBuild {
		s.Logger.Info("building target image", map[string]interface{}{"image": cfg.Demo.Image})
		if err := s.Runtime.Build(ctx, cfg.Demo.Image, cfg.Demo.BuildContext); err != nil {
			return outcome, fmt.Errorf("build image: %w", err)
		}
	}

	if exists, err := s.Runtime.Exists(ctx, cfg.Demo.ContainerName); err == nil && exists {
		s.Logger.Info("removing existing container", map[string]interface{}{"name": cfg.Demo.ContainerName})
		if err := s.Runtime.Remove(ctx, cfg.Demo.ContainerName); err != nil {
			return outcome, fmt.Errorf("remove container: %w", err)
		}
	}

	spec := domain.ContainerSpec{
		Name:          cfg.Demo.ContainerName,
		Image:         cfg.Demo.Image,
		HostPort:      cfg.Demo.HostPort,
		ContainerPort: domain.DefaultTargetPort,
		Env:           map[string]string{domain.ScenarioEnvVar: string(scenario)},
		AutoRemove:    true,
		Detach:        true,
	}
	if err := s.Runtime.Run(ctx, spec); err != nil {
		return outcome, fmt.Errorf("start container: %w", err)
	}
	if !opts.KeepContainer {
		defer func() {
			s.Logger.Info("removing container", map[string]interface{}{"name": cfg.Demo.ContainerName})
			if err := s.Runtime.Remove(context.Background(), cfg.Demo.ContainerName); err != nil {
				s.Logger.Warn("teardown failed", map[string]interface{}{"error": err.Error()})
			}
		}()
	}

	outcome.TargetURL = fmt.Sprintf("http://127.0.0.1:%d", cfg.Demo.HostPort)

	probeCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Demo.ProbeTimeoutS)*time.Second)
	initial, err := s.Prober.WaitSettled(probeCtx, outcome.TargetURL)
	cancel()
	if err != nil {
		// port_mismatch never answers on the probed port; that is the
		// failure signature, not a demo error.
		s.Logger.Warn("target did not settle", map[string]interface{}{"error": err.Error()})
	}
	outcome.InitialStatus = initial.StatusCode

	outcome.Proposed = scenario.ProposedRemediation(cfg.Demo.ContainerName)
	risk, err := s.Classifier.Classify(outcome.Proposed)
	if err != nil {
		return outcome, fmt.Errorf("classify remediation: %w", err)
	}
	outcome.Risk = risk
	outcome.Gate = policy.Decide(risk.Level)

	if outcome.Gate.Allowed {
		if err := s.applyRemediation(ctx, &outcome, opts, policy); err != nil {
			return outcome, err
		}
	} else {
		s.Logger.Warn("remediation blocked", map[string]interface{}{
			"command": outcome.Proposed,
			"reason":  outcome.Gate.Reason,
		})
	}

	final, err := s.Prober.Check(ctx, outcome.TargetURL)
	if err == nil {
		outcome.FinalStatus = final.StatusCode
	}
	outcome.ServiceUp = outcome.FinalStatus == 200
	s.appendTrace(scenario, outcome, stepsTaken(outcome))
	return outcome, nil
}

func (s *Service) applyRemediation(ctx context.Context, outcome *Outcome, opts Options, policy domain.GatePolicy) error {
	command := outcome.Proposed
	outcome.Intervention = domain.InterventionApprove

	if opts.Interactive && s.Prompter != nil && s.Prompter.Enabled() {
		decision, err := s.Prompter.Propose(command, outcome.Risk)
		if err != nil {
			return fmt.Errorf("intervention prompt: %w", err)
		}
		outcome.Intervention = decision.Choice
		switch decision.Choice {
		case domain.InterventionReject:
			s.Logger.Info("remediation rejected by operator", nil)
			return nil
		case domain.InterventionEdit:
			command = decision.Command
			risk, err := s.Classifier.Classify(command)
			if err != nil {
				return fmt.Errorf("classify edited command: %w", err)
			}
			outcome.Risk = risk
			// The operator just confirmed interactively, so only the
			// hard risk ceiling applies to the edited command.
			rePolicy := policy
			rePolicy.AutoConfirm = true
			outcome.Gate = rePolicy.Decide(risk.Level)
			if !outcome.Gate.Allowed {
				s.Logger.Warn("edited command blocked", map[string]interface{}{"reason": outcome.Gate.Reason})
				return nil
			}
		}
	}

	result, err := s.Executor.Execute(ctx, command)
	outcome.Executed = true
	outcome.ExecExitCode = result.ExitCode
	if err != nil {
		s.Logger.Warn("remediation command failed", map[string]interface{}{
			"command": command,
			"stderr":  result.Stderr,
		})
	}
	return nil
}

func stepsTaken(outcome Outcome) int {
	if outcome.Executed {
		return 1
	}
	return 0
}

func (s *Service) appendTrace(scenario domain.Scenario, outcome Outcome, steps int) {
	if s.Traces == nil {
		return
	}
	record := domain.TraceRecord{
		RunID:       "demo",
		IncidentID:  outcome.TraceKey,
		Scenario:    scenario,
		ServiceUp:   outcome.ServiceUp,
		StepCount:   steps,
		MaxRiskSeen: outcome.Risk.Level,
		TraceKey:    outcome.TraceKey,
	}
	if outcome.Result.StepCount > 0 {
		record.StepCount = outcome.Result.StepCount
		record.MaxRiskSeen = outcome.Result.MaxRiskSeen
	}
	if err := s.Traces.Append(record); err != nil {
		s.Logger.Warn("trace append failed", map[string]interface{}{"error": err.Error()})
	}
}
