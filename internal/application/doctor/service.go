// Package doctor runs environment preflight checks for the demo harness.
package doctor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/doeshing/faultline/internal/domain"
	"github.com/doeshing/faultline/internal/ports"
)

// Service runs diagnostics and returns a report.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Classifier     ports.SecurityClassifier
	Skills         ports.SkillRepository
	Runtime        ports.ContainerRuntime
	Traces         ports.TraceRepository
	Env            ports.EnvReporter
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("loaded, format %s", cfg.ConfigFormatVersion)))

	if s.Classifier != nil {
		if _, err := s.Classifier.Classify("ls"); err != nil {
			checks = append(checks, fail("Gate rules", err.Error()))
		} else {
			checks = append(checks, ok("Gate rules", "risk patterns loaded"))
		}
	} else {
		checks = append(checks, warn("Gate rules", "classifier not initialized"))
	}

	if s.Skills != nil {
		if skills, err := s.Skills.List(); err != nil {
			checks = append(checks, warn("Skills", err.Error()))
		} else if len(skills) == 0 {
			checks = append(checks, warn("Skills", fmt.Sprintf("no runbooks under %s", cfg.Skills.Root)))
		} else {
			checks = append(checks, ok("Skills", fmt.Sprintf("%d runbooks available", len(skills))))
		}
	}

	if s.Runtime != nil {
		if s.Runtime.Available(ctx) {
			checks = append(checks, ok("Docker", "engine reachable"))
		} else {
			checks = append(checks, warn("Docker", "engine not reachable; live demo unavailable (simulate mode still works)"))
		}
	}

	if s.Traces != nil {
		if _, err := s.Traces.Records(1, ""); err != nil {
			checks = append(checks, warn("Trace store", err.Error()))
		} else {
			checks = append(checks, ok("Trace store", fmt.Sprintf("%s backend ready", cfg.Trace.Backend)))
		}
	}

	checks = append(checks, keyCheck(s.Env))

	return domain.HealthReport{Checks: checks}, nil
}

func keyCheck(env ports.EnvReporter) domain.HealthCheck {
	if env == nil {
		return warn("API keys", "env reporter not initialized")
	}
	var missing []string
	for key, present := range env.Status() {
		if !present {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return ok("API keys", "all watched keys present")
	}
	sort.Strings(missing)
	return warn("API keys", fmt.Sprintf("missing: %s", strings.Join(missing, ", ")))
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
