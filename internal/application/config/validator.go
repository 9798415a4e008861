// Package config validates the loaded harness configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/doeshing/faultline/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if err := validateTarget(cfg.Target); err != nil {
		return err
	}
	if err := validateDemo(cfg.Demo); err != nil {
		return err
	}
	if err := validateGates(cfg.Gates); err != nil {
		return err
	}
	if err := validateTrace(cfg.Trace); err != nil {
		return err
	}
	return validateDashboard(cfg.Dashboard)
}

func validateTarget(target domain.TargetSettings) error {
	if target.Port <= 0 || target.Port > 65535 {
		return fmt.Errorf("target.port must be 1-65535, got %d", target.Port)
	}
	if target.MismatchPort <= 0 || target.MismatchPort > 65535 {
		return fmt.Errorf("target.mismatch_port must be 1-65535, got %d", target.MismatchPort)
	}
	if target.Port == target.MismatchPort {
		return fmt.Errorf("target.port and target.mismatch_port must differ")
	}
	if target.Lockfile == "" {
		return fmt.Errorf("target.lockfile must be set")
	}
	if target.ReadyFlag == "" {
		return fmt.Errorf("target.ready_flag must be set")
	}
	if target.RequiredEnv == "" {
		return fmt.Errorf("target.required_env must be set")
	}
	return nil
}

func validateDemo(demo domain.DemoSettings) error {
	if demo.Image == "" {
		return fmt.Errorf("demo.image must be set")
	}
	if demo.ContainerName == "" {
		return fmt.Errorf("demo.container_name must be set")
	}
	if demo.HostPort <= 0 || demo.HostPort > 65535 {
		return fmt.Errorf("demo.host_port must be 1-65535, got %d", demo.HostPort)
	}
	if demo.ProbeTimeoutS <= 0 {
		return fmt.Errorf("demo.probe_timeout_s must be > 0")
	}
	return nil
}

func validateGates(gates domain.GateSettings) error {
	if err := validateRisk("gates.max_risk", gates.MaxRisk); err != nil {
		return err
	}
	return validateRisk("gates.confirm_at", gates.ConfirmAt)
}

func validateRisk(field, value string) error {
	if value == "" {
		return nil
	}
	if domain.ParseRiskLevel(value) == domain.RiskUnknown {
		return fmt.Errorf("%s must be LOW|MEDIUM|HIGH, got %s", field, value)
	}
	return nil
}

func validateTrace(trace domain.TraceSettings) error {
	switch strings.ToLower(trace.Backend) {
	case "", "sqlite", "jsonl":
		return nil
	}
	return fmt.Errorf("trace.backend must be sqlite|jsonl, got %s", trace.Backend)
}

func validateDashboard(dash domain.DashboardSettings) error {
	if dash.Listen == "" {
		return fmt.Errorf("dashboard.listen must be set")
	}
	if dash.MaxLogLines <= 0 {
		return fmt.Errorf("dashboard.max_log_lines must be > 0")
	}
	if dash.HistoryLimit <= 0 {
		return fmt.Errorf("dashboard.history_limit must be > 0")
	}
	return nil
}
