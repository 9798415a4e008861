package config

import (
	"strings"
	"testing"

	"github.com/doeshing/faultline/internal/domain"
)

func validConfig() domain.Config {
	return domain.Config{
		ConfigFormatVersion: "1",
		Target: domain.TargetSettings{
			Port:         5000,
			MismatchPort: 5001,
			Lockfile:     "/tmp/service.lock",
			ReadyFlag:    "/tmp/ready.flag",
			RequiredEnv:  "REQUIRED_API_KEY",
		},
		Demo: domain.DemoSettings{
			Image:         "faultline-target:latest",
			ContainerName: "faultline-demo",
			HostPort:      15000,
			ProbeTimeoutS: 15,
		},
		Gates: domain.GateSettings{MaxRisk: "HIGH"},
		Trace: domain.TraceSettings{Backend: "sqlite"},
		Dashboard: domain.DashboardSettings{
			Listen:       "127.0.0.1:8008",
			MaxLogLines:  200,
			HistoryLimit: 400,
		},
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsBrokenConfigs(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.Config)
		wantErr string
	}{
		{"equal ports", func(c *domain.Config) { c.Target.MismatchPort = c.Target.Port }, "must differ"},
		{"bad port", func(c *domain.Config) { c.Target.Port = 0 }, "target.port"},
		{"no lockfile", func(c *domain.Config) { c.Target.Lockfile = "" }, "target.lockfile"},
		{"no image", func(c *domain.Config) { c.Demo.Image = "" }, "demo.image"},
		{"bad risk", func(c *domain.Config) { c.Gates.MaxRisk = "EXTREME" }, "gates.max_risk"},
		{"bad confirm", func(c *domain.Config) { c.Gates.ConfirmAt = "SOMETIMES" }, "gates.confirm_at"},
		{"bad backend", func(c *domain.Config) { c.Trace.Backend = "redis" }, "trace.backend"},
		{"no listen", func(c *domain.Config) { c.Dashboard.Listen = "" }, "dashboard.listen"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}
