package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/faultline/internal/domain"
)

func TestClassifyDefaults(t *testing.T) {
	gates, err := NewGates("")
	if err != nil {
		t.Fatalf("NewGates error: %v", err)
	}

	tests := []struct {
		command string
		want    domain.RiskLevel
	}{
		{"rm -rf /tmp/*", domain.RiskHigh},
		{"docker exec faultline-demo rm -f /tmp/service.lock", domain.RiskLow},
		{"docker exec faultline-demo sh -lc 'touch /tmp/ready.flag'", domain.RiskLow},
		{"export REQUIRED_API_KEY=demo-key", domain.RiskLow},
		{"socat TCP-LISTEN:5000,fork TCP:127.0.0.1:5001", domain.RiskMedium},
		{"docker restart faultline-demo", domain.RiskMedium},
		{"ss -lntp", domain.RiskLow},
	}
	for _, tt := range tests {
		got, err := gates.Classify(tt.command)
		if err != nil {
			t.Fatalf("Classify(%q) error: %v", tt.command, err)
		}
		if got.Level != tt.want {
			t.Errorf("Classify(%q) = %s, want %s (reasons %v)", tt.command, got.Level, tt.want, got.Reasons)
		}
	}
}

func TestClassifyMostSevereMatchWins(t *testing.T) {
	gates, err := NewGates("")
	if err != nil {
		t.Fatalf("NewGates error: %v", err)
	}
	got, err := gates.Classify("docker stop faultline-demo && rm -rf /tmp/*")
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if got.Level != domain.RiskHigh {
		t.Fatalf("expected HIGH, got %s", got.Level)
	}
	if len(got.MatchedRules) < 2 {
		t.Fatalf("expected multiple matched rules, got %v", got.MatchedRules)
	}
}

func TestClassifyCustomRulesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gates.yaml")
	rules := `rules:
  risk_patterns:
    - pattern: 'drop\s+table'
      level: HIGH
      message: Destructive SQL
`
	if err := os.WriteFile(path, []byte(rules), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	gates, err := NewGates(path)
	if err != nil {
		t.Fatalf("NewGates error: %v", err)
	}
	got, err := gates.Classify("drop table incidents")
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	want := domain.RiskAssessment{
		Level:        domain.RiskHigh,
		Reasons:      []string{"Destructive SQL"},
		MatchedRules: []string{`drop\s+table`},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("assessment mismatch (-want +got):\n%s", diff)
	}
}

func TestPolicyDecisions(t *testing.T) {
	confirmAt := domain.RiskMedium

	tests := []struct {
		name    string
		policy  domain.GatePolicy
		level   domain.RiskLevel
		allowed bool
	}{
		{
			name:    "high action blocked by medium ceiling",
			policy:  domain.GatePolicy{MaxRisk: domain.RiskMedium},
			level:   domain.RiskHigh,
			allowed: false,
		},
		{
			name:    "low action allowed by medium ceiling",
			policy:  domain.GatePolicy{MaxRisk: domain.RiskMedium},
			level:   domain.RiskLow,
			allowed: true,
		},
		{
			name:    "confirmation threshold blocks without auto confirm",
			policy:  domain.GatePolicy{MaxRisk: domain.RiskHigh, ConfirmAt: confirmAt},
			level:   domain.RiskMedium,
			allowed: false,
		},
		{
			name:    "auto confirm passes the confirmation threshold",
			policy:  domain.GatePolicy{MaxRisk: domain.RiskHigh, ConfirmAt: confirmAt, AutoConfirm: true},
			level:   domain.RiskHigh,
			allowed: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.policy.Decide(tt.level)
			if got.Allowed != tt.allowed {
				t.Fatalf("Decide(%s) allowed=%v reason=%q, want allowed=%v", tt.level, got.Allowed, got.Reason, tt.allowed)
			}
			if got.Reason == "" {
				t.Fatalf("decision should carry a reason")
			}
		})
	}
}
