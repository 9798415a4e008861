package domain

import (
	"fmt"
	"strings"
)

// RiskLevel enumerates the security classification of a proposed action.
type RiskLevel string

const (
	RiskUnknown RiskLevel = "UNKNOWN"
	RiskLow     RiskLevel = "LOW"
	RiskMedium  RiskLevel = "MEDIUM"
	RiskHigh    RiskLevel = "HIGH"
)

// ParseRiskLevel normalizes a raw level string, defaulting to UNKNOWN.
func ParseRiskLevel(value string) RiskLevel {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "LOW":
		return RiskLow
	case "MEDIUM":
		return RiskMedium
	case "HIGH":
		return RiskHigh
	}
	return RiskUnknown
}

func riskValue(level RiskLevel) int {
	switch level {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	}
	return 0
}

// MoreSevere reports whether a outranks b.
func MoreSevere(a, b RiskLevel) bool {
	return riskValue(a) > riskValue(b)
}

// MaxRisk returns the more severe of two levels.
func MaxRisk(a, b RiskLevel) RiskLevel {
	if MoreSevere(b, a) {
		return b
	}
	return a
}

// RiskAssessment is the outcome of classifying a single command.
type RiskAssessment struct {
	Level        RiskLevel
	Reasons      []string
	MatchedRules []string
}

// GatePolicy controls which actions the harness may execute.
//
// MaxRisk blocks anything above it. ConfirmAt (when set) requires operator
// confirmation at or above that level unless AutoConfirm is on.
type GatePolicy struct {
	MaxRisk     RiskLevel
	ConfirmAt   RiskLevel
	AutoConfirm bool
}

// GateDecision is the verdict for one action under one policy.
type GateDecision struct {
	Allowed bool
	Reason  string
}

// Decide evaluates a classified action against the policy.
func (p GatePolicy) Decide(level RiskLevel) GateDecision {
	maxRisk := p.MaxRisk
	if maxRisk == "" || maxRisk == RiskUnknown {
		maxRisk = RiskHigh
	}
	if riskValue(level) > riskValue(maxRisk) {
		return GateDecision{
			Reason: fmt.Sprintf("BLOCKED: Action exceeds policy (max_security_risk=%s)", maxRisk),
		}
	}
	if p.ConfirmAt != "" && p.ConfirmAt != RiskUnknown && riskValue(level) >= riskValue(p.ConfirmAt) && !p.AutoConfirm {
		return GateDecision{
			Reason: fmt.Sprintf("BLOCKED: Confirmation required for risk >= %s", p.ConfirmAt),
		}
	}
	return GateDecision{Allowed: true, Reason: "ALLOWED"}
}
