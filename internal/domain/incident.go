package domain

import "time"

// Severity ranks synthetic incidents in the fan-out queue.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Severities lists all severities, most severe first.
func Severities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}
}

// SeverityRank orders severities for queue sorting (higher is more urgent).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// SeverityWeight biases random incident generation toward the mid band.
func SeverityWeight(s Severity) int {
	switch s {
	case SeverityCritical:
		return 1
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 4
	case SeverityLow:
		return 3
	}
	return 0
}

// Incident is one synthetic unit of work for the fan-out run manager.
type Incident struct {
	ID        string    `json:"id"`
	Scenario  Scenario  `json:"scenario_id"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
}

// IncidentRequest carries everything a runner needs to resolve one incident.
type IncidentRequest struct {
	StrategyHint    string
	ErrorReport     string
	Scenario        Scenario
	Policy          GatePolicy
	TargetURL       string
	TargetContainer string
	TraceKey        string
	DryRun          bool
}

// IncidentResult reports how a runner resolved (or failed to resolve) an
// incident.
type IncidentResult struct {
	ServiceUp    bool
	StepCount    int
	Steps        []string
	BlockedSteps []string
	MaxRiskSeen  RiskLevel
	Scenario     Scenario
	Summary      string
}
