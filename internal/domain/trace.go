package domain

import "time"

// TraceRecord is one persisted remediation outcome.
type TraceRecord struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	RunID       string    `json:"run_id,omitempty"`
	IncidentID  string    `json:"incident_id,omitempty"`
	Scenario    Scenario  `json:"scenario_id"`
	Severity    Severity  `json:"severity,omitempty"`
	ServiceUp   bool      `json:"service_up"`
	StepCount   int       `json:"step_count"`
	LatencyMS   int64     `json:"latency_ms"`
	MaxRiskSeen RiskLevel `json:"max_security_risk_seen"`
	TraceKey    string    `json:"trace_key,omitempty"`
	Error       string    `json:"error,omitempty"`
}
