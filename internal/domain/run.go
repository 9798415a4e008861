package domain

import "time"

// RunStatus tracks the fan-out run lifecycle.
type RunStatus string

const (
	RunIdle      RunStatus = "idle"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunCancelled RunStatus = "cancelled"
	RunFailed    RunStatus = "failed"
)

// RunConfig parameterizes one fan-out run.
type RunConfig struct {
	Mode            string        `json:"mode"`
	Optimizer       string        `json:"optimizer"`
	Incidents       int           `json:"incidents"`
	Concurrency     int           `json:"concurrency"`
	Seed            int64         `json:"seed"`
	SimulateLatency time.Duration `json:"simulate_latency"`
	TargetURL       string        `json:"target_url"`
	TargetContainer string        `json:"target_container"`
	Policy          GatePolicy    `json:"-"`
	StrategyHint    string        `json:"strategy_hint,omitempty"`
	StrategyScore   *float64      `json:"strategy_score,omitempty"`
}

// RunSummary aggregates live metrics for a run.
type RunSummary struct {
	Total         int     `json:"total"`
	Queued        int     `json:"queue"`
	Active        int     `json:"active"`
	Completed     int     `json:"completed"`
	Fixed         int     `json:"fixed"`
	Failed        int     `json:"failed"`
	AvgSteps      float64 `json:"avg_steps"`
	AvgLatencyS   float64 `json:"avg_latency_s"`
	ThroughputPS  float64 `json:"throughput_per_s"`
}

// ResultRow is one completed incident in the dashboard state.
type ResultRow struct {
	IncidentID  string    `json:"incident_id"`
	WorkerID    int       `json:"worker_id"`
	Scenario    Scenario  `json:"scenario_id"`
	Severity    Severity  `json:"severity"`
	ServiceUp   bool      `json:"service_up"`
	StepCount   int       `json:"step_count"`
	LatencyS    float64   `json:"latency_s"`
	MaxRiskSeen RiskLevel `json:"max_security_risk_seen"`
	TraceKey    string    `json:"trace_key"`
	Error       string    `json:"error,omitempty"`
}

// ActiveItem is an incident currently held by a worker.
type ActiveItem struct {
	WorkerID   int      `json:"worker_id"`
	IncidentID string   `json:"incident_id"`
	Scenario   Scenario `json:"scenario_id"`
	Severity   Severity `json:"severity"`
}

// LogEntry is one line of the rolling run log.
type LogEntry struct {
	TS      time.Time `json:"ts"`
	Message string    `json:"message"`
}

// RunState is the full dashboard snapshot.
type RunState struct {
	RunID      string       `json:"run_id,omitempty"`
	Status     RunStatus    `json:"status"`
	StartedAt  *time.Time   `json:"started_at,omitempty"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
	Config     RunConfig    `json:"config"`
	Summary    RunSummary   `json:"summary"`
	Queue      []Incident   `json:"queue"`
	Active     []ActiveItem `json:"active"`
	Completed  []ResultRow  `json:"completed"`
	Logs       []LogEntry   `json:"logs"`
	Env        EnvStatus    `json:"env"`
	Error      string       `json:"error,omitempty"`
}

// EnvStatus reports which provider credentials are visible to the process.
type EnvStatus map[string]bool
