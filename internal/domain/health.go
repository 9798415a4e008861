package domain

import "time"

// HealthStatus indicates doctor check outcomes.
type HealthStatus string

const (
	HealthOK    HealthStatus = "ok"
	HealthWarn  HealthStatus = "warn"
	HealthError HealthStatus = "error"
)

// HealthCheck captures a single diagnostic result.
type HealthCheck struct {
	Name    string
	Status  HealthStatus
	Details string
}

// HealthReport aggregates checks.
type HealthReport struct {
	Checks []HealthCheck
}

// ProbeResult is the outcome of one HTTP health probe against the target.
type ProbeResult struct {
	URL        string
	StatusCode int
	Body       string
	Latency    time.Duration
}

// Healthy reports whether the probe saw a 200.
func (r ProbeResult) Healthy() bool {
	return r.StatusCode == 200
}

// Settled reports whether the probe reached a state the demo treats as final
// (the target answered, healthy or not).
func (r ProbeResult) Settled() bool {
	switch r.StatusCode {
	case 200, 500, 403:
		return true
	}
	return false
}
