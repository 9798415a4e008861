package domain

import "fmt"

// Scenario identifies one of the canned failure modes the target service can
// simulate. The value is wired through the SCENARIO environment variable and
// stays immutable for the lifetime of the target process.
type Scenario string

const (
	ScenarioStaleLockfile      Scenario = "stale_lockfile"
	ScenarioBadEnvConfig       Scenario = "bad_env_config"
	ScenarioReadinessProbeFail Scenario = "readiness_probe_fail"
	ScenarioPortMismatch       Scenario = "port_mismatch"
)

// Scenarios returns all known scenarios in stable order.
func Scenarios() []Scenario {
	return []Scenario{
		ScenarioStaleLockfile,
		ScenarioBadEnvConfig,
		ScenarioReadinessProbeFail,
		ScenarioPortMismatch,
	}
}

// ParseScenario validates a raw scenario string.
func ParseScenario(value string) (Scenario, error) {
	s := Scenario(value)
	if !s.Valid() {
		return "", fmt.Errorf("unknown scenario %q", value)
	}
	return s, nil
}

// Valid reports whether the scenario is one of the known failure modes.
func (s Scenario) Valid() bool {
	switch s {
	case ScenarioStaleLockfile, ScenarioBadEnvConfig, ScenarioReadinessProbeFail, ScenarioPortMismatch:
		return true
	}
	return false
}

// ErrorReport renders the incident report an operator (or remediation agent)
// would receive for this scenario.
func (s Scenario) ErrorReport() string {
	switch s {
	case ScenarioStaleLockfile:
		return "Service at localhost:5000 returns HTTP 500 after a previous crash."
	case ScenarioBadEnvConfig:
		return "Service at localhost:5000 fails with missing REQUIRED_API_KEY."
	case ScenarioReadinessProbeFail:
		return "Service startup passes but readiness probe stays unhealthy due to missing ready flag."
	case ScenarioPortMismatch:
		return "Service probe on :5000 fails; process may be listening on a different port."
	}
	return fmt.Sprintf("Unknown failure mode %q reported by the target service.", string(s))
}

// ProposedRemediation returns the out-of-band command that would fix this
// scenario inside the named container. The dispatcher never runs these itself;
// they are surfaced to the operator for approval.
func (s Scenario) ProposedRemediation(container string) string {
	switch s {
	case ScenarioStaleLockfile:
		return fmt.Sprintf("docker exec %s rm -f /tmp/service.lock", container)
	case ScenarioBadEnvConfig:
		return fmt.Sprintf("docker exec %s sh -lc 'export REQUIRED_API_KEY=demo-key'", container)
	case ScenarioReadinessProbeFail:
		return fmt.Sprintf("docker exec %s sh -lc 'touch /tmp/ready.flag'", container)
	case ScenarioPortMismatch:
		return fmt.Sprintf("docker exec %s sh -lc 'ss -lntp || netstat -lnt'", container)
	}
	return fmt.Sprintf("docker exec %s sh -lc 'echo no-op'", container)
}
