package domain

// Well-known defaults for the target service and demo harness. The probe side
// always expects DefaultTargetPort; only the port_mismatch scenario binds
// MismatchTargetPort.
const (
	DefaultTargetPort  = 5000
	MismatchTargetPort = 5001

	DefaultLockfilePath  = "/tmp/service.lock"
	DefaultReadyFlagPath = "/tmp/ready.flag"
	DefaultRequiredEnv   = "REQUIRED_API_KEY"

	// ScenarioEnvVar selects single-scenario mode when set on the target
	// process; unset means multi-scenario mode.
	ScenarioEnvVar = "SCENARIO"

	DefaultDemoImage     = "faultline-target:latest"
	DefaultDemoContainer = "faultline-demo"
	DefaultDemoHostPort  = 15000
)

// BaselineHint is the unoptimized strategy fed to runners in baseline mode.
const BaselineHint = "Fix the bug."

// OptimizedHint is the hand-tuned strategy used when no optimizer runs.
const OptimizedHint = "Follow an incident-first runbook: check /tmp/service.lock and /tmp/ready.flag, verify REQUIRED_API_KEY, " +
	"check active listening ports with ss -lntp, apply the minimal corrective action, and re-verify with curl localhost:5000."
