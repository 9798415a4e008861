package domain

// ContainerSpec describes how the demo launches the target container.
type ContainerSpec struct {
	Name     string
	Image    string
	HostPort int
	// ContainerPort is the port the target binds inside the container.
	ContainerPort int
	Env           map[string]string
	AutoRemove    bool
	Detach        bool
}

// ExecutionResult wraps details from the command executor.
type ExecutionResult struct {
	Ran        bool
	Stdout     string
	Stderr     string
	ExitCode   int
	DurationMS int64
	Err        error
}

// InterventionChoice is the operator's response to a proposed command.
type InterventionChoice string

const (
	InterventionApprove InterventionChoice = "approve"
	InterventionReject  InterventionChoice = "reject"
	InterventionEdit    InterventionChoice = "edit"
)

// InterventionDecision carries the choice plus the (possibly edited) command.
type InterventionDecision struct {
	Choice  InterventionChoice
	Command string
}
