// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// Application services depend on these contracts; concrete adapters live in
// the infrastructure layer (docker CLI, sqlite, HTTP prober, cobra prompter).
package ports

import (
	"context"

	"github.com/doeshing/faultline/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.faultline/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// SecurityClassifier scores a shell command against the gate rules.
type SecurityClassifier interface {
	Classify(command string) (domain.RiskAssessment, error)
}

// SkillRepository discovers and selects markdown runbooks.
type SkillRepository interface {
	List() ([]domain.Skill, error)
	Get(id string) (domain.Skill, string, error)
	Select(scenario domain.Scenario, errorReport string) (domain.SkillSelection, error)
}

// TraceRepository persists remediation outcomes.
type TraceRepository interface {
	Append(domain.TraceRecord) error
	Records(limit int, search string) ([]domain.TraceRecord, error)
	Clear() error
	ExportJSON(dest string) error
}

// ContainerRuntime drives the container engine hosting the target service.
type ContainerRuntime interface {
	Available(ctx context.Context) bool
	Build(ctx context.Context, image, contextDir string) error
	Exists(ctx context.Context, name string) (bool, error)
	Run(ctx context.Context, spec domain.ContainerSpec) error
	Remove(ctx context.Context, name string) error
	Exec(ctx context.Context, name string, command string) (string, error)
}

// Prober issues HTTP health checks against the target service.
type Prober interface {
	Check(ctx context.Context, url string) (domain.ProbeResult, error)
	WaitSettled(ctx context.Context, url string) (domain.ProbeResult, error)
}

// IncidentRunner resolves one incident end-to-end and reports the outcome.
type IncidentRunner interface {
	Resolve(ctx context.Context, req domain.IncidentRequest) (domain.IncidentResult, error)
}

// CommandExecutor runs an approved remediation command on the host.
type CommandExecutor interface {
	Execute(ctx context.Context, command string) (domain.ExecutionResult, error)
}

// InterventionPrompter asks the operator to approve, reject, or edit a
// proposed remediation command.
type InterventionPrompter interface {
	Propose(command string, risk domain.RiskAssessment) (domain.InterventionDecision, error)
	Enabled() bool
}

// EnvReporter loads project env files and reports credential visibility.
type EnvReporter interface {
	LoadProject(path string) error
	Status() domain.EnvStatus
}

// Logger provides structured logging abstraction for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
