package domain

// Config mirrors ~/.faultline/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	Target              TargetSettings    `yaml:"target"`
	Demo                DemoSettings      `yaml:"demo"`
	Gates               GateSettings      `yaml:"gates"`
	Skills              SkillSettings     `yaml:"skills"`
	Trace               TraceSettings     `yaml:"trace"`
	Dashboard           DashboardSettings `yaml:"dashboard"`
}

// TargetSettings configures the failure-scenario target service.
type TargetSettings struct {
	Port         int    `yaml:"port"`
	MismatchPort int    `yaml:"mismatch_port"`
	Lockfile     string `yaml:"lockfile"`
	ReadyFlag    string `yaml:"ready_flag"`
	RequiredEnv  string `yaml:"required_env"`
	ReadyAtBoot  bool   `yaml:"ready_at_boot"`
}

// DemoSettings configures the single-incident demo orchestrator.
type DemoSettings struct {
	Image          string `yaml:"image"`
	ContainerName  string `yaml:"container_name"`
	HostPort       int    `yaml:"host_port"`
	ProbeTimeoutS  int    `yaml:"probe_timeout"`
	KeepContainer  bool   `yaml:"keep_container"`
	BuildContext   string `yaml:"build_context"`
}

// GateSettings defines security gate behavior.
type GateSettings struct {
	Enabled     bool   `yaml:"enabled"`
	RulesFile   string `yaml:"rules_file"`
	MaxRisk     string `yaml:"max_risk"`
	ConfirmAt   string `yaml:"confirm_at"`
	AutoConfirm bool   `yaml:"auto_confirm"`
}

// Policy converts the settings into a gate policy.
func (g GateSettings) Policy() GatePolicy {
	p := GatePolicy{
		MaxRisk:     ParseRiskLevel(g.MaxRisk),
		AutoConfirm: g.AutoConfirm,
	}
	if g.ConfirmAt != "" {
		p.ConfirmAt = ParseRiskLevel(g.ConfirmAt)
	}
	return p
}

// SkillSettings locates the runbook library.
type SkillSettings struct {
	Root string `yaml:"root"`
}

// TraceSettings configures the trace store.
type TraceSettings struct {
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
}

// DashboardSettings configures the fan-out dashboard server.
type DashboardSettings struct {
	Listen       string `yaml:"listen"`
	MaxLogLines  int    `yaml:"max_log_lines"`
	HistoryLimit int    `yaml:"history_limit"`
}
