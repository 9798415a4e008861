package domain

// Skill is a markdown runbook discovered under the skills root.
type Skill struct {
	ID      string
	Path    string
	Title   string
	Summary string
}

// SkillSelection pairs a resolved skill with the strategy hint the harness
// should carry into remediation.
type SkillSelection struct {
	SkillID      string
	SkillPath    string
	StrategyHint string
}
