// Package security classifies proposed remediation commands against
// regex-based gate rules and exposes the canned policy demonstration.
package security

import (
	"errors"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/faultline/internal/domain"
	"github.com/doeshing/faultline/internal/pkg/filesystem"
	"github.com/doeshing/faultline/internal/ports"
)

// Gates implements the SecurityClassifier port.
type Gates struct {
	patterns []compiledPattern
}

type compiledPattern struct {
	re   *regexp.Regexp
	rule RiskPattern
}

// RiskPattern describes one regex-based classification rule.
type RiskPattern struct {
	Pattern string `yaml:"pattern"`
	Level   string `yaml:"level"`
	Message string `yaml:"message"`
}

// RulesFile is the YAML schema root.
type RulesFile struct {
	Rules struct {
		RiskPatterns []RiskPattern `yaml:"risk_patterns"`
	} `yaml:"rules"`
}

// NewGates loads gate rules from disk (or defaults when missing).
func NewGates(path string) (*Gates, error) {
	rules, err := loadRules(path)
	if err != nil {
		return nil, err
	}

	var compiled []compiledPattern
	for _, pattern := range rules.Rules.RiskPatterns {
		re, err := regexp.Compile(pattern.Pattern)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, compiledPattern{re: re, rule: pattern})
	}

	return &Gates{patterns: compiled}, nil
}

// Classify implements ports.SecurityClassifier. Commands matching no rule are
// treated as routine LOW-risk actions; when several rules match, the most
// severe level wins.
func (g *Gates) Classify(command string) (domain.RiskAssessment, error) {
	if g == nil {
		return domain.RiskAssessment{}, errors.New("gates nil")
	}
	assessment := domain.RiskAssessment{Level: domain.RiskLow}
	for _, pattern := range g.patterns {
		if !pattern.re.MatchString(command) {
			continue
		}
		level := domain.ParseRiskLevel(pattern.rule.Level)
		if domain.MoreSevere(level, assessment.Level) {
			assessment.Level = level
		}
		assessment.Reasons = append(assessment.Reasons, pattern.rule.Message)
		assessment.MatchedRules = append(assessment.MatchedRules, pattern.rule.Pattern)
	}
	return assessment, nil
}

func loadRules(path string) (RulesFile, error) {
	var rules RulesFile
	if path != "" {
		path = filesystem.ExpandPath(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		// fall back to defaults
		rules.Rules.RiskPatterns = defaultPatterns()
		return rules, nil
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return RulesFile{}, err
	}
	if len(rules.Rules.RiskPatterns) == 0 {
		rules.Rules.RiskPatterns = defaultPatterns()
	}
	return rules, nil
}

func defaultPatterns() []RiskPattern {
	return []RiskPattern{
		{Pattern: `rm\s+-rf\s+\S+`, Level: "HIGH", Message: "Recursive forced delete"},
		{Pattern: `dd\s+if=`, Level: "HIGH", Message: "Raw disk writing"},
		{Pattern: `mkfs\.`, Level: "HIGH", Message: "Formatting filesystem"},
		{Pattern: `curl[^|]*\|\s*(sudo\s+)?sh`, Level: "HIGH", Message: "Piping remote script to shell"},
		{Pattern: `socat\s+TCP-LISTEN`, Level: "MEDIUM", Message: "Rewiring listening ports"},
		{Pattern: `(pkill|kill\s+-9)\b`, Level: "MEDIUM", Message: "Force-killing processes"},
		{Pattern: `(systemctl|service)\s+restart`, Level: "MEDIUM", Message: "Restarting a system service"},
		{Pattern: `docker\s+(restart|stop|rm)\b`, Level: "MEDIUM", Message: "Disrupting a running container"},
		{Pattern: `chmod\s+777`, Level: "MEDIUM", Message: "Overly permissive chmod"},
		{Pattern: `rm\s+-f\s+/tmp/\S+`, Level: "LOW", Message: "Removing a scratch marker file"},
		{Pattern: `touch\s+/tmp/\S+`, Level: "LOW", Message: "Creating a scratch marker file"},
		{Pattern: `export\s+\w+=`, Level: "LOW", Message: "Setting an environment variable"},
	}
}

var _ ports.SecurityClassifier = (*Gates)(nil)
