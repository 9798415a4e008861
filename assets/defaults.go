package assets

import (
	"embed"
)

// DefaultConfigYAML contains the embedded default configuration.
//
//go:embed defaults/config.yaml
var DefaultConfigYAML []byte

// DefaultGatesYAML contains the embedded default gate rules.
//
//go:embed defaults/gates.yaml
var DefaultGatesYAML []byte

// DefaultSkills holds the built-in runbooks, used when no skills root exists
// on disk.
//
//go:embed defaults/skills
var DefaultSkills embed.FS

// TrainingScenariosJSON is the embedded optimizer training set.
//
//go:embed defaults/scenarios.json
var TrainingScenariosJSON []byte
