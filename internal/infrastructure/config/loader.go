// Package config loads the harness configuration from YAML.
package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/faultline/assets"
	"github.com/doeshing/faultline/internal/domain"
	"github.com/doeshing/faultline/internal/pkg/filesystem"
	"github.com/doeshing/faultline/internal/ports"
)

// FileLoader loads YAML configuration from ~/.faultline/config.yaml
// (overridable via FAULTLINE_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. On first run the embedded defaults
// (config and gate rules) are written out so operators have files to edit.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := l.writeDefaults(path); err != nil {
				return domain.Config{}, err
			}
			data = assets.DefaultConfigYAML
		} else {
			return domain.Config{}, err
		}
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, err
	}
	return hydrateDefaults(cfg), nil
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom := os.Getenv("FAULTLINE_CONFIG"); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filepath.Join(filesystem.UserHomeDir(), ".faultline", "config.yaml")
}

func (l *FileLoader) writeDefaults(path string) error {
	if err := os.WriteFile(path, assets.DefaultConfigYAML, 0o600); err != nil {
		return err
	}
	rulesPath := filepath.Join(filepath.Dir(path), "gates.yaml")
	if !filesystem.Exists(rulesPath) {
		if err := os.WriteFile(rulesPath, assets.DefaultGatesYAML, 0o600); err != nil {
			return err
		}
	}
	return nil
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.Target.Port == 0 {
		cfg.Target.Port = domain.DefaultTargetPort
	}
	if cfg.Target.MismatchPort == 0 {
		cfg.Target.MismatchPort = domain.MismatchTargetPort
	}
	if cfg.Target.Lockfile == "" {
		cfg.Target.Lockfile = domain.DefaultLockfilePath
	}
	if cfg.Target.ReadyFlag == "" {
		cfg.Target.ReadyFlag = domain.DefaultReadyFlagPath
	}
	if cfg.Target.RequiredEnv == "" {
		cfg.Target.RequiredEnv = domain.DefaultRequiredEnv
	}
	if cfg.Demo.Image == "" {
		cfg.Demo.Image = domain.DefaultDemoImage
	}
	if cfg.Demo.ContainerName == "" {
		cfg.Demo.ContainerName = domain.DefaultDemoContainer
	}
	if cfg.Demo.HostPort == 0 {
		cfg.Demo.HostPort = domain.DefaultDemoHostPort
	}
	if cfg.Demo.ProbeTimeoutS == 0 {
		cfg.Demo.ProbeTimeoutS = 15
	}
	if cfg.Demo.BuildContext == "" {
		cfg.Demo.BuildContext = "target"
	}
	if cfg.Gates.MaxRisk == "" {
		cfg.Gates.MaxRisk = string(domain.RiskHigh)
	}
	if cfg.Skills.Root == "" {
		cfg.Skills.Root = ".agents/skills"
	}
	if cfg.Trace.Backend == "" {
		cfg.Trace.Backend = "sqlite"
	}
	if cfg.Dashboard.Listen == "" {
		cfg.Dashboard.Listen = "127.0.0.1:8008"
	}
	if cfg.Dashboard.MaxLogLines == 0 {
		cfg.Dashboard.MaxLogLines = 200
	}
	if cfg.Dashboard.HistoryLimit == 0 {
		cfg.Dashboard.HistoryLimit = 400
	}
	return cfg
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
