package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	appconfig "github.com/doeshing/faultline/internal/application/config"
	"github.com/doeshing/faultline/internal/application/demo"
	"github.com/doeshing/faultline/internal/application/doctor"
	"github.com/doeshing/faultline/internal/application/optimize"
	"github.com/doeshing/faultline/internal/domain"
	"github.com/doeshing/faultline/internal/infrastructure/config"
	"github.com/doeshing/faultline/internal/infrastructure/docker"
	"github.com/doeshing/faultline/internal/infrastructure/executor"
	"github.com/doeshing/faultline/internal/infrastructure/probe"
	"github.com/doeshing/faultline/internal/infrastructure/runtimeenv"
	"github.com/doeshing/faultline/internal/infrastructure/security"
	"github.com/doeshing/faultline/internal/infrastructure/skills"
	"github.com/doeshing/faultline/internal/infrastructure/trace"
	"github.com/doeshing/faultline/internal/pkg/filesystem"
	"github.com/doeshing/faultline/internal/pkg/logger"
	"github.com/doeshing/faultline/internal/ports"
	"github.com/doeshing/faultline/internal/services"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	ConfigProvider ports.ConfigProvider
	Logger         ports.Logger

	Classifier ports.SecurityClassifier
	Skills     ports.SkillRepository
	Traces     ports.TraceRepository
	Runtime    ports.ContainerRuntime
	Prober     ports.Prober
	Executor   ports.CommandExecutor
	Env        ports.EnvReporter

	SimRunner  *services.SimRunner
	RunManager *services.RunManager

	DemoService     *demo.Service
	DoctorService   *doctor.Service
	OptimizeService *optimize.Service
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := appconfig.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.NewStd(verbose)

	gates, err := security.NewGates(gateRulesPath(cfg))
	if err != nil {
		gates, err = security.NewGates("")
		if err != nil {
			return nil, err
		}
	}

	skillRepo := skills.NewFileRepository(cfg.Skills.Root)
	traceStore := buildTraceStore(cfg)
	runtime := docker.NewCLIRuntime(log)
	prober := probe.NewHTTPProber()
	localExec := executor.NewLocalExecutor("")
	envReporter := runtimeenv.NewReporter()

	simRunner := services.NewSimRunner(gates, log)
	runManager := services.NewRunManager(simRunner, envReporter, traceStore, log, cfg.Dashboard)

	demoService := &demo.Service{
		Config:     cfgLoader,
		Runtime:    runtime,
		Prober:     prober,
		Skills:     skillRepo,
		Classifier: gates,
		Executor:   localExec,
		Runner:     simRunner,
		Traces:     traceStore,
		Env:        envReporter,
		Logger:     log,
	}

	doctorService := &doctor.Service{
		ConfigProvider: cfgLoader,
		Classifier:     gates,
		Skills:         skillRepo,
		Runtime:        runtime,
		Traces:         traceStore,
		Env:            envReporter,
	}

	optimizeService := &optimize.Service{
		Runner: simRunner,
		Logger: log,
	}

	return &Container{
		Config:          cfg,
		ConfigProvider:  cfgLoader,
		Logger:          log,
		Classifier:      gates,
		Skills:          skillRepo,
		Traces:          traceStore,
		Runtime:         runtime,
		Prober:          prober,
		Executor:        localExec,
		Env:             envReporter,
		SimRunner:       simRunner,
		RunManager:      runManager,
		DemoService:     demoService,
		DoctorService:   doctorService,
		OptimizeService: optimizeService,
	}, nil
}

func gateRulesPath(cfg domain.Config) string {
	if cfg.Gates.RulesFile != "" {
		return filesystem.ExpandPath(cfg.Gates.RulesFile)
	}
	return filepath.Join(filesystem.UserHomeDir(), ".faultline", "gates.yaml")
}

func buildTraceStore(cfg domain.Config) ports.TraceRepository {
	if strings.EqualFold(cfg.Trace.Backend, "jsonl") {
		return trace.NewJSONLStore(cfg.Trace.Dir)
	}
	return trace.NewSQLiteStore(cfg.Trace.Dir)
}
