// Package cli wires the cobra command tree for the faultline binary.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doeshing/faultline/internal/app"
	"github.com/doeshing/faultline/internal/application/demo"
	"github.com/doeshing/faultline/internal/application/optimize"
	"github.com/doeshing/faultline/internal/domain"
	"github.com/doeshing/faultline/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}
	container.DemoService.Prompter = NewPrompter(nil, nil)

	root := &cobra.Command{
		Use:   "faultline",
		Short: "faultline - failure-scenario demo harness",
		Long: "faultline boots a deliberately broken target service, diagnoses it,\n" +
			"gates the remediation through a security policy, and verifies recovery.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newDemoCommand(container))
	root.AddCommand(commands.NewServeCommand(container))
	root.AddCommand(commands.NewGatesCommand(container))
	root.AddCommand(commands.NewSkillsCommand(container))
	root.AddCommand(commands.NewDashboardCommand(container))
	root.AddCommand(commands.NewFanoutCommand(container))
	root.AddCommand(commands.NewDoctorCommand(container))
	root.AddCommand(commands.NewTraceCommand(container))
	root.AddCommand(commands.NewOptimizeCommand(container))
	root.AddCommand(commands.NewVersionCommand())
	return root, nil
}

func newDemoCommand(container *app.Container) *cobra.Command {
	var (
		scenario      string
		mode          string
		optimizer     string
		simulate      bool
		skipBuild     bool
		keepContainer bool
		interactive   bool
		envFile       string
		maxRisk       string
		confirmAt     string
		autoConfirm   bool
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the single-incident remediation demo",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			sc, err := domain.ParseScenario(scenario)
			if err != nil {
				return err
			}

			hint := ""
			if mode == "optimized" && optimizer != "manual" {
				result, err := resolveHint(ctx, container.OptimizeService, optimizer)
				if err != nil {
					return err
				}
				hint = result.BestHint
				fmt.Printf("[optimizer] method=%s score=%.3f\n", optimizer, result.BestScore)
			}

			outcome, err := container.DemoService.Run(ctx, demo.Options{
				Scenario:      sc,
				Mode:          mode,
				StrategyHint:  hint,
				Simulate:      simulate,
				SkipBuild:     skipBuild,
				KeepContainer: keepContainer,
				Interactive:   interactive,
				EnvFile:       envFile,
				MaxRisk:       domain.ParseRiskLevel(maxRisk),
				ConfirmAt:     domain.ParseRiskLevel(confirmAt),
				AutoConfirm:   autoConfirm,
			})
			RenderDemoOutcome(outcome)
			return err
		},
	}

	cmd.Flags().StringVar(&scenario, "scenario", string(domain.ScenarioStaleLockfile), "Failure scenario to inject")
	cmd.Flags().StringVar(&mode, "mode", "optimized", "Strategy mode: baseline|optimized")
	cmd.Flags().StringVar(&optimizer, "optimizer", "manual", "How to choose the strategy hint: manual|pareto|iterative")
	cmd.Flags().BoolVar(&simulate, "simulate", false, "Run the remediation in simulation, without docker")
	cmd.Flags().BoolVar(&skipBuild, "skip-build", false, "Skip building the target image")
	cmd.Flags().BoolVar(&keepContainer, "keep-container", false, "Leave the target container running after the demo")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Pause for approve/reject/edit on the proposed remediation")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Optional path to a .env file")
	cmd.Flags().StringVar(&maxRisk, "max-security-risk", "", "Block actions above this risk level (LOW|MEDIUM|HIGH)")
	cmd.Flags().StringVar(&confirmAt, "require-confirmation-for-risk", "", "Require confirmation at or above this risk level")
	cmd.Flags().BoolVar(&autoConfirm, "auto-confirm", false, "Auto-approve actions that would require confirmation")

	return cmd
}

// resolveHint runs the optimizer against the embedded training set with a
// spinner on stderr since candidate evaluation takes a moment.
func resolveHint(ctx context.Context, svc *optimize.Service, optimizer string) (optimize.Result, error) {
	examples, err := optimize.LoadExamples("")
	if err != nil {
		return optimize.Result{}, err
	}

	spinner := NewSpinner(os.Stderr)
	spinner.Start()
	defer spinner.Stop()

	return svc.BestHint(ctx, optimizer, examples, 3)
}
