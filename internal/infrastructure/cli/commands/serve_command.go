// Package commands holds the faultline subcommands.
package commands

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/doeshing/faultline/internal/app"
	"github.com/doeshing/faultline/internal/domain"
	"github.com/doeshing/faultline/internal/infrastructure/target"
)

// NewServeCommand creates the serve command, which runs the target service
// in the foreground.
func NewServeCommand(container *app.Container) *cobra.Command {
	var (
		scenario string
		port     int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the failure-scenario target service",
		Long: "Runs the health dispatcher in the foreground. With --scenario (or the\n" +
			"SCENARIO environment variable) one failure mode is pinned; without it the\n" +
			"service exposes /service1, /service2 and /service3 independently.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if scenario == "" {
				scenario = os.Getenv(domain.ScenarioEnvVar)
			}
			var sc domain.Scenario
			if scenario != "" {
				parsed, err := domain.ParseScenario(scenario)
				if err != nil {
					return err
				}
				sc = parsed
			}

			settings := container.Config.Target
			srv := target.New(settings, sc, container.Logger)
			if err := srv.BootstrapMarkers(); err != nil {
				return fmt.Errorf("bootstrap markers: %w", err)
			}

			if port == 0 {
				port = srv.Port(settings)
			}
			addr := fmt.Sprintf(":%d", port)
			container.Logger.Info("target service listening", map[string]interface{}{
				"addr":     addr,
				"scenario": string(sc),
			})
			return http.ListenAndServe(addr, srv.Handler())
		},
	}

	cmd.Flags().StringVar(&scenario, "scenario", "", "Pin a single failure scenario (default: SCENARIO env, else multi-scenario)")
	cmd.Flags().IntVar(&port, "port", 0, "Override the listen port")
	return cmd
}
