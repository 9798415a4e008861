package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/doeshing/faultline/internal/app"
	"github.com/doeshing/faultline/internal/infrastructure/dashboard"
)

// NewDashboardCommand creates the dashboard command.
func NewDashboardCommand(container *app.Container) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Serve the incident fan-out dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if listen == "" {
				listen = container.Config.Dashboard.Listen
			}

			server := dashboard.NewServer(
				container.RunManager,
				container.Env,
				container.Logger,
				container.Config.Gates.Policy(),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "dashboard: http://%s\n", listen)
			return server.ListenAndServe(ctx, listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default from config)")
	return cmd
}
