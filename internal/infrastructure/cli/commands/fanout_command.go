package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/faultline/internal/app"
	"github.com/doeshing/faultline/internal/domain"
)

// NewFanoutCommand creates the fanout command, a headless batch run that
// prints the summary when the queue drains.
func NewFanoutCommand(container *app.Container) *cobra.Command {
	var (
		mode        string
		incidents   int
		concurrency int
		seed        int64
		latencyMS   int
	)

	cmd := &cobra.Command{
		Use:   "fanout",
		Short: "Resolve a batch of synthetic incidents with a worker pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, msg := container.RunManager.Start(domain.RunConfig{
				Mode:            mode,
				Incidents:       incidents,
				Concurrency:     concurrency,
				Seed:            seed,
				SimulateLatency: time.Duration(latencyMS) * time.Millisecond,
				Policy:          container.Config.Gates.Policy(),
			})
			if !ok {
				return fmt.Errorf("start run: %s", msg)
			}
			container.RunManager.Wait()

			snap := container.RunManager.Snapshot()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run %s %s\n", snap.RunID, snap.Status)
			fmt.Fprintf(out, "total=%d fixed=%d failed=%d avg_steps=%.2f throughput=%.2f/s\n",
				snap.Summary.Total, snap.Summary.Fixed, snap.Summary.Failed,
				snap.Summary.AvgSteps, snap.Summary.ThroughputPS)
			for _, row := range snap.Completed {
				status := "FAILED"
				if row.ServiceUp {
					status = "FIXED"
				}
				fmt.Fprintf(out, "%-9s w%d %-22s %-8s %s steps=%d risk=%s\n",
					row.IncidentID, row.WorkerID, row.Scenario, row.Severity, status,
					row.StepCount, row.MaxRiskSeen)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "optimized", "Strategy mode: baseline|optimized")
	cmd.Flags().IntVar(&incidents, "incidents", 20, "Number of synthetic incidents")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Worker pool size")
	cmd.Flags().Int64Var(&seed, "seed", 7, "Incident generation seed")
	cmd.Flags().IntVar(&latencyMS, "latency-ms", 0, "Artificial per-incident latency")
	return cmd
}
