package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/faultline/internal/app"
	"github.com/doeshing/faultline/internal/domain"
)

// NewTraceCommand creates the trace command group.
func NewTraceCommand(container *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect remediation traces",
	}
	cmd.AddCommand(newTraceListCommand(container))
	cmd.AddCommand(newTraceExportCommand(container))
	cmd.AddCommand(newTraceClearCommand(container))
	return cmd
}

func newTraceListCommand(container *app.Container) *cobra.Command {
	var (
		limit  int
		search string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trace records, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := container.Traces.Records(limit, search)
			if err != nil {
				return err
			}
			displayTraceRecords(cmd.OutOrStdout(), records)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum records to show")
	cmd.Flags().StringVar(&search, "search", "", "Filter by scenario, incident id, or trace key")
	return cmd
}

func newTraceExportCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "export <dest.json>",
		Short: "Export all trace records as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.Traces.ExportJSON(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported traces to %s\n", args[0])
			return nil
		},
	}
}

func newTraceClearCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all trace records",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.Traces.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "trace store cleared")
			return nil
		},
	}
}

func displayTraceRecords(out io.Writer, records []domain.TraceRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, "no trace records")
		return
	}
	for _, rec := range records {
		status := "FAILED"
		if rec.ServiceUp {
			status = "FIXED"
		}
		fmt.Fprintf(out, "%s  %-22s %-24s %-6s steps=%-3d risk=%-7s %s\n",
			rec.Timestamp.Format("2006-01-02 15:04:05"),
			rec.Scenario,
			rec.TraceKey,
			status,
			rec.StepCount,
			rec.MaxRiskSeen,
			rec.Error)
	}
}
