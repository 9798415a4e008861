package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/faultline/internal/app"
	"github.com/doeshing/faultline/internal/application/optimize"
)

// NewOptimizeCommand creates the optimize command.
func NewOptimizeCommand(container *app.Container) *cobra.Command {
	var (
		optimizer    string
		rounds       int
		trainingData string
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Search for the best strategy hint against the training scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			examples, err := optimize.LoadExamples(trainingData)
			if err != nil {
				return err
			}

			result, err := container.OptimizeService.BestHint(cmd.Context(), optimizer, examples, rounds)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "[%s] scenarios:", result.Optimizer)
			for i, ex := range examples {
				if i > 0 {
					fmt.Fprint(out, ",")
				}
				fmt.Fprintf(out, " %s", ex.ScenarioID)
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "[%s] best_hint: %s\n", result.Optimizer, result.BestHint)
			fmt.Fprintf(out, "[%s] best_score: %.3f\n", result.Optimizer, result.BestScore)
			for _, round := range result.History {
				fmt.Fprintf(out, "[%s] round=%d score=%.3f\n", result.Optimizer, round.Round, round.Score)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&optimizer, "optimizer", "pareto", "Search method: pareto|iterative")
	cmd.Flags().IntVar(&rounds, "rounds", 3, "Refinement rounds for the iterative optimizer")
	cmd.Flags().StringVar(&trainingData, "training-data", "", "Path to a scenarios JSON file (default: embedded set)")
	return cmd
}
