package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/faultline/internal/app"
	"github.com/doeshing/faultline/internal/domain"
	"github.com/doeshing/faultline/internal/services"
)

// NewSkillsCommand creates the skills command group.
func NewSkillsCommand(container *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skills",
		Short: "Inspect the runbook library",
	}
	cmd.AddCommand(newSkillsListCommand(container))
	cmd.AddCommand(newSkillsShowCommand(container))
	cmd.AddCommand(newSkillsRouteCommand(container))
	return cmd
}

func newSkillsListCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available runbooks",
		RunE: func(cmd *cobra.Command, args []string) error {
			skills, err := container.Skills.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, skill := range skills {
				fmt.Fprintf(out, "%-24s %s\n", skill.ID, skill.Summary)
			}
			return nil
		},
	}
}

func newSkillsShowCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "show <skill-id>",
		Short: "Print a runbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			skill, body, err := container.Skills.Get(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n\n", skill.Title)
			fmt.Fprintln(out, body)
			return nil
		},
	}
}

func newSkillsRouteCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "route <scenario-or-report>",
		Short: "Show which runbook an incident report routes to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return routeSkill(cmd.OutOrStdout(), container, args[0])
		},
	}
}

func routeSkill(out io.Writer, container *app.Container, input string) error {
	scenario, err := domain.ParseScenario(input)
	report := input
	if err != nil {
		// Not a scenario name; treat the input as a free-form incident
		// report and infer the scenario from it.
		scenario = services.InferScenario(input)
	} else {
		report = scenario.ErrorReport()
	}

	selection, err := container.Skills.Select(scenario, report)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "scenario: %s\n", scenario)
	fmt.Fprintf(out, "skill: %s\n", selection.SkillID)
	fmt.Fprintf(out, "hint: %s\n", selection.StrategyHint)
	return nil
}
