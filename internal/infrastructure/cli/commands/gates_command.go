package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/faultline/internal/app"
	"github.com/doeshing/faultline/internal/domain"
)

// NewGatesCommand creates the gates command, a safety-gates walkthrough that
// classifies representative actions under three policies.
func NewGatesCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "gates",
		Short: "Demonstrate the security gate policies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGatesDemo(cmd.OutOrStdout(), container)
		},
	}
}

type gateCase struct {
	title  string
	policy domain.GatePolicy
}

func runGatesDemo(out io.Writer, container *app.Container) error {
	actions := []string{
		"rm -rf /tmp/*",
		"rm -f /tmp/service.lock",
	}
	cases := []gateCase{
		{
			title:  "Case 1: max_security_risk=MEDIUM",
			policy: domain.GatePolicy{MaxRisk: domain.RiskMedium},
		},
		{
			title:  "Case 2: require_confirmation_for_risk=MEDIUM (auto_confirm=false)",
			policy: domain.GatePolicy{MaxRisk: domain.RiskHigh, ConfirmAt: domain.RiskMedium},
		},
		{
			title:  "Case 3: require_confirmation_for_risk=MEDIUM (auto_confirm=true)",
			policy: domain.GatePolicy{MaxRisk: domain.RiskHigh, ConfirmAt: domain.RiskMedium, AutoConfirm: true},
		},
	}

	fmt.Fprintln(out, "=== Security Gates Demo ===")
	fmt.Fprintln(out, "Representative actions are classified by the loaded gate rules.")
	fmt.Fprintln(out, "No commands are executed.")
	fmt.Fprintln(out)

	for _, c := range cases {
		fmt.Fprintln(out, c.title)
		fmt.Fprintf(out, "policy: max_security_risk=%s require_confirmation_for_risk=%s auto_confirm=%v\n",
			c.policy.MaxRisk, orNone(c.policy.ConfirmAt), c.policy.AutoConfirm)

		for _, action := range actions {
			risk, err := container.Classifier.Classify(action)
			if err != nil {
				return err
			}
			decision := c.policy.Decide(risk.Level)

			fmt.Fprintf(out, "Agent Action: %s\n", action)
			fmt.Fprintf(out, "Security Risk: %s\n", risk.Level)
			fmt.Fprintln(out, decision.Reason)
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, strings.Repeat("-", 72))
	}
	return nil
}

func orNone(level domain.RiskLevel) string {
	if level == "" {
		return "none"
	}
	return string(level)
}
