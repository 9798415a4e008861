package cli

import (
	"fmt"
	"strings"

	"github.com/doeshing/faultline/internal/application/demo"
)

// RenderDemoOutcome prints the demo result in a friendly, ASCII-only format.
func RenderDemoOutcome(outcome demo.Outcome) {
	fmt.Println("\n=== Demo Result ===")
	fmt.Printf("scenario: %s\n", outcome.Scenario)
	fmt.Printf("target_url: %s\n", outcome.TargetURL)
	if outcome.Container != "" {
		fmt.Printf("container: %s\n", outcome.Container)
	}
	if outcome.SkillID != "" {
		fmt.Printf("skill: %s\n", outcome.SkillID)
	}
	fmt.Printf("strategy_hint: %s\n", outcome.StrategyHint)

	if outcome.Proposed != "" {
		fmt.Printf("\nproposed: %s\n", outcome.Proposed)
		fmt.Printf("risk: %s\n", strings.ToUpper(string(outcome.Risk.Level)))
		fmt.Println(outcome.Gate.Reason)
		if outcome.Intervention != "" {
			fmt.Printf("intervention: %s\n", outcome.Intervention)
		}
		if outcome.Executed {
			fmt.Printf("executed: yes (exit=%d)\n", outcome.ExecExitCode)
		} else {
			fmt.Println("executed: no")
		}
		fmt.Printf("\ninitial healthcheck: HTTP %s\n", statusText(outcome.InitialStatus))
		fmt.Printf("final healthcheck:   HTTP %s\n", statusText(outcome.FinalStatus))
	}

	if outcome.Result.StepCount > 0 {
		fmt.Printf("\n%s\n", outcome.Result.Summary)
		fmt.Printf("step_count: %d\n", outcome.Result.StepCount)
		fmt.Printf("max_security_risk_seen: %s\n", outcome.Result.MaxRiskSeen)
		for _, step := range outcome.Result.Steps {
			fmt.Printf("  $ %s\n", step)
		}
		for _, blocked := range outcome.Result.BlockedSteps {
			fmt.Printf("  x %s (blocked)\n", blocked)
		}
	}

	fmt.Printf("\nservice_up: %v\n", outcome.ServiceUp)
	fmt.Printf("trace_key: %s\n", outcome.TraceKey)
}

func statusText(code int) string {
	if code == 0 {
		return "unreachable"
	}
	return fmt.Sprintf("%d", code)
}
