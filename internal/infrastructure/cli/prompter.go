package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/doeshing/faultline/internal/domain"
	"github.com/doeshing/faultline/internal/ports"
)

// Prompter implements InterventionPrompter using stdin/stdout. The operator
// can approve, reject, or edit a proposed remediation command.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter constructs a prompter referencing stdio.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Enabled indicates the prompter is interactive.
func (p *Prompter) Enabled() bool {
	return true
}

// Propose shows the command and its risk, then reads the operator's choice.
func (p *Prompter) Propose(command string, risk domain.RiskAssessment) (domain.InterventionDecision, error) {
	fmt.Fprintln(p.out, "\n=== Live Intervention Mode ===")
	fmt.Fprintf(p.out, "Agent proposes: %s\n", command)
	fmt.Fprintf(p.out, "Security risk: %s\n", strings.ToUpper(string(risk.Level)))
	for _, reason := range risk.Reasons {
		fmt.Fprintf(p.out, " - %s\n", reason)
	}
	fmt.Fprint(p.out, "\n[y]es / [n]o / [e]dit > ")

	line, err := p.in.ReadString('\n')
	if err != nil {
		return domain.InterventionDecision{}, err
	}
	choice := strings.ToLower(strings.TrimSpace(line))

	switch {
	case strings.HasPrefix(choice, "y"):
		fmt.Fprintln(p.out, "Executing approved command...")
		return domain.InterventionDecision{Choice: domain.InterventionApprove, Command: command}, nil
	case strings.HasPrefix(choice, "e"):
		fmt.Fprint(p.out, "Modified command: ")
		edited, err := p.in.ReadString('\n')
		if err != nil {
			return domain.InterventionDecision{}, err
		}
		edited = strings.TrimSpace(edited)
		if edited == "" {
			fmt.Fprintln(p.out, "Empty edit; skipping manual intervention step.")
			return domain.InterventionDecision{Choice: domain.InterventionReject}, nil
		}
		fmt.Fprintln(p.out, "Executing modified command...")
		return domain.InterventionDecision{Choice: domain.InterventionEdit, Command: edited}, nil
	default:
		fmt.Fprintln(p.out, "Rejected command; skipping manual intervention step.")
		return domain.InterventionDecision{Choice: domain.InterventionReject}, nil
	}
}

var _ ports.InterventionPrompter = (*Prompter)(nil)
