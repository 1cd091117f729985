package brew

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Strategy is one attempt in a retry policy: a sequence of brew
// invocations plus an optional human-readable confirmation gate shown
// before the sequence runs. The strategy succeeds only if every command in
// the sequence succeeds.
type Strategy struct {
	// Description names the attempt for logs and prompts.
	Description string
	// Commands are run in order, each binary-first.
	Commands [][]string
	// Confirm, when non-empty, is shown to the user; the strategy is
	// skipped unless they accept.
	Confirm string
}

// Policy is an ordered list of strategies. The executor runs them in order
// until one succeeds.
type Policy struct {
	// Goal names the overall operation for error messages.
	Goal string
	// Strategies are tried in order.
	Strategies []Strategy
	// ManualHint is suggested to the user when every strategy fails.
	ManualHint string
}

// Confirmer asks the user a yes/no question. A nil Confirmer declines
// every gated strategy.
type Confirmer func(prompt string) bool

// PolicyError reports that every strategy of a policy failed or was
// declined.
type PolicyError struct {
	Goal       string
	ManualHint string
	Attempts   []error
}

func (e *PolicyError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s failed after %d attempt(s)", e.Goal, len(e.Attempts))
	for _, err := range e.Attempts {
		b.WriteString("\n  - ")
		b.WriteString(err.Error())
	}
	if e.ManualHint != "" {
		fmt.Fprintf(&b, "\ntry manually: %s", e.ManualHint)
	}
	return b.String()
}

// ErrDeclined marks a strategy the user refused at its confirmation gate.
var ErrDeclined = errors.New("declined by user")

// Execute runs a policy against the client's runner: each strategy in
// order, gated strategies only with the user's consent, stopping at the
// first strategy whose whole command sequence succeeds.
func (c *Client) Execute(ctx context.Context, policy Policy, confirm Confirmer) error {
	var attempts []error

	for _, s := range policy.Strategies {
		if s.Confirm != "" {
			if confirm == nil || !confirm(s.Confirm) {
				attempts = append(attempts, fmt.Errorf("%s: %w", s.Description, ErrDeclined))
				continue
			}
		}

		c.log.Debug("running strategy", "goal", policy.Goal, "strategy", s.Description)
		if err := c.runSequence(ctx, s.Commands); err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%s cancelled: %w", policy.Goal, ctx.Err())
			}
			attempts = append(attempts, fmt.Errorf("%s: %w", s.Description, err))
			continue
		}
		return nil
	}

	return &PolicyError{Goal: policy.Goal, ManualHint: policy.ManualHint, Attempts: attempts}
}

func (c *Client) runSequence(ctx context.Context, commands [][]string) error {
	for _, args := range commands {
		if _, err := c.runner.Run(ctx, args[0], args[1:]...); err != nil {
			return err
		}
	}
	return nil
}

// InstallPolicy builds the retry policy for installing a formula: a plain
// install first, then a gated formula-index update followed by a
// re-install.
func InstallPolicy(formula string) Policy {
	return Policy{
		Goal: "install " + formula,
		Strategies: []Strategy{
			{
				Description: "brew install",
				Commands:    [][]string{{"brew", "install", formula}},
			},
			{
				Description: "brew update then install",
				Commands: [][]string{
					{"brew", "update"},
					{"brew", "install", formula},
				},
				Confirm: "The install failed. Update Homebrew's formula index and retry?",
			},
		},
		ManualHint: "brew install " + formula,
	}
}

// UninstallPolicy builds the retry policy for uninstalling a formula: a
// plain uninstall, then a gated forced uninstall for stuck kegs.
func UninstallPolicy(formula string) Policy {
	return Policy{
		Goal: "uninstall " + formula,
		Strategies: []Strategy{
			{
				Description: "brew uninstall",
				Commands:    [][]string{{"brew", "uninstall", formula}},
			},
			{
				Description: "brew uninstall --force",
				Commands:    [][]string{{"brew", "uninstall", "--force", formula}},
				Confirm:     "The uninstall failed. Force-remove the formula and all its versions?",
			},
		},
		ManualHint: "brew uninstall " + formula,
	}
}
