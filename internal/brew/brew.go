// Package brew wraps the Homebrew CLI. phpvm treats Homebrew as an opaque,
// retryable collaborator: only exit status and expected output substrings
// are interpreted, never its internals.
package brew

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/phpvm/phpvm/internal/phpver"
)

// Runner executes an external command and returns its stdout. It is the
// test seam for everything in this package.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// CommandError reports a failed external command with its captured output.
type CommandError struct {
	Args   []string
	Output string
	Cause  error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %q failed: %v", strings.Join(e.Args, " "), e.Cause)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Cause
}

// execRunner runs commands through os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		output := string(out)
		if exitErr, ok := err.(*exec.ExitError); ok {
			output += string(exitErr.Stderr)
		}
		return "", &CommandError{Args: append([]string{name}, args...), Output: output, Cause: err}
	}
	return string(out), nil
}

// Client issues Homebrew commands.
type Client struct {
	runner Runner
	log    *slog.Logger
}

// NewClient creates a client backed by the real brew binary.
func NewClient(log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{runner: execRunner{}, log: log}
}

// NewClientWithRunner creates a client with a custom runner, for tests.
func NewClientWithRunner(r Runner, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{runner: r, log: log}
}

// phpFormula matches the unversioned formula or a versioned "php@X.Y" one.
var phpFormula = regexp.MustCompile(`^php(@\d+\.\d+)?$`)

// formulaToID maps a formula name to its canonical identifier. The
// unversioned formula is the default sentinel.
func formulaToID(formula string) (phpver.ID, bool) {
	if !phpFormula.MatchString(formula) {
		return "", false
	}
	if formula == phpver.Name {
		return phpver.Default, true
	}
	return phpver.ID(formula), true
}

// ListInstalled returns the installed PHP formulae as canonical
// identifiers, sorted ascending with the default sentinel last.
func (c *Client) ListInstalled(ctx context.Context) ([]phpver.ID, error) {
	out, err := c.runner.Run(ctx, "brew", "list", "--formula")
	if err != nil {
		return nil, fmt.Errorf("list installed formulae: %w", err)
	}

	var ids []phpver.ID
	for _, line := range strings.Split(out, "\n") {
		// `brew list` may emit multiple names per line.
		for _, field := range strings.Fields(line) {
			if id, ok := formulaToID(field); ok {
				ids = append(ids, id)
			}
		}
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	return ids, nil
}

// ListAvailable enumerates the installable PHP formulae. This hits the
// network through brew's formula index and is the call the version cache
// exists to amortize.
func (c *Client) ListAvailable(ctx context.Context) ([]phpver.ID, error) {
	out, err := c.runner.Run(ctx, "brew", "search", "--formula", `/^php(@\d+\.\d+)?$/`)
	if err != nil {
		return nil, fmt.Errorf("search available formulae: %w", err)
	}

	var ids []phpver.ID
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if id, ok := formulaToID(line); ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("brew search returned no php formulae")
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	return ids, nil
}

// IsInstalled reports whether the given version is installed.
func (c *Client) IsInstalled(ctx context.Context, id phpver.ID) (bool, error) {
	installed, err := c.ListInstalled(ctx)
	if err != nil {
		return false, err
	}
	for _, have := range installed {
		if have == id {
			return true, nil
		}
	}
	return false, nil
}

// Prefix returns the Homebrew installation prefix.
func (c *Client) Prefix(ctx context.Context) (string, error) {
	out, err := c.runner.Run(ctx, "brew", "--prefix")
	if err != nil {
		return "", fmt.Errorf("query brew prefix: %w", err)
	}
	prefix := strings.TrimSpace(out)
	if prefix == "" {
		return "", fmt.Errorf("brew --prefix returned empty output")
	}
	return prefix, nil
}

// VersionDirs returns the bin and sbin directories of a version's opt
// path. Opt paths are stable symlinks, so they survive patch upgrades.
func (c *Client) VersionDirs(ctx context.Context, id phpver.ID) (binDir, sbinDir string, err error) {
	prefix, err := c.Prefix(ctx)
	if err != nil {
		return "", "", err
	}
	opt := filepath.Join(prefix, "opt", id.Formula())
	return filepath.Join(opt, "bin"), filepath.Join(opt, "sbin"), nil
}

// Unlink removes a formula's symlinks from the brew prefix.
func (c *Client) Unlink(ctx context.Context, id phpver.ID) error {
	_, err := c.runner.Run(ctx, "brew", "unlink", id.Formula())
	if err != nil {
		return fmt.Errorf("unlink %s: %w", id.Formula(), err)
	}
	return nil
}

// Link links a formula into the brew prefix, overwriting colliding links
// left behind by other PHP versions.
func (c *Client) Link(ctx context.Context, id phpver.ID) error {
	_, err := c.runner.Run(ctx, "brew", "link", "--overwrite", "--force", id.Formula())
	if err != nil {
		return fmt.Errorf("link %s: %w", id.Formula(), err)
	}
	return nil
}

// ServiceRestart restarts the version's php-fpm service.
func (c *Client) ServiceRestart(ctx context.Context, id phpver.ID) error {
	_, err := c.runner.Run(ctx, "brew", "services", "restart", id.Formula())
	if err != nil {
		return fmt.Errorf("restart service %s: %w", id.Formula(), err)
	}
	return nil
}

// ServiceStop stops the version's php-fpm service.
func (c *Client) ServiceStop(ctx context.Context, id phpver.ID) error {
	_, err := c.runner.Run(ctx, "brew", "services", "stop", id.Formula())
	if err != nil {
		return fmt.Errorf("stop service %s: %w", id.Formula(), err)
	}
	return nil
}

// ServiceStatus returns the raw `brew services info` output for a version.
func (c *Client) ServiceStatus(ctx context.Context, id phpver.ID) (string, error) {
	out, err := c.runner.Run(ctx, "brew", "services", "info", id.Formula())
	if err != nil {
		return "", fmt.Errorf("query service %s: %w", id.Formula(), err)
	}
	return out, nil
}
