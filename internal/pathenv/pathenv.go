// Package pathenv rebuilds the process search path around a selected PHP
// version: prior PHP entries are filtered out and the new version's bin and
// sbin directories are prepended. The same rebuild is applied to the live
// process (where the dialect allows it) and rendered into a one-shot reload
// script for sessions phpvm cannot reach.
package pathenv

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/phpvm/phpvm/internal/phpver"
	"github.com/phpvm/phpvm/internal/shell"
)

// Rebuild splits searchPath on the list separator, drops every entry whose
// text contains the interpreter name as a case-insensitive substring, and
// prepends binDir then sbinDir ahead of the filtered remainder.
//
// The substring filter is deliberately broad: it catches versioned cellar
// paths, opt symlink paths, and unversioned installs alike. Relative order
// of the surviving entries is preserved.
func Rebuild(searchPath, binDir, sbinDir string) string {
	sep := string(os.PathListSeparator)

	rebuilt := []string{binDir, sbinDir}
	for _, entry := range strings.Split(searchPath, sep) {
		if entry == "" {
			continue
		}
		if strings.Contains(strings.ToLower(entry), phpver.Name) {
			continue
		}
		rebuilt = append(rebuilt, entry)
	}

	return strings.Join(rebuilt, sep)
}

// ApplyLive rebuilds PATH in the phpvm process environment and returns the
// new value. Only meaningful for dialects whose sessions pick the value up
// from a sourced reload or an eval'd hook; fish callers skip this and rely
// on the reload script alone.
func ApplyLive(binDir, sbinDir string) (string, error) {
	rebuilt := Rebuild(os.Getenv("PATH"), binDir, sbinDir)
	if err := os.Setenv("PATH", rebuilt); err != nil {
		return "", fmt.Errorf("set PATH: %w", err)
	}
	return rebuilt, nil
}

// reloadScriptName returns the per-dialect reload script filename.
func reloadScriptName(d shell.Dialect) string {
	if d == shell.DialectFish {
		return "reload.fish"
	}
	return "reload.sh"
}

// WriteReloadScript renders the dialect's reload script into dir and
// returns its path. The script performs the equivalent PATH rebuild and is
// meant to be sourced manually in already-running sessions.
func WriteReloadScript(dir string, r shell.Renderer, binDir, sbinDir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create reload script directory: %w", err)
	}

	path := filepath.Join(dir, reloadScriptName(r.Dialect()))
	script := r.ReloadScript(binDir, sbinDir)

	// Same write-to-temp-then-rename discipline as every other file the
	// tool owns.
	tmp, err := os.CreateTemp(dir, ".reload-*")
	if err != nil {
		return "", fmt.Errorf("create temporary reload script: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(script); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write reload script: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close reload script: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return "", fmt.Errorf("set reload script mode: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("rename reload script: %w", err)
	}

	return path, nil
}

// MismatchError reports that the php binary resolving through the rebuilt
// PATH does not live in the expected install directory. Callers report it
// as a warning: the on-disk configuration is still correct for future
// sessions.
type MismatchError struct {
	Resolved string
	Expected string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("php resolves to %s, expected a binary under %s (open a new shell or source the reload script)", e.Resolved, e.Expected)
}

// Verify resolves the interpreter binary through the current PATH and
// checks it lives under binDir. Symlinks are followed on both sides so a
// Homebrew opt path compares equal to its cellar target.
func Verify(binDir string) error {
	resolved, err := exec.LookPath(phpver.Name)
	if err != nil {
		return &MismatchError{Resolved: "(not found)", Expected: binDir}
	}

	resolvedDir := filepath.Dir(resolved)
	if evaluated, err := filepath.EvalSymlinks(resolvedDir); err == nil {
		resolvedDir = evaluated
	}
	expected := binDir
	if evaluated, err := filepath.EvalSymlinks(binDir); err == nil {
		expected = evaluated
	}

	if resolvedDir != expected {
		return &MismatchError{Resolved: resolved, Expected: binDir}
	}
	return nil
}
