// Package testutil provides utilities for testing phpvm in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SetupTestEnv creates isolated test directories for each test.
// This ensures phpvm tests never interfere with:
// - The user's actual shell startup files
// - The real phpvm configuration and caches
// - A Homebrew installation on the host
//
// The cleanup function is automatically handled by t.TempDir(),
// so callers don't need to manually clean up.
func SetupTestEnv(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()

	home := filepath.Join(tmpDir, "home")
	t.Setenv("HOME", home)

	t.Setenv("PHPVM_CONFIG_DIR", filepath.Join(tmpDir, "config"))
	t.Setenv("PHPVM_CACHE_DIR", filepath.Join(tmpDir, "cache"))

	// Keep XDG lookups inside the sandbox too.
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg-config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tmpDir, "xdg-cache"))

	// Shell detection must not pick up the host environment. Detection
	// treats empty markers as absent.
	t.Setenv("SHELL", "/bin/bash")
	t.Setenv("BASH_VERSION", "")
	t.Setenv("ZSH_VERSION", "")
	t.Setenv("FISH_VERSION", "")

	t.Setenv("PHPVM_TEST_MODE", "1")

	dirs := []string{
		home,
		filepath.Join(tmpDir, "config"),
		filepath.Join(tmpDir, "cache"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	return home
}
