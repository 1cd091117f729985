// Package config provides phpvm's Lua settings file: sandboxed parsing,
// validation, and generation.
//
// Settings live in a single config.lua holding a flat table of options.
// Lua buys declarative-but-commentable configuration with gopher-lua's
// sandbox keeping user configs free of side effects.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/phpvm/phpvm/internal/phpver"
)

// FileName is the settings file name inside the phpvm config directory.
const FileName = "config.lua"

// MaxBackupsLimit caps the backup retention count.
const MaxBackupsLimit = 100

// Settings is the explicit configuration value object handed to every
// component. There is no global mutable state; construct once, pass down.
type Settings struct {
	// AutoRestart restarts php-fpm after every switch.
	AutoRestart bool
	// BackupEnabled snapshots startup files before patching them.
	BackupEnabled bool
	// DefaultVersion is used when no project declares one. Empty when
	// unset.
	DefaultVersion phpver.ID
	// MaxBackups is the snapshot retention count per startup file.
	MaxBackups int
	// CacheDir overrides the XDG cache directory when non-empty.
	CacheDir string
	// AutoSwitch installs the directory-change hook into the managed
	// block.
	AutoSwitch bool
}

// Defaults returns the settings used when no config file exists.
func Defaults() Settings {
	return Settings{
		AutoRestart:   false,
		BackupEnabled: true,
		MaxBackups:    5,
		AutoSwitch:    false,
	}
}

// ValidationError represents a settings validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s", e.Field, e.Message)
}

// Validate checks a Settings value for internal consistency.
func (s *Settings) Validate() error {
	if s.MaxBackups < 0 {
		return &ValidationError{Field: "max_backups", Message: "cannot be negative"}
	}
	if s.MaxBackups > MaxBackupsLimit {
		return &ValidationError{Field: "max_backups", Message: fmt.Sprintf("exceeds limit of %d", MaxBackupsLimit)}
	}

	if s.DefaultVersion != "" {
		if _, err := phpver.Normalize(string(s.DefaultVersion), nil); err != nil {
			return &ValidationError{Field: "default_version", Message: err.Error()}
		}
	}

	if s.CacheDir != "" {
		if err := validateCacheDir(s.CacheDir); err != nil {
			return &ValidationError{Field: "cache_dir", Message: err.Error()}
		}
	}

	return nil
}

// validateCacheDir rejects traversal sequences and non-absolute,
// non-home-relative paths.
func validateCacheDir(path string) error {
	if strings.Contains(filepath.Clean(path), "..") {
		return fmt.Errorf("path traversal not allowed: %s", path)
	}
	if !filepath.IsAbs(path) && !strings.HasPrefix(path, "~/") {
		return fmt.Errorf("must be absolute or home-relative: %s", path)
	}
	return nil
}

// ExpandCacheDir resolves the configured cache directory, expanding a
// leading tilde. Returns "" when no override is set.
func (s *Settings) ExpandCacheDir() (string, error) {
	if s.CacheDir == "" {
		return "", nil
	}
	if strings.HasPrefix(s.CacheDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand cache_dir: %w", err)
		}
		return filepath.Join(home, s.CacheDir[2:]), nil
	}
	return filepath.Clean(s.CacheDir), nil
}
