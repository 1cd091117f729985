package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Generate renders a Settings value back to Lua source. The output is
// itself parseable by Parse, so get/set round-trips are lossless.
func Generate(s Settings) string {
	var b strings.Builder

	b.WriteString("-- phpvm configuration\n")
	b.WriteString("-- Edit by hand or via `phpvm config set <key> <value>`.\n\n")
	b.WriteString("phpvm = {\n")
	fmt.Fprintf(&b, "    auto_restart = %t,\n", s.AutoRestart)
	fmt.Fprintf(&b, "    backup_enabled = %t,\n", s.BackupEnabled)
	fmt.Fprintf(&b, "    max_backups = %d,\n", s.MaxBackups)
	fmt.Fprintf(&b, "    auto_switch = %t,\n", s.AutoSwitch)
	if s.DefaultVersion != "" {
		fmt.Fprintf(&b, "    default_version = %q,\n", s.DefaultVersion.String())
	}
	if s.CacheDir != "" {
		fmt.Fprintf(&b, "    cache_dir = %q,\n", s.CacheDir)
	}
	b.WriteString("}\n")

	return b.String()
}

// Save validates and writes settings to path atomically, creating the
// parent directory if needed.
func Save(path string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.lua")
	if err != nil {
		return fmt.Errorf("create temporary config: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(Generate(s)); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close config: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("chmod config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename config: %w", err)
	}

	return nil
}
