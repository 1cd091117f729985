package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phpvm/phpvm/internal/testutil"
)

func TestConfigSetGetRoundTrip(t *testing.T) {
	testutil.SetupTestEnv(t)

	if _, err := runCommand(t, "config", "set", "max_backups", "3"); err != nil {
		t.Fatalf("config set failed: %v", err)
	}

	// The value survives a fresh invocation reading the file back.
	if _, err := runCommand(t, "config", "get", "max_backups"); err != nil {
		t.Fatalf("config get failed: %v", err)
	}

	configPath := filepath.Join(os.Getenv("PHPVM_CONFIG_DIR"), "config.lua")
	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if !strings.Contains(string(data), "max_backups = 3") {
		t.Errorf("config file content:\n%s", data)
	}
}

func TestConfigSetRejectsBadValues(t *testing.T) {
	testutil.SetupTestEnv(t)

	if _, err := runCommand(t, "config", "set", "max_backups", "-2"); err == nil {
		t.Error("negative max_backups accepted")
	}
	if _, err := runCommand(t, "config", "set", "no_such_key", "x"); err == nil {
		t.Error("unknown key accepted")
	}
	if _, err := runCommand(t, "config", "set", "default_version", "nope"); err == nil {
		t.Error("invalid version accepted")
	}
}

func TestConfigListShowsAllKeys(t *testing.T) {
	testutil.SetupTestEnv(t)

	// config list prints via pterm (process stdout), so just assert it
	// runs cleanly against a missing config file.
	if _, err := runCommand(t, "config", "list"); err != nil {
		t.Fatalf("config list failed: %v", err)
	}
}
