package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFullConfig(t *testing.T) {
	source := `
phpvm = {
    auto_restart = true,
    backup_enabled = false,
    default_version = "8.3",
    max_backups = 10,
    cache_dir = "~/.cache/phpvm-alt",
    auto_switch = true,
}
`
	s, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if !s.AutoRestart || s.BackupEnabled || !s.AutoSwitch {
		t.Errorf("boolean options wrong: %+v", s)
	}
	if s.DefaultVersion != "php@8.3" {
		t.Errorf("default_version = %s, want php@8.3 (normalized)", s.DefaultVersion)
	}
	if s.MaxBackups != 10 {
		t.Errorf("max_backups = %d", s.MaxBackups)
	}
	if s.CacheDir != "~/.cache/phpvm-alt" {
		t.Errorf("cache_dir = %s", s.CacheDir)
	}
}

func TestParsePartialConfigKeepsDefaults(t *testing.T) {
	s, err := Parse(`phpvm = { auto_restart = true }`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !s.AutoRestart {
		t.Error("auto_restart not applied")
	}
	if !s.BackupEnabled || s.MaxBackups != 5 {
		t.Errorf("unset options must keep defaults: %+v", s)
	}
}

func TestParseIgnoresUnknownKeys(t *testing.T) {
	s, err := Parse(`phpvm = { future_option = "whatever", max_backups = 3 }`)
	if err != nil {
		t.Fatalf("unknown keys must be ignored: %v", err)
	}
	if s.MaxBackups != 3 {
		t.Errorf("max_backups = %d", s.MaxBackups)
	}
}

func TestParseRejectsWrongTypes(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"boolean as string", `phpvm = { auto_restart = "yes" }`},
		{"number as string", `phpvm = { max_backups = "five" }`},
		{"version as number", `phpvm = { default_version = 8.3 }`},
		{"root not a table", `phpvm = "config"`},
		{"missing table", `other = {}`},
		{"syntax error", `phpvm = {`},
		{"bad version string", `phpvm = { default_version = "latest" }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.source); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestParseSandboxBlocksSideEffects(t *testing.T) {
	hostile := []string{
		`phpvm = {} os.execute("touch /tmp/pwned")`,
		`phpvm = {} io.open("/etc/passwd")`,
		`phpvm = {} require("socket")`,
		`phpvm = {} dofile("/etc/config.lua")`,
	}
	for _, source := range hostile {
		if _, err := Parse(source); err == nil {
			t.Errorf("sandbox must reject: %s", source)
		}
	}
}

func TestParseValidationLimits(t *testing.T) {
	if _, err := Parse(`phpvm = { max_backups = -1 }`); err == nil {
		t.Error("negative max_backups accepted")
	}
	if _, err := Parse(`phpvm = { max_backups = 500 }`); err == nil {
		t.Error("max_backups beyond limit accepted")
	}
	if _, err := Parse(`phpvm = { cache_dir = "../../etc" }`); err == nil {
		t.Error("traversal cache_dir accepted")
	}
	if _, err := Parse(`phpvm = { cache_dir = "relative/dir" }`); err == nil {
		t.Error("relative cache_dir accepted")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "config.lua"))
	if err != nil {
		t.Fatalf("missing file must yield defaults: %v", err)
	}
	if s != Defaults() {
		t.Errorf("got %+v, want defaults", s)
	}
}

func TestLoadReportsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.lua")
	if err := os.WriteFile(path, []byte(`phpvm = {`), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.Path != path {
		t.Errorf("error path = %s, want %s", pe.Path, path)
	}
}

func TestGenerateRoundTrip(t *testing.T) {
	want := Settings{
		AutoRestart:    true,
		BackupEnabled:  false,
		DefaultVersion: "php@8.2",
		MaxBackups:     7,
		CacheDir:       "/var/cache/phpvm",
		AutoSwitch:     true,
	}

	got, err := Parse(Generate(want))
	if err != nil {
		t.Fatalf("generated config failed to parse: %v", err)
	}
	if got != want {
		t.Errorf("round trip changed settings:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestGenerateOmitsUnsetOptionals(t *testing.T) {
	out := Generate(Defaults())
	if strings.Contains(out, "default_version") {
		t.Error("unset default_version should not appear")
	}
	if strings.Contains(out, "cache_dir") {
		t.Error("unset cache_dir should not appear")
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.lua")
	want := Defaults()
	want.MaxBackups = 2

	if err := Save(path, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestSaveRejectsInvalidSettings(t *testing.T) {
	s := Defaults()
	s.MaxBackups = -3
	err := Save(filepath.Join(t.TempDir(), "config.lua"), s)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSettingsGetSet(t *testing.T) {
	s := Defaults()

	if err := s.Set("default_version", "8.1"); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Get("default_version"); got != "php@8.1" {
		t.Errorf("Get(default_version) = %s", got)
	}

	if err := s.Set("max_backups", "9"); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Get("max_backups"); got != "9" {
		t.Errorf("Get(max_backups) = %s", got)
	}

	if err := s.Set("auto_switch", "true"); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Get("auto_switch"); got != "true" {
		t.Errorf("Get(auto_switch) = %s", got)
	}

	// Clearing the default version is allowed.
	if err := s.Set("default_version", ""); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Get("default_version"); got != "" {
		t.Errorf("cleared default_version = %q, want empty", got)
	}

	var uke *UnknownKeyError
	if err := s.Set("no_such_key", "1"); !errors.As(err, &uke) {
		t.Errorf("expected UnknownKeyError, got %v", err)
	}
	if _, err := s.Get("no_such_key"); !errors.As(err, &uke) {
		t.Errorf("expected UnknownKeyError, got %v", err)
	}

	if err := s.Set("auto_restart", "maybe"); err == nil {
		t.Error("non-boolean value accepted")
	}
}
