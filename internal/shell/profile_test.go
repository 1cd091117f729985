package shell

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveProfilePreferenceOrder(t *testing.T) {
	t.Run("first existing candidate wins", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		mustWrite(t, filepath.Join(home, ".bash_profile"), "# existing\n")
		mustWrite(t, filepath.Join(home, ".profile"), "# existing\n")

		sf, err := ResolveProfile(DialectBash)
		if err != nil {
			t.Fatalf("ResolveProfile failed: %v", err)
		}
		if sf.Path != filepath.Join(home, ".bash_profile") {
			t.Errorf("resolved %s, want .bash_profile", sf.Path)
		}
		if !sf.Existed {
			t.Error("Existed should be true for a pre-existing file")
		}
	})

	t.Run("bashrc beats bash_profile", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		mustWrite(t, filepath.Join(home, ".bashrc"), "")
		mustWrite(t, filepath.Join(home, ".bash_profile"), "")

		sf, err := ResolveProfile(DialectBash)
		if err != nil {
			t.Fatalf("ResolveProfile failed: %v", err)
		}
		if filepath.Base(sf.Path) != ".bashrc" {
			t.Errorf("resolved %s, want .bashrc", sf.Path)
		}
	})

	t.Run("creates last candidate when none exist", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		sf, err := ResolveProfile(DialectBash)
		if err != nil {
			t.Fatalf("ResolveProfile failed: %v", err)
		}
		if sf.Path != filepath.Join(home, ".profile") {
			t.Errorf("resolved %s, want .profile (last candidate)", sf.Path)
		}
		if sf.Existed {
			t.Error("Existed should be false for a created file")
		}

		info, err := os.Stat(sf.Path)
		if err != nil {
			t.Fatalf("created file missing: %v", err)
		}
		if info.Size() != 0 {
			t.Errorf("created file should be empty, has %d bytes", info.Size())
		}
	})

	t.Run("fish config directory is created", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		sf, err := ResolveProfile(DialectFish)
		if err != nil {
			t.Fatalf("ResolveProfile failed: %v", err)
		}
		want := filepath.Join(home, ".config", "fish", "config.fish")
		if sf.Path != want {
			t.Errorf("resolved %s, want %s", sf.Path, want)
		}
		if _, err := os.Stat(sf.Path); err != nil {
			t.Errorf("config.fish not created: %v", err)
		}
	})

	t.Run("rejects unsupported dialect", func(t *testing.T) {
		if _, err := ResolveProfile(DialectUnknown); err == nil {
			t.Error("expected error for unknown dialect")
		}
	})
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
