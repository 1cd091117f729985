package shell

import (
	"strings"
	"testing"
)

const (
	testBin  = "/opt/homebrew/opt/php@8.3/bin"
	testSbin = "/opt/homebrew/opt/php@8.3/sbin"
)

func TestRendererFor(t *testing.T) {
	for _, d := range SupportedDialects() {
		r, err := RendererFor(d)
		if err != nil {
			t.Fatalf("RendererFor(%s) failed: %v", d, err)
		}
		if r.Dialect() != d {
			t.Errorf("renderer dialect = %s, want %s", r.Dialect(), d)
		}
	}

	if _, err := RendererFor(DialectUnknown); err == nil {
		t.Error("expected error for unknown dialect")
	}
}

func TestPosixBlockBody(t *testing.T) {
	r, _ := RendererFor(DialectBash)
	body := r.BlockBody(testBin, testSbin, false)

	if !strings.Contains(body, "__phpvm_path()") {
		t.Error("body should define the filter helper")
	}
	if !strings.Contains(body, testBin) || !strings.Contains(body, testSbin) {
		t.Error("body should reference both version directories")
	}
	if !strings.Contains(body, "export PATH") {
		t.Error("body should export PATH")
	}
	if strings.Contains(body, "__phpvm_auto_switch") {
		t.Error("auto-switch hook should be absent when disabled")
	}

	// bin must come before sbin in the exported value.
	if strings.Index(body, testBin) > strings.Index(body, testSbin) {
		t.Error("bin directory should precede sbin")
	}
}

func TestAutoSwitchHookRegistration(t *testing.T) {
	tests := []struct {
		dialect Dialect
		expect  string
	}{
		{DialectBash, "PROMPT_COMMAND"},
		{DialectZsh, "add-zsh-hook chpwd"},
		{DialectFish, "--on-variable PWD"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.String(), func(t *testing.T) {
			r, _ := RendererFor(tt.dialect)
			body := r.BlockBody(testBin, testSbin, true)
			if !strings.Contains(body, "__phpvm_auto_switch") {
				t.Error("hook function missing")
			}
			if !strings.Contains(body, tt.expect) {
				t.Errorf("hook registration %q missing from body:\n%s", tt.expect, body)
			}
		})
	}
}

func TestFishBlockBodyUsesListRebuild(t *testing.T) {
	r, _ := RendererFor(DialectFish)
	body := r.BlockBody(testBin, testSbin, false)

	if !strings.Contains(body, "set -gx PATH") {
		t.Error("fish body should rebuild the PATH list with set -gx")
	}
	if !strings.Contains(body, "string match -q -i '*php*'") {
		t.Error("fish body should filter prior php entries case-insensitively")
	}
	if strings.Contains(body, "export PATH") {
		t.Error("fish body must not use POSIX export syntax")
	}
	if r.CanMutateLive() {
		t.Error("fish sessions cannot be mutated from outside")
	}
}

func TestReloadScripts(t *testing.T) {
	for _, d := range SupportedDialects() {
		r, _ := RendererFor(d)
		script := r.ReloadScript(testBin, testSbin)
		if !strings.Contains(script, testBin) {
			t.Errorf("%s reload script missing bin directory", d)
		}
		if !strings.HasPrefix(script, "#") {
			t.Errorf("%s reload script should start with a usage comment", d)
		}
	}
}
