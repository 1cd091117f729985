package brew

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/phpvm/phpvm/internal/phpver"
)

// fakeRunner replays canned responses keyed by the joined command line and
// records every invocation.
type fakeRunner struct {
	responses map[string]string
	failures  map[string]error
	calls     []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		responses: map[string]string{},
		failures:  map[string]error{},
	}
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, key)
	if err, ok := f.failures[key]; ok {
		return "", err
	}
	return f.responses[key], nil
}

func TestListInstalled(t *testing.T) {
	r := newFakeRunner()
	r.responses["brew list --formula"] = "git\nphp\nphp@8.1\nphp@8.3\nphpunit\nwget\n"

	c := NewClientWithRunner(r, nil)
	ids, err := c.ListInstalled(context.Background())
	if err != nil {
		t.Fatalf("ListInstalled failed: %v", err)
	}

	want := []phpver.ID{"php@8.1", "php@8.3", phpver.Default}
	if len(ids) != len(want) {
		t.Fatalf("got %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %s, want %s", i, ids[i], want[i])
		}
	}
}

func TestListInstalledIgnoresLookalikes(t *testing.T) {
	r := newFakeRunner()
	r.responses["brew list --formula"] = "phpunit\nphp-cs-fixer\nphpstan\n"

	c := NewClientWithRunner(r, nil)
	ids, err := c.ListInstalled(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("lookalike formulae should be ignored, got %v", ids)
	}
}

func TestListAvailable(t *testing.T) {
	r := newFakeRunner()
	r.responses[`brew search --formula /^php(@\d+\.\d+)?$/`] = "php\nphp@8.1\nphp@8.2\nphp@8.3\nphp@8.4\n"

	c := NewClientWithRunner(r, nil)
	ids, err := c.ListAvailable(context.Background())
	if err != nil {
		t.Fatalf("ListAvailable failed: %v", err)
	}
	if len(ids) != 5 {
		t.Fatalf("got %d ids: %v", len(ids), ids)
	}
	if ids[len(ids)-1] != phpver.Default {
		t.Errorf("default sentinel should sort last, got %v", ids)
	}
}

func TestVersionDirs(t *testing.T) {
	r := newFakeRunner()
	r.responses["brew --prefix"] = "/opt/homebrew\n"

	c := NewClientWithRunner(r, nil)
	bin, sbin, err := c.VersionDirs(context.Background(), "php@8.3")
	if err != nil {
		t.Fatal(err)
	}
	if bin != "/opt/homebrew/opt/php@8.3/bin" {
		t.Errorf("bin = %s", bin)
	}
	if sbin != "/opt/homebrew/opt/php@8.3/sbin" {
		t.Errorf("sbin = %s", sbin)
	}
}

func TestVersionDirsDefaultSentinel(t *testing.T) {
	r := newFakeRunner()
	r.responses["brew --prefix"] = "/usr/local\n"

	c := NewClientWithRunner(r, nil)
	bin, _, err := c.VersionDirs(context.Background(), phpver.Default)
	if err != nil {
		t.Fatal(err)
	}
	if bin != "/usr/local/opt/php/bin" {
		t.Errorf("default sentinel should map to the unversioned formula, got %s", bin)
	}
}

func TestExecutePolicy(t *testing.T) {
	t.Run("first strategy succeeds", func(t *testing.T) {
		r := newFakeRunner()
		c := NewClientWithRunner(r, nil)

		err := c.Execute(context.Background(), InstallPolicy("php@8.3"), nil)
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if len(r.calls) != 1 || r.calls[0] != "brew install php@8.3" {
			t.Errorf("calls = %v", r.calls)
		}
	})

	t.Run("fallback runs full sequence after confirmation", func(t *testing.T) {
		r := newFakeRunner()
		r.failures["brew install php@8.3"] = errors.New("formula not found")
		// The post-update install uses the same key; make it succeed on
		// the retry by clearing the failure inside the confirmer.
		confirmed := false
		confirm := func(prompt string) bool {
			confirmed = true
			delete(r.failures, "brew install php@8.3")
			return true
		}

		c := NewClientWithRunner(r, nil)
		if err := c.Execute(context.Background(), InstallPolicy("php@8.3"), confirm); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if !confirmed {
			t.Error("confirmation gate was not consulted")
		}

		want := []string{"brew install php@8.3", "brew update", "brew install php@8.3"}
		if fmt.Sprint(r.calls) != fmt.Sprint(want) {
			t.Errorf("calls = %v, want %v", r.calls, want)
		}
	})

	t.Run("declined gate skips strategy", func(t *testing.T) {
		r := newFakeRunner()
		r.failures["brew install php@8.3"] = errors.New("boom")

		c := NewClientWithRunner(r, nil)
		err := c.Execute(context.Background(), InstallPolicy("php@8.3"), func(string) bool { return false })

		var pErr *PolicyError
		if !errors.As(err, &pErr) {
			t.Fatalf("expected PolicyError, got %v", err)
		}
		if len(pErr.Attempts) != 2 {
			t.Errorf("attempts = %d, want 2", len(pErr.Attempts))
		}
		if !errors.Is(pErr.Attempts[1], ErrDeclined) {
			t.Errorf("second attempt should be the declined gate, got %v", pErr.Attempts[1])
		}
		if !strings.Contains(err.Error(), "brew install php@8.3") {
			t.Error("policy error should carry the manual hint")
		}
	})
}
