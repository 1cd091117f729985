package shell

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// maxAncestorDepth bounds the parent-process walk during detection.
const maxAncestorDepth = 8

// Detect identifies the shell dialect phpvm is running under.
//
// Detection order:
//  1. dialect version markers exported into the environment
//  2. the parent process chain (a phpvm invocation is normally a direct
//     child of the interactive shell)
//  3. the user's configured login shell ($SHELL)
//  4. an OS-based default (zsh on macOS, bash elsewhere)
func Detect() Detection {
	// Method 1: version markers. Zsh and fish export theirs; bash only
	// exports BASH_VERSION to subshells, so a hit here is authoritative.
	markers := []struct {
		env     string
		dialect Dialect
	}{
		{"FISH_VERSION", DialectFish},
		{"ZSH_VERSION", DialectZsh},
		{"BASH_VERSION", DialectBash},
	}
	for _, m := range markers {
		if os.Getenv(m.env) != "" {
			return Detection{
				Dialect:    m.dialect,
				Method:     "$" + m.env + " environment marker",
				Confidence: "high",
			}
		}
	}

	// Method 2: walk the parent process chain.
	if d, path := detectFromAncestors(); d.IsValid() {
		return Detection{
			Dialect:    d,
			Method:     "parent process",
			ShellPath:  path,
			Confidence: "high",
		}
	}

	// Method 3: the configured login shell.
	if login := os.Getenv("SHELL"); login != "" {
		if d := dialectFromPath(login); d.IsValid() {
			return Detection{
				Dialect:    d,
				Method:     "$SHELL environment variable",
				ShellPath:  login,
				Confidence: "medium",
			}
		}
	}

	// Method 4: OS default.
	d := DialectBash
	if runtime.GOOS == "darwin" {
		d = DialectZsh
	}
	return Detection{
		Dialect:    d,
		Method:     "operating system default",
		Confidence: "low",
	}
}

// detectFromAncestors walks up the process tree looking for a known shell.
func detectFromAncestors() (Dialect, string) {
	proc, err := process.NewProcess(int32(os.Getppid()))
	if err != nil {
		return DialectUnknown, ""
	}

	for depth := 0; depth < maxAncestorDepth; depth++ {
		name, err := proc.Name()
		if err != nil {
			return DialectUnknown, ""
		}
		if d := dialectFromPath(name); d.IsValid() {
			// Prefer the executable path for reporting when available.
			path, err := proc.Exe()
			if err != nil {
				path = name
			}
			return d, path
		}

		proc, err = proc.Parent()
		if err != nil || proc == nil {
			return DialectUnknown, ""
		}
	}

	return DialectUnknown, ""
}

// dialectFromPath maps a shell binary path or name to a dialect.
// Login shells are sometimes recorded with a leading dash ("-zsh").
func dialectFromPath(shellPath string) Dialect {
	base := strings.ToLower(filepath.Base(shellPath))
	base = strings.TrimPrefix(base, "-")

	switch base {
	case "bash", "sh":
		return DialectBash
	case "zsh":
		return DialectZsh
	case "fish":
		return DialectFish
	default:
		return DialectUnknown
	}
}
