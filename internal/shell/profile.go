package shell

import (
	"os"
	"path/filepath"
)

// profileCandidates returns the startup file preference order for a dialect,
// relative to the home directory. The first existing candidate wins; when
// none exists, the last candidate is created.
func profileCandidates(d Dialect, home string) []string {
	switch d {
	case DialectBash:
		return []string{
			filepath.Join(home, ".bashrc"),
			filepath.Join(home, ".bash_profile"),
			filepath.Join(home, ".profile"),
		}
	case DialectZsh:
		return []string{
			filepath.Join(home, ".zshrc"),
			filepath.Join(home, ".zprofile"),
		}
	case DialectFish:
		return []string{
			filepath.Join(home, ".config", "fish", "config.fish"),
		}
	default:
		return nil
	}
}

// ResolveProfile resolves the single authoritative startup file for a
// dialect. Candidates are tried in preference order and the first existing
// regular file wins. If none exists, the last candidate is created empty
// (including its parent directory, which fish keeps under ~/.config).
//
// A file that cannot be created surfaces as a ProfileError; callers must not
// proceed with a patch in that case.
func ResolveProfile(d Dialect) (StartupFile, error) {
	if !d.IsValid() {
		return StartupFile{}, &UnsupportedDialectError{Shell: d.String()}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return StartupFile{}, &ProfileError{Message: "determine home directory", Cause: err}
	}

	candidates := profileCandidates(d, home)
	for _, path := range candidates {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if !info.Mode().IsRegular() {
			return StartupFile{}, &ProfileError{Path: path, Message: "not a regular file"}
		}
		return StartupFile{Path: path, Dialect: d, Existed: true}, nil
	}

	// Nothing exists: create the last candidate.
	path := candidates[len(candidates)-1]
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return StartupFile{}, &ProfileError{Path: path, Message: "create parent directory", Cause: err}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return StartupFile{}, &ProfileError{Path: path, Message: "create file", Cause: err}
	}
	if err := f.Close(); err != nil {
		return StartupFile{}, &ProfileError{Path: path, Message: "close created file", Cause: err}
	}

	return StartupFile{Path: path, Dialect: d, Existed: false}, nil
}
