package service

import (
	"errors"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/phpvm/phpvm/internal/phpver"
)

// ErrNoActivePHP means no php binary is reachable through the search path.
var ErrNoActivePHP = errors.New("no php binary found in PATH")

var formulaSegment = regexp.MustCompile(`^php(@\d+\.\d+)?$`)

// CurrentVersion reports the version the active php binary belongs to,
// derived from its resolved install path, along with that path. Homebrew
// kegs carry the formula name as a path segment (opt/php@8.3/bin/php or
// Cellar/php@8.3/...), which is enough to recover the identifier without
// invoking brew.
func CurrentVersion() (phpver.ID, string, error) {
	binPath, err := exec.LookPath("php")
	if err != nil {
		return "", "", ErrNoActivePHP
	}

	resolved, err := filepath.EvalSymlinks(binPath)
	if err != nil {
		resolved = binPath
	}

	for _, segment := range strings.Split(resolved, string(filepath.Separator)) {
		if !formulaSegment.MatchString(segment) {
			continue
		}
		if segment == phpver.Name {
			return phpver.Default, resolved, nil
		}
		return phpver.ID(segment), resolved, nil
	}

	// A php outside any Homebrew keg (system php, phpenv shims). The
	// binary is active but its version is not one of ours.
	return phpver.Default, resolved, nil
}
