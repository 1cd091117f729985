// Package resolver discovers which PHP version a project directory wants.
//
// It walks from a starting directory up to the filesystem root consulting
// three source categories in fixed priority order: dedicated marker files
// (.php-version, .phpvmrc), the composer.json require constraint, and a
// .tool-versions line. Dedicated markers win over the other categories no
// matter how far up the tree they sit, so the walk runs in two phases: a
// markers-only pass over the whole ancestry, then a manifest pass that
// stops at the first matching level.
package resolver

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/phpvm/phpvm/internal/phpver"
)

// Source identifies which mechanism produced a resolution.
type Source string

const (
	// SourceMarker is a dedicated single-line version file.
	SourceMarker Source = "version marker file"
	// SourceComposer is the composer.json require constraint.
	SourceComposer Source = "composer.json constraint"
	// SourceToolVersions is a .tool-versions line.
	SourceToolVersions Source = ".tool-versions entry"
)

// markerFiles are the dedicated version files, highest priority first.
var markerFiles = []string{".php-version", ".phpvmrc"}

// manifest filenames consulted in the second pass, in priority order.
const (
	composerFile     = "composer.json"
	toolVersionsFile = ".tool-versions"
)

// maxManifestSize bounds how much of a manifest file is read.
const maxManifestSize = 1 << 20

// ErrNotFound is returned when no source anywhere in the ancestry declares
// a PHP version.
var ErrNotFound = errors.New("no project PHP version found")

// SourceError wraps a parse or validation failure with the file it came
// from, so the caller can distinguish "nothing declared" from "declared but
// unusable".
type SourceError struct {
	File   string
	Source Source
	Cause  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.File, e.Source, e.Cause)
}

func (e *SourceError) Unwrap() error {
	return e.Cause
}

// Result describes a successful resolution.
type Result struct {
	Version phpver.ID
	Source  Source
	File    string
}

// Resolver resolves project versions against the set of installed versions
// (needed to reduce bare major numbers).
type Resolver struct {
	installed []phpver.ID
}

// New creates a resolver. installed may be nil when no versions are
// installed yet; bare majors then normalize to an "X.0" guess.
func New(installed []phpver.ID) *Resolver {
	return &Resolver{installed: installed}
}

// Resolve walks upward from startDir and returns the winning declaration,
// or ErrNotFound when the ancestry is silent.
func (r *Resolver) Resolve(startDir string) (*Result, error) {
	start, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("resolve start directory: %w", err)
	}
	if info, err := os.Stat(start); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("invalid start directory: %s", startDir)
	}

	levels := ancestry(start)

	// Phase 1: dedicated markers anywhere in the ancestry win outright.
	for _, dir := range levels {
		for _, name := range markerFiles {
			path := filepath.Join(dir, name)
			raw, ok, err := readMarker(path)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			id, err := phpver.Normalize(raw, r.installed)
			if err != nil {
				return nil, &SourceError{File: path, Source: SourceMarker, Cause: err}
			}
			return &Result{Version: id, Source: SourceMarker, File: path}, nil
		}
	}

	// Phase 2: manifests, nearest level first; within a level composer.json
	// beats .tool-versions.
	for _, dir := range levels {
		if res, ok, err := r.fromComposer(filepath.Join(dir, composerFile)); err != nil {
			return nil, err
		} else if ok {
			return res, nil
		}

		if res, ok, err := r.fromToolVersions(filepath.Join(dir, toolVersionsFile)); err != nil {
			return nil, err
		} else if ok {
			return res, nil
		}
	}

	return nil, ErrNotFound
}

// ancestry lists dir and every parent up to the root, nearest first.
func ancestry(dir string) []string {
	var levels []string
	for {
		levels = append(levels, dir)
		parent := filepath.Dir(dir)
		if parent == dir {
			return levels
		}
		dir = parent
	}
}

// readMarker reads a dedicated marker file. The raw text is returned
// untrimmed beyond surrounding whitespace; shape checks happen in
// normalization.
func readMarker(path string) (string, bool, error) {
	data, err := readCapped(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s: %w", path, err)
	}
	raw := strings.TrimSpace(string(data))
	if raw == "" {
		// An empty marker declares nothing; keep walking.
		return "", false, nil
	}
	return raw, true, nil
}

// fromComposer extracts the php constraint from a composer.json file and
// reduces it to a concrete identifier.
func (r *Resolver) fromComposer(path string) (*Result, bool, error) {
	data, err := readCapped(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}

	var manifest struct {
		Require map[string]string `json:"require"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, false, &SourceError{File: path, Source: SourceComposer, Cause: err}
	}

	constraint, ok := manifest.Require[phpver.Name]
	if !ok || strings.TrimSpace(constraint) == "" {
		return nil, false, nil
	}

	raw := reduceConstraint(constraint)
	id, err := phpver.Normalize(raw, r.installed)
	if err != nil {
		return nil, false, &SourceError{File: path, Source: SourceComposer, Cause: err}
	}
	return &Result{Version: id, Source: SourceComposer, File: path}, true, nil
}

// fromToolVersions extracts the php line from a .tool-versions file.
func (r *Resolver) fromToolVersions(path string) (*Result, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != phpver.Name {
			continue
		}
		id, err := phpver.Normalize(fields[1], r.installed)
		if err != nil {
			return nil, false, &SourceError{File: path, Source: SourceToolVersions, Cause: err}
		}
		return &Result{Version: id, Source: SourceToolVersions, File: path}, true, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}

	return nil, false, nil
}

// reduceConstraint turns a composer version constraint into a bare version
// string for normalization: the first alternative wins, comparison operators
// and wildcard tails are stripped.
//
//	"^8.1"          -> "8.1"
//	">=8.0 <8.3"    -> "8.0"
//	"~8.2.0"        -> "8.2.0"
//	"8.1.* || 8.2"  -> "8.1"
//	"*"             -> "default"
func reduceConstraint(constraint string) string {
	first := constraint
	if i := strings.IndexAny(first, "|,"); i >= 0 {
		first = first[:i]
	}
	first = strings.TrimSpace(first)
	if i := strings.IndexByte(first, ' '); i >= 0 {
		first = first[:i]
	}

	first = strings.TrimLeft(first, "^~><=v ")
	first = strings.TrimSuffix(first, ".*")
	first = strings.TrimSuffix(first, ".x")

	if first == "" || first == "*" {
		return "default"
	}
	return first
}

// readCapped reads a file refusing anything over maxManifestSize.
func readCapped(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxManifestSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", path, maxManifestSize)
	}
	return os.ReadFile(path)
}
