// Package phpver defines the canonical PHP version identifier and the
// normalization rules for every external form phpvm accepts.
//
// The canonical form is "php@<major>.<minor>" (e.g. "php@8.3"), with the
// sentinel "php@default" standing for the unversioned primary Homebrew
// install. All user- and file-supplied forms are normalized before use.
package phpver

import (
	"fmt"
	"strconv"
	"strings"
)

// Name is the interpreter / Homebrew formula base name.
const Name = "php"

// MaxRawLength is the maximum accepted length of a raw version string.
// Longer input is rejected before parsing (defense against malformed or
// hostile project files).
const MaxRawLength = 64

// ID is a canonical version identifier: "php@X.Y" or "php@default".
type ID string

// Default is the sentinel identifier for the unversioned primary install.
const Default ID = Name + "@default"

// String returns the identifier as a plain string.
func (id ID) String() string {
	return string(id)
}

// IsDefault reports whether the identifier is the "php@default" sentinel.
func (id ID) IsDefault() bool {
	return id == Default
}

// Formula returns the Homebrew formula name for the identifier.
// The default sentinel maps to the unversioned "php" formula.
func (id ID) Formula() string {
	if id.IsDefault() {
		return Name
	}
	return string(id)
}

// Release returns the bare "X.Y" release line, or "" for the default sentinel.
func (id ID) Release() string {
	if id.IsDefault() {
		return ""
	}
	return strings.TrimPrefix(string(id), Name+"@")
}

// Parts returns the numeric major and minor components.
// The default sentinel has no numeric parts and returns ok=false.
func (id ID) Parts() (major, minor int, ok bool) {
	if id.IsDefault() {
		return 0, 0, false
	}
	release := id.Release()
	dot := strings.IndexByte(release, '.')
	if dot < 0 {
		return 0, 0, false
	}
	major, errMaj := strconv.Atoi(release[:dot])
	minor, errMin := strconv.Atoi(release[dot+1:])
	if errMaj != nil || errMin != nil {
		return 0, 0, false
	}
	return major, minor, true
}

// Less orders identifiers by numeric major then minor. The default sentinel
// sorts after every numbered release.
func (id ID) Less(other ID) bool {
	aMaj, aMin, aOK := id.Parts()
	bMaj, bMin, bOK := other.Parts()
	if !aOK || !bOK {
		return aOK && !bOK
	}
	if aMaj != bMaj {
		return aMaj < bMaj
	}
	return aMin < bMin
}

// ValidationError reports a raw version string that failed safety checks
// before any parsing was attempted.
type ValidationError struct {
	Raw    string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid version string %q: %s", e.Raw, e.Reason)
}

// UnknownFormatError reports a raw version string in a shape phpvm does not
// recognize. It is distinct from ValidationError so callers can offer the
// user an install prompt instead of aborting.
type UnknownFormatError struct {
	Raw string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unrecognized version format: %q", e.Raw)
}

// Normalize converts a raw external version string into a canonical ID.
//
// Accepted shapes:
//   - "php@X.Y" and "php@default": already canonical, returned as-is
//   - "default": the sentinel without its prefix
//   - "X.Y" (optionally "X.Y.Z"): prefixed with the interpreter name,
//     patch component discarded
//   - "X": resolved against installed to the highest installed minor under
//     that major (numeric comparison); if none is installed, "X.0" is
//     synthesized as a guess
//
// Anything else is an UnknownFormatError. Input failing the length or
// control-character checks is a ValidationError.
func Normalize(raw string, installed []ID) (ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &ValidationError{Raw: raw, Reason: "empty"}
	}
	if len(raw) > MaxRawLength {
		return "", &ValidationError{Raw: truncate(raw), Reason: fmt.Sprintf("longer than %d bytes", MaxRawLength)}
	}
	for _, r := range raw {
		if r < 0x20 || r == 0x7f {
			return "", &ValidationError{Raw: truncate(raw), Reason: "contains control characters"}
		}
	}

	if raw == string(Default) || raw == "default" {
		return Default, nil
	}

	candidate := raw
	if rest, found := strings.CutPrefix(raw, Name+"@"); found {
		candidate = rest
	}

	parts := strings.Split(candidate, ".")
	for _, p := range parts {
		if _, err := strconv.Atoi(p); err != nil {
			return "", &UnknownFormatError{Raw: raw}
		}
	}

	switch len(parts) {
	case 1:
		major, _ := strconv.Atoi(parts[0])
		return resolveMajor(major, installed), nil
	case 2, 3:
		// Patch releases collapse onto their release line.
		return ID(fmt.Sprintf("%s@%s.%s", Name, parts[0], parts[1])), nil
	default:
		return "", &UnknownFormatError{Raw: raw}
	}
}

// resolveMajor picks the highest installed minor under the given major,
// falling back to an "X.0" guess when nothing under that major is installed.
func resolveMajor(major int, installed []ID) ID {
	best := -1
	for _, id := range installed {
		maj, min, ok := id.Parts()
		if !ok || maj != major {
			continue
		}
		if min > best {
			best = min
		}
	}
	if best < 0 {
		best = 0
	}
	return ID(fmt.Sprintf("%s@%d.%d", Name, major, best))
}

func truncate(s string) string {
	const max = 32
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// KnownReleases is the compiled-in snapshot of PHP release lines, newest
// first. It backs the version cache when Homebrew enumeration fails or times
// out. The snapshot goes stale as new release lines ship; `phpvm cache
// refresh` re-queries Homebrew and overwrites any cached copy of it.
func KnownReleases() []ID {
	return []ID{
		"php@8.4",
		"php@8.3",
		"php@8.2",
		"php@8.1",
		"php@8.0",
		"php@7.4",
	}
}
