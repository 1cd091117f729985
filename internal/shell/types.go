// Package shell identifies the user's shell dialect, resolves the single
// authoritative startup file for it, and renders dialect-native shell code
// for the managed block and the one-shot reload script.
package shell

import "fmt"

// Dialect represents a supported shell dialect.
type Dialect string

const (
	// DialectBash represents POSIX-compatible Bash.
	DialectBash Dialect = "bash"
	// DialectZsh represents the Z shell.
	DialectZsh Dialect = "zsh"
	// DialectFish represents the Fish shell.
	DialectFish Dialect = "fish"
	// DialectUnknown represents an unknown or unsupported shell.
	DialectUnknown Dialect = "unknown"
)

// String returns the string representation of the dialect.
func (d Dialect) String() string {
	return string(d)
}

// IsValid returns true if the dialect is supported.
func (d Dialect) IsValid() bool {
	switch d {
	case DialectBash, DialectZsh, DialectFish:
		return true
	default:
		return false
	}
}

// SupportedDialects returns the dialects phpvm can manage.
func SupportedDialects() []Dialect {
	return []Dialect{DialectBash, DialectZsh, DialectFish}
}

// StartupFile is the resolved per-dialect startup file.
type StartupFile struct {
	// Path is the absolute path of the startup file.
	Path string
	// Dialect is the dialect the file belongs to.
	Dialect Dialect
	// Existed reports whether the file existed before resolution.
	// When false, resolution created it empty.
	Existed bool
}

// Detection contains the result of shell dialect detection.
type Detection struct {
	// Dialect is the detected dialect.
	Dialect Dialect
	// Method describes how the dialect was detected.
	Method string
	// ShellPath is the shell binary path, when one was observed.
	ShellPath string
	// Confidence is the confidence level (high, medium, low).
	Confidence string
}

// UnsupportedDialectError reports a shell phpvm cannot manage.
type UnsupportedDialectError struct {
	Shell string
}

func (e *UnsupportedDialectError) Error() string {
	return fmt.Sprintf("unsupported shell: %s (supported: bash, zsh, fish)", e.Shell)
}

// ProfileError reports a failure operating on a startup file.
type ProfileError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ProfileError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("startup file error (%s): %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("startup file error (%s): %s", e.Path, e.Message)
}

func (e *ProfileError) Unwrap() error {
	return e.Cause
}
