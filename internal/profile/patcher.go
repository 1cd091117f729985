// Package profile owns the machine-managed region of shell startup files:
// the marker-delimited block phpvm rewrites on every switch, and the
// timestamped backups taken before each rewrite.
//
// Everything outside the marker pair is user-owned and survives
// byte-for-byte. Block boundaries are computed from marker byte offsets,
// never from line patterns, so repeated applies are provably idempotent.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/phpvm/phpvm/internal/phpver"
)

// Marker literals delimiting the managed block. At most one block may exist
// per file.
const (
	BeginMarker = "# >>> phpvm initialize >>>"
	EndMarker   = "# <<< phpvm initialize <<<"
)

// CorruptionError reports a startup file whose begin marker has no matching
// end marker. The block's extent cannot be determined, so the patch is
// refused rather than guessed.
type CorruptionError struct {
	Path string
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("managed block corrupted in %s: begin marker present without end marker", e.Path)
}

// PatchError reports a filesystem failure while rewriting a startup file.
type PatchError struct {
	Path    string
	Message string
	Cause   error
}

func (e *PatchError) Error() string {
	return fmt.Sprintf("patch %s: %s: %v", e.Path, e.Message, e.Cause)
}

func (e *PatchError) Unwrap() error {
	return e.Cause
}

// Patcher rewrites the managed block of startup files.
type Patcher struct {
	now func() time.Time
}

// NewPatcher creates a managed block patcher.
func NewPatcher() *Patcher {
	return &Patcher{now: time.Now}
}

// NewPatcherAt creates a patcher with a fixed clock for deterministic tests.
func NewPatcherAt(now func() time.Time) *Patcher {
	return &Patcher{now: now}
}

// Apply rewrites the managed block of the file at path so it contains body,
// generated for the given version. The file is replaced atomically via a
// temporary file in the same directory; an interrupted apply leaves the
// original intact.
//
// Re-applying the same body yields identical content except for the
// regenerated timestamp line.
func (p *Patcher) Apply(path string, version phpver.ID, body string) error {
	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return &PatchError{Path: path, Message: "read file", Cause: err}
	}

	before, after, err := splitAroundBlock(path, string(content))
	if err != nil {
		return err
	}

	block := p.renderBlock(version, body)
	updated := before + block + after

	return replaceAtomically(path, []byte(updated))
}

// Remove deletes the managed block, leaving only user-owned content. It is
// a no-op on files without a block.
func (p *Patcher) Remove(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &PatchError{Path: path, Message: "read file", Cause: err}
	}

	if !strings.Contains(string(content), BeginMarker) {
		return nil
	}

	before, after, err := splitAroundBlock(path, string(content))
	if err != nil {
		return err
	}

	return replaceAtomically(path, []byte(before+after))
}

// HasBlock reports whether the file contains a begin marker.
func HasBlock(path string) (bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &PatchError{Path: path, Message: "read file", Cause: err}
	}
	return strings.Contains(string(content), BeginMarker), nil
}

// splitAroundBlock returns the user-owned text before and after the managed
// block. Without an existing block, the whole file becomes the "after" text:
// the new block is written first and existing content is preserved below it.
func splitAroundBlock(path, content string) (before, after string, err error) {
	begin := strings.Index(content, BeginMarker)
	if begin < 0 {
		return "", content, nil
	}

	rest := content[begin:]
	endRel := strings.Index(rest, EndMarker)
	if endRel < 0 {
		return "", "", &CorruptionError{Path: path}
	}

	// Extend the block region to the end of the end-marker line so the
	// trailing newline belongs to the block, not the preserved text.
	blockEnd := begin + endRel + len(EndMarker)
	if blockEnd < len(content) && content[blockEnd] == '\n' {
		blockEnd++
	}

	return content[:begin], content[blockEnd:], nil
}

// renderBlock assembles the full managed block: markers, a header naming the
// target version and generation time, and the dialect-specific body.
func (p *Patcher) renderBlock(version phpver.ID, body string) string {
	var b strings.Builder
	b.WriteString(BeginMarker)
	b.WriteString("\n")
	b.WriteString("# Managed by phpvm. Do not edit between the markers; the whole\n")
	b.WriteString("# region is rewritten on every version switch.\n")
	fmt.Fprintf(&b, "# version: %s (generated %s)\n", version, p.now().UTC().Format(time.RFC3339))
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}
	b.WriteString(EndMarker)
	b.WriteString("\n")
	return b.String()
}

// replaceAtomically writes data to a temporary file in the target's
// directory and renames it over the original, carrying over the original
// mode (notably a set executable bit).
func replaceAtomically(path string, data []byte) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".phpvm-patch-*")
	if err != nil {
		return &PatchError{Path: path, Message: "create temporary file", Cause: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &PatchError{Path: path, Message: "write temporary file", Cause: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &PatchError{Path: path, Message: "sync temporary file", Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &PatchError{Path: path, Message: "close temporary file", Cause: err}
	}

	if err := os.Chmod(tmpPath, mode); err != nil {
		return &PatchError{Path: path, Message: "restore file mode", Cause: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return &PatchError{Path: path, Message: "rename temporary file", Cause: err}
	}

	return nil
}
