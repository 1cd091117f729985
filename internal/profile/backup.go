package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// backupSuffix separates the original name from the timestamp component.
const backupSuffix = ".phpvm-backup."

// backupStamp is the sortable UTC timestamp layout used in backup names.
const backupStamp = "20060102T150405"

// UnsafePathError reports a backup destination that failed the path safety
// check. The snapshot is skipped; the caller decides whether to continue
// with the patch.
type UnsafePathError struct {
	Path   string
	Reason string
}

func (e *UnsafePathError) Error() string {
	return fmt.Sprintf("unsafe backup path %q: %s", e.Path, e.Reason)
}

// Rotator snapshots startup files before mutation and prunes old snapshots
// beyond a retention count.
type Rotator struct {
	enabled bool
	max     int
	home    string
	now     func() time.Time
}

// NewRotator creates a backup rotator. When enabled is false, Snapshot is a
// no-op. home anchors the path safety check: snapshots are only written for
// files under the user's home tree.
func NewRotator(enabled bool, maxBackups int, home string) *Rotator {
	return &Rotator{enabled: enabled, max: maxBackups, home: home, now: time.Now}
}

// NewRotatorAt creates a rotator with a fixed clock for deterministic tests.
func NewRotatorAt(enabled bool, maxBackups int, home string, now func() time.Time) *Rotator {
	return &Rotator{enabled: enabled, max: maxBackups, home: home, now: now}
}

// Snapshot copies the file to a timestamped sibling with owner-only
// permissions and returns the backup path. It returns ("", nil) when backups
// are disabled, and an UnsafePathError when the destination fails
// validation.
func (r *Rotator) Snapshot(path string) (string, error) {
	if !r.enabled {
		return "", nil
	}

	backupPath := path + backupSuffix + r.now().UTC().Format(backupStamp)
	if err := r.validate(backupPath); err != nil {
		return "", err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Nothing to snapshot yet.
			return "", nil
		}
		return "", fmt.Errorf("read %s for backup: %w", path, err)
	}

	if err := os.WriteFile(backupPath, content, 0600); err != nil {
		return "", fmt.Errorf("write backup %s: %w", backupPath, err)
	}
	// WriteFile honors umask; force owner-only explicitly.
	if err := os.Chmod(backupPath, 0600); err != nil {
		return "", fmt.Errorf("restrict backup permissions: %w", err)
	}

	return backupPath, nil
}

// Prune deletes the oldest snapshots of the given file until at most the
// configured retention count remains. Age is judged by filesystem
// modification time, ascending.
func (r *Rotator) Prune(path string) error {
	if !r.enabled || r.max < 0 {
		return nil
	}

	matches, err := filepath.Glob(path + backupSuffix + "*")
	if err != nil {
		return fmt.Errorf("list backups of %s: %w", path, err)
	}

	type snapshot struct {
		path string
		mod  time.Time
	}
	var snaps []snapshot
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		snaps = append(snaps, snapshot{path: m, mod: info.ModTime()})
	}

	if len(snaps) <= r.max {
		return nil
	}

	sort.Slice(snaps, func(i, j int) bool { return snaps[i].mod.Before(snaps[j].mod) })

	for _, s := range snaps[:len(snaps)-r.max] {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("prune backup %s: %w", s.path, err)
		}
	}

	return nil
}

// validate rejects destinations containing traversal sequences or resolving
// outside the home tree.
func (r *Rotator) validate(path string) error {
	if strings.Contains(path, "..") {
		return &UnsafePathError{Path: path, Reason: "contains path traversal sequence"}
	}

	cleaned := filepath.Clean(path)
	if r.home != "" {
		home := filepath.Clean(r.home)
		if cleaned != home && !strings.HasPrefix(cleaned, home+string(filepath.Separator)) {
			return &UnsafePathError{Path: path, Reason: "resolves outside the home directory"}
		}
	}

	return nil
}
