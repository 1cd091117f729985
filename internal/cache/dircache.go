package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/phpvm/phpvm/internal/phpver"
)

// dirMapFile is the directory-to-version map file name. Each line is
// "directory:version"; the version part never contains a colon, so the
// split happens at the last one.
const dirMapFile = "directories"

// DirCache is the directory-to-version map consumed by the auto-switch
// hook. The hook fires on every directory change, so lookups must stay a
// single small file read.
type DirCache struct {
	path string
}

// NewDirCache creates a directory cache stored under dir.
func NewDirCache(dir string) *DirCache {
	return &DirCache{path: filepath.Join(dir, dirMapFile)}
}

// Lookup returns the recorded version for a directory.
func (d *DirCache) Lookup(dir string) (phpver.ID, bool, error) {
	entries, err := d.load()
	if err != nil {
		return "", false, err
	}
	id, ok := entries[filepath.Clean(dir)]
	return id, ok, nil
}

// Record stores or replaces the version for a directory and rewrites the
// map atomically.
func (d *DirCache) Record(dir string, id phpver.ID) error {
	entries, err := d.load()
	if err != nil {
		return err
	}
	entries[filepath.Clean(dir)] = id
	return d.store(entries)
}

// Forget drops a directory from the map. Unknown directories are a no-op.
func (d *DirCache) Forget(dir string) error {
	entries, err := d.load()
	if err != nil {
		return err
	}
	if _, ok := entries[filepath.Clean(dir)]; !ok {
		return nil
	}
	delete(entries, filepath.Clean(dir))
	return d.store(entries)
}

// Clear removes the map file.
func (d *DirCache) Clear() error {
	err := os.Remove(d.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove directory cache: %w", err)
	}
	return nil
}

func (d *DirCache) load() (map[string]phpver.ID, error) {
	entries := map[string]phpver.ID{}

	data, err := os.ReadFile(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil
		}
		return nil, fmt.Errorf("read directory cache: %w", err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sep := strings.LastIndexByte(line, ':')
		if sep <= 0 || sep == len(line)-1 {
			continue
		}
		id, err := phpver.Normalize(line[sep+1:], nil)
		if err != nil {
			continue
		}
		entries[line[:sep]] = id
	}

	return entries, nil
}

func (d *DirCache) store(entries map[string]phpver.ID) error {
	dirs := make([]string, 0, len(entries))
	for dir := range entries {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	var b strings.Builder
	for _, dir := range dirs {
		b.WriteString(dir)
		b.WriteString(":")
		b.WriteString(entries[dir].String())
		b.WriteString("\n")
	}

	if err := os.MkdirAll(filepath.Dir(d.path), 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.path), ".directories-*")
	if err != nil {
		return fmt.Errorf("create temporary map file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		return fmt.Errorf("write directory cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close directory cache: %w", err)
	}
	if err := os.Rename(tmpPath, d.path); err != nil {
		return fmt.Errorf("rename directory cache: %w", err)
	}

	return nil
}
