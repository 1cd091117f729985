// Package cache amortizes the expensive Homebrew enumeration of installable
// PHP versions behind a TTL file cache, and keeps the directory-to-version
// map consumed by the auto-switch shell hook.
//
// The cache is a pure performance optimization: concurrent writers race
// last-writer-wins, and every failure path degrades to a compiled-in
// fallback list rather than failing the caller.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/phpvm/phpvm/internal/phpver"
)

const (
	// versionsFile is the cache file name, one identifier per line.
	versionsFile = "available-versions"

	// DefaultTTL is the freshness window measured against the cache
	// file's modification time.
	DefaultTTL = time.Hour

	// DefaultFetchTimeout bounds how long a caller waits on the live
	// enumeration before falling back.
	DefaultFetchTimeout = 10 * time.Second
)

// Fetcher performs the live enumeration, typically brew.ListAvailable.
type Fetcher func(ctx context.Context) ([]phpver.ID, error)

// flight is one in-progress background fetch shared by concurrent callers.
type flight struct {
	done chan struct{}
	ids  []phpver.ID
	err  error
}

// VersionCache caches the set of installable versions.
type VersionCache struct {
	dir     string
	ttl     time.Duration
	timeout time.Duration
	fetch   Fetcher
	clock   func() time.Time
	log     *slog.Logger

	mu       sync.Mutex
	inflight *flight
	fallback string // process-local dir after a persistence failure
}

// Option adjusts cache construction.
type Option func(*VersionCache)

// WithTTL overrides the freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(c *VersionCache) { c.ttl = ttl }
}

// WithFetchTimeout overrides the bounded wait on the live enumeration.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *VersionCache) { c.timeout = d }
}

// WithClock overrides the clock for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(c *VersionCache) { c.clock = now }
}

// NewVersionCache creates a cache rooted at dir.
func NewVersionCache(dir string, fetch Fetcher, log *slog.Logger, opts ...Option) *VersionCache {
	if log == nil {
		log = slog.Default()
	}
	c := &VersionCache{
		dir:     dir,
		ttl:     DefaultTTL,
		timeout: DefaultFetchTimeout,
		fetch:   fetch,
		clock:   time.Now,
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Available returns the ordered set of installable versions. A fresh cache
// file answers immediately; otherwise one background fetch runs with a
// bounded wait, and on timeout or error the compiled-in fallback list is
// returned and written through so the next call within the TTL is cheap.
func (c *VersionCache) Available(ctx context.Context) ([]phpver.ID, error) {
	if ids, ok := c.readFresh(); ok {
		return ids, nil
	}
	return c.refresh(ctx)
}

// Invalidate deletes the cache file.
func (c *VersionCache) Invalidate() error {
	err := os.Remove(c.file())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove cache file: %w", err)
	}
	return nil
}

// ForceRefresh deletes the cache file and immediately repeats the
// fetch-or-fallback sequence.
func (c *VersionCache) ForceRefresh(ctx context.Context) ([]phpver.ID, error) {
	if err := c.Invalidate(); err != nil {
		return nil, err
	}
	return c.refresh(ctx)
}

// file returns the current cache file path, honoring a prior fallback to a
// process-local directory.
func (c *VersionCache) file() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fallback != "" {
		return filepath.Join(c.fallback, versionsFile)
	}
	return filepath.Join(c.dir, versionsFile)
}

// readFresh loads the cache file when it is within the TTL and parseable.
func (c *VersionCache) readFresh() ([]phpver.ID, bool) {
	path := c.file()
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if c.clock().Sub(info.ModTime()) > c.ttl {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	ids := parseLines(string(data))
	if len(ids) == 0 {
		return nil, false
	}
	return ids, true
}

// refresh waits (bounded) on a single shared background fetch, then writes
// the result through. A timeout or fetch error yields the fallback list.
func (c *VersionCache) refresh(ctx context.Context) ([]phpver.ID, error) {
	c.mu.Lock()
	f := c.inflight
	if f == nil {
		f = &flight{done: make(chan struct{})}
		c.inflight = f
		go c.runFetch(f)
	}
	c.mu.Unlock()

	select {
	case <-f.done:
		if f.err != nil {
			c.log.Debug("enumeration failed, using fallback", "error", f.err)
			return c.writeThrough(phpver.KnownReleases()), nil
		}
		return c.writeThrough(f.ids), nil
	case <-ctx.Done():
		c.log.Debug("caller cancelled during refresh", "error", ctx.Err())
		return c.writeThrough(phpver.KnownReleases()), nil
	}
}

// runFetch executes the live enumeration with its own bounded context, so
// an abandoned fetch is forcibly cancelled rather than leaked.
func (c *VersionCache) runFetch(f *flight) {
	defer func() {
		c.mu.Lock()
		c.inflight = nil
		c.mu.Unlock()
		close(f.done)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	f.ids, f.err = c.fetch(ctx)
	if f.err == nil && len(f.ids) == 0 {
		f.err = fmt.Errorf("enumeration returned no versions")
	}
}

// writeThrough persists ids to the cache file, falling back to a
// process-local temporary directory when the configured one is unwritable.
// Persistence failures are logged, never surfaced: the ids are still good.
func (c *VersionCache) writeThrough(ids []phpver.ID) []phpver.ID {
	var b strings.Builder
	for _, id := range ids {
		b.WriteString(id.String())
		b.WriteString("\n")
	}
	data := []byte(b.String())

	if err := c.writeFile(c.file(), data); err != nil {
		c.mu.Lock()
		needFallback := c.fallback == ""
		c.mu.Unlock()

		if needFallback {
			tmp, tmpErr := os.MkdirTemp("", "phpvm-cache-")
			if tmpErr == nil {
				c.mu.Lock()
				c.fallback = tmp
				c.mu.Unlock()
				err = c.writeFile(filepath.Join(tmp, versionsFile), data)
			}
		}
		if err != nil {
			c.log.Warn("version cache not persisted", "error", err)
		}
	}

	return ids
}

// writeFile writes atomically: temp file in the same directory, then
// rename.
func (c *VersionCache) writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".versions-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// parseLines reads one identifier per line, skipping blanks and anything
// that fails normalization.
func parseLines(data string) []phpver.ID {
	var ids []phpver.ID
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		id, err := phpver.Normalize(line, nil)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
