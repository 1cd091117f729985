package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/phpvm/phpvm/internal/cache"
	"github.com/phpvm/phpvm/internal/phpver"
	"github.com/phpvm/phpvm/internal/resolver"
	"github.com/phpvm/phpvm/internal/shell"
)

// HookService backs the hidden `phpvm hook` command the auto-switch shell
// hook evaluates on every directory change. It must stay fast and silent:
// the directory cache short-circuits the project walk, and "no version for
// this directory" produces empty output, not an error.
type HookService struct {
	brew     Brew
	resolve  *ResolveService
	dirCache *cache.DirCache
	log      *slog.Logger
}

// NewHookService creates a hook service.
func NewHookService(brewClient Brew, resolve *ResolveService, dirCache *cache.DirCache, log *slog.Logger) *HookService {
	if log == nil {
		log = slog.Default()
	}
	return &HookService{brew: brewClient, resolve: resolve, dirCache: dirCache, log: log}
}

// Script returns shell code for the ambient dialect that points the
// session's search path at the version dir wants. Empty output means the
// hook has nothing to do.
func (h *HookService) Script(ctx context.Context, dir string, d shell.Dialect) (string, error) {
	renderer, err := shell.RendererFor(d)
	if err != nil {
		return "", err
	}

	version, err := h.versionFor(ctx, dir)
	if err != nil || version == "" {
		// Directories without a version are the common case while cd'ing
		// around; never surface an error from the prompt hook.
		if err != nil {
			h.log.Debug("hook resolution failed", "dir", dir, "error", err)
		}
		return "", nil
	}

	installed, err := h.brew.IsInstalled(ctx, version)
	if err != nil || !installed {
		return "", nil
	}

	binDir, sbinDir, err := h.brew.VersionDirs(ctx, version)
	if err != nil {
		return "", nil
	}

	return renderer.ReloadScript(binDir, sbinDir), nil
}

func (h *HookService) versionFor(ctx context.Context, dir string) (phpver.ID, error) {
	if id, ok, err := h.dirCache.Lookup(dir); err == nil && ok {
		return id, nil
	}

	res, err := h.resolve.Execute(ctx, dir)
	if err != nil {
		if errors.Is(err, resolver.ErrNotFound) {
			return "", nil
		}
		return "", err
	}

	// Only project-derived versions are worth caching; the config default
	// applies everywhere and would just bloat the map.
	if res.Source != SourceDefault {
		if err := h.dirCache.Record(dir, res.Version); err != nil {
			h.log.Debug("directory cache write failed", "dir", dir, "error", err)
		}
	}
	return res.Version, nil
}
