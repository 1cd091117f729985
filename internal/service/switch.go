// Package service provides high-level business logic for phpvm operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phpvm/phpvm/internal/config"
	"github.com/phpvm/phpvm/internal/pathenv"
	"github.com/phpvm/phpvm/internal/phpver"
	"github.com/phpvm/phpvm/internal/profile"
	"github.com/phpvm/phpvm/internal/shell"
)

// Brew is the Homebrew surface the switch flow needs. *brew.Client
// satisfies it; tests provide fakes.
type Brew interface {
	ListInstalled(ctx context.Context) ([]phpver.ID, error)
	IsInstalled(ctx context.Context, id phpver.ID) (bool, error)
	VersionDirs(ctx context.Context, id phpver.ID) (binDir, sbinDir string, err error)
	Link(ctx context.Context, id phpver.ID) error
	Unlink(ctx context.Context, id phpver.ID) error
	ServiceRestart(ctx context.Context, id phpver.ID) error
}

// Detector resolves the ambient shell. This interface enables testing the
// switch flow without a real terminal.
type Detector interface {
	Detect() shell.Detection
	ResolveProfile(d shell.Dialect) (shell.StartupFile, error)
}

// EnvDetector implements Detector against the real process environment.
type EnvDetector struct{}

func (EnvDetector) Detect() shell.Detection { return shell.Detect() }

func (EnvDetector) ResolveProfile(d shell.Dialect) (shell.StartupFile, error) {
	return shell.ResolveProfile(d)
}

// NotInstalledError reports a switch request for a version Homebrew does
// not have.
type NotInstalledError struct {
	Version phpver.ID
}

func (e *NotInstalledError) Error() string {
	return fmt.Sprintf("%s is not installed", e.Version)
}

// SwitchService orchestrates a version switch: locate the startup file,
// snapshot it, rewrite the managed block, relink Homebrew, and rebuild the
// search path.
type SwitchService struct {
	brew     Brew
	detector Detector
	patcher  *profile.Patcher
	rotator  *profile.Rotator
	settings config.Settings
	cacheDir string
	clock    Clock
	log      *slog.Logger
}

// NewSwitchService creates a switch service with dependency injection.
func NewSwitchService(
	brewClient Brew,
	detector Detector,
	patcher *profile.Patcher,
	rotator *profile.Rotator,
	settings config.Settings,
	cacheDir string,
	clock Clock,
	log *slog.Logger,
) *SwitchService {
	if clock == nil {
		clock = RealClock{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &SwitchService{
		brew:     brewClient,
		detector: detector,
		patcher:  patcher,
		rotator:  rotator,
		settings: settings,
		cacheDir: cacheDir,
		clock:    clock,
		log:      log,
	}
}

// SwitchRequest contains the parameters for a version switch.
type SwitchRequest struct {
	Version phpver.ID
	// SkipRelink leaves Homebrew's links alone; used by the auto-switch
	// hook, which only adjusts the session path.
	SkipRelink bool
}

// SwitchResult contains the results of the switch operation.
type SwitchResult struct {
	Version      phpver.ID
	Detection    shell.Detection
	Profile      shell.StartupFile
	BackupPath   string
	LiveApplied  bool
	ReloadScript string
	// PathWarning carries a non-fatal post-switch verification mismatch.
	// The on-disk configuration is correct for future sessions either way.
	PathWarning string
	FPMRestart  bool
}

// Execute performs the version switch.
func (s *SwitchService) Execute(ctx context.Context, req SwitchRequest) (*SwitchResult, error) {
	started := s.clock.Now()

	// 1. The target must already be installed; installs are a separate,
	// confirmed operation.
	installed, err := s.brew.IsInstalled(ctx, req.Version)
	if err != nil {
		return nil, fmt.Errorf("check installed versions: %w", err)
	}
	if !installed {
		return nil, &NotInstalledError{Version: req.Version}
	}

	// 2. Resolve the shell and its startup file.
	det := s.detector.Detect()
	renderer, err := shell.RendererFor(det.Dialect)
	if err != nil {
		return nil, err
	}
	startup, err := s.detector.ResolveProfile(det.Dialect)
	if err != nil {
		return nil, err
	}

	result := &SwitchResult{
		Version:   req.Version,
		Detection: det,
		Profile:   startup,
	}

	// 3. Snapshot before touching the file, then prune old snapshots.
	if startup.Existed {
		backup, err := s.rotator.Snapshot(startup.Path)
		if err != nil {
			// A failed backup skips the snapshot, never the switch.
			s.log.Warn("backup skipped", "path", startup.Path, "error", err)
		} else {
			result.BackupPath = backup
		}
		if err := s.rotator.Prune(startup.Path); err != nil {
			s.log.Warn("backup prune failed", "path", startup.Path, "error", err)
		}
	}

	// 4. Rewrite the managed block.
	binDir, sbinDir, err := s.brew.VersionDirs(ctx, req.Version)
	if err != nil {
		return nil, err
	}
	body := renderer.BlockBody(binDir, sbinDir, s.settings.AutoSwitch)
	if err := s.patcher.Apply(startup.Path, req.Version, body); err != nil {
		return nil, err
	}

	// 5. Point Homebrew's links at the target.
	if !req.SkipRelink {
		if err := s.relink(ctx, req.Version); err != nil {
			return nil, err
		}
	}

	// 6. Rebuild the search path for this process and emit the reload
	// script for the parent shell.
	if renderer.CanMutateLive() {
		if _, err := pathenv.ApplyLive(binDir, sbinDir); err != nil {
			return nil, err
		}
		result.LiveApplied = true
	}
	script, err := pathenv.WriteReloadScript(s.cacheDir, renderer, binDir, sbinDir)
	if err != nil {
		s.log.Warn("reload script not written", "error", err)
	} else {
		result.ReloadScript = script
	}

	// 7. Re-validate the active binary. A mismatch is reported, not fatal.
	if err := pathenv.Verify(binDir); err != nil {
		var mismatch *pathenv.MismatchError
		if !errors.As(err, &mismatch) {
			return nil, err
		}
		result.PathWarning = mismatch.Error()
	}

	// 8. Optional php-fpm restart.
	if s.settings.AutoRestart {
		if err := s.brew.ServiceRestart(ctx, req.Version); err != nil {
			s.log.Warn("php-fpm restart failed", "version", req.Version, "error", err)
		} else {
			result.FPMRestart = true
		}
	}

	s.log.Debug("switch completed",
		"version", req.Version,
		"profile", startup.Path,
		"elapsed", s.clock.Now().Sub(started))
	return result, nil
}

// relink unlinks every other installed php formula and links the target.
// Unlink failures on non-targets are tolerated; some formulas are keg-only
// and were never linked.
func (s *SwitchService) relink(ctx context.Context, target phpver.ID) error {
	installed, err := s.brew.ListInstalled(ctx)
	if err != nil {
		return fmt.Errorf("list installed versions: %w", err)
	}
	for _, id := range installed {
		if id == target {
			continue
		}
		if err := s.brew.Unlink(ctx, id); err != nil {
			s.log.Debug("unlink skipped", "version", id, "error", err)
		}
	}
	if err := s.brew.Link(ctx, target); err != nil {
		return fmt.Errorf("link %s: %w", target, err)
	}
	return nil
}
