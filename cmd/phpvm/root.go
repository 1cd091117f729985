package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/phpvm/phpvm/internal/brew"
	"github.com/phpvm/phpvm/internal/cache"
	"github.com/phpvm/phpvm/internal/config"
	"github.com/phpvm/phpvm/internal/phpver"
	"github.com/phpvm/phpvm/internal/profile"
	"github.com/phpvm/phpvm/internal/service"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "phpvm",
		Short: MsgRootShort,
		Long: `phpvm switches between Homebrew-installed PHP versions and keeps your
shell startup file and search path consistent with the choice. Versions can
also be resolved per project from .php-version, composer.json, or
.tool-versions files.`,
		Version: Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newUseCmd(),
		newInstallCmd(),
		newUninstallCmd(),
		newListCmd(),
		newCurrentCmd(),
		newResolveCmd(),
		newRestartCmd(),
		newConfigCmd(),
		newCacheCmd(),
		newSetupCmd(),
		newHookCmd(),
	)

	return rootCmd
}

// setupLogging configures the default slog logger. Debug records are gated
// on PHPVM_DEBUG so normal runs stay quiet.
func setupLogging() {
	level := slog.LevelWarn
	if os.Getenv("PHPVM_DEBUG") != "" {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// app bundles the collaborators every command needs, constructed once per
// invocation from the environment and the settings file.
type app struct {
	settings   config.Settings
	configPath string
	cacheDir   string
	brew       *brew.Client
	log        *slog.Logger
}

func newApp() (*app, error) {
	log := slog.Default()

	configDir := os.Getenv("PHPVM_CONFIG_DIR")
	if configDir == "" {
		configDir = filepath.Join(xdg.ConfigHome, "phpvm")
	}
	configPath := filepath.Join(configDir, config.FileName)

	settings, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	cacheDir := os.Getenv("PHPVM_CACHE_DIR")
	if cacheDir == "" {
		if override, err := settings.ExpandCacheDir(); err == nil && override != "" {
			cacheDir = override
		} else {
			cacheDir = filepath.Join(xdg.CacheHome, "phpvm")
		}
	}

	return &app{
		settings:   settings,
		configPath: configPath,
		cacheDir:   cacheDir,
		brew:       brew.NewClient(log),
		log:        log,
	}, nil
}

func (a *app) switchService() *service.SwitchService {
	return a.switchServiceWith(service.EnvDetector{})
}

func (a *app) switchServiceWith(detector service.Detector) *service.SwitchService {
	home, _ := os.UserHomeDir()
	return service.NewSwitchService(
		a.brew,
		detector,
		profile.NewPatcher(),
		profile.NewRotator(a.settings.BackupEnabled, a.settings.MaxBackups, home),
		a.settings,
		a.cacheDir,
		service.RealClock{},
		a.log,
	)
}

func (a *app) resolveService() *service.ResolveService {
	return service.NewResolveService(a.brew, a.settings)
}

func (a *app) versionCache() *cache.VersionCache {
	return cache.NewVersionCache(a.cacheDir, a.brew.ListAvailable, a.log)
}

func (a *app) dirCache() *cache.DirCache {
	return cache.NewDirCache(a.cacheDir)
}

// normalizeArg turns a user-supplied version argument into a canonical
// identifier, resolving bare majors against the installed set.
func (a *app) normalizeArg(ctx context.Context, raw string) (phpver.ID, error) {
	installed, err := a.brew.ListInstalled(ctx)
	if err != nil {
		// Normalization still works without the installed set; bare
		// majors just fall back to the X.0 guess.
		a.log.Debug("installed list unavailable during normalization", "error", err)
		installed = nil
	}
	return phpver.Normalize(raw, installed)
}

// confirm is the interactive gate handed to brew retry policies.
func confirm(prompt string) bool {
	ok, _ := pterm.DefaultInteractiveConfirm.Show(prompt)
	return ok
}
