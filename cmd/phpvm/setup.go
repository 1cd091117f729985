package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/phpvm/phpvm/internal/config"
	"github.com/phpvm/phpvm/internal/phpver"
	"github.com/phpvm/phpvm/internal/service"
	"github.com/phpvm/phpvm/internal/shell"
)

// fixedDetector pins the dialect chosen via --shell while still resolving
// the startup file normally.
type fixedDetector struct {
	dialect shell.Dialect
}

func (d fixedDetector) Detect() shell.Detection {
	return shell.Detection{Dialect: d.dialect, Method: "--shell flag", Confidence: "high"}
}

func (d fixedDetector) ResolveProfile(dialect shell.Dialect) (shell.StartupFile, error) {
	return shell.ResolveProfile(dialect)
}

func newSetupCmd() *cobra.Command {
	var shellName string
	var autoSwitch bool

	cmd := &cobra.Command{
		Use:   "setup",
		Short: MsgSetupShort,
		Long: `Write the phpvm managed block into your shell startup file for the first
time. With --auto-switch the block also installs a directory-change hook
that re-points PATH per project.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if autoSwitch && !a.settings.AutoSwitch {
				a.settings.AutoSwitch = true
				if err := config.Save(a.configPath, a.settings); err != nil {
					return err
				}
			}

			version, err := a.setupVersion(ctx)
			if err != nil {
				return err
			}

			var detector service.Detector = service.EnvDetector{}
			if shellName != "" {
				dialect := shell.Dialect(shellName)
				if !dialect.IsValid() {
					return fmt.Errorf("unsupported shell: %s (bash, zsh, or fish)", shellName)
				}
				detector = fixedDetector{dialect: dialect}
			}

			res, err := a.switchServiceWith(detector).Execute(ctx, service.SwitchRequest{Version: version})
			if err != nil {
				return err
			}

			pterm.Success.Printfln(MsgSetupDone, res.Profile.Path)
			pterm.Info.Printfln(MsgSwitched, res.Version)
			if !res.LiveApplied && res.ReloadScript != "" {
				pterm.Info.Printfln(MsgReloadHint, res.ReloadScript)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&shellName, "shell", "", "Target shell dialect instead of auto-detection (bash, zsh, fish)")
	cmd.Flags().BoolVar(&autoSwitch, "auto-switch", false, "Enable the per-directory auto-switch hook")
	return cmd
}

// setupVersion picks the version the initial block should activate: the
// configured default, else the newest installed version.
func (a *app) setupVersion(ctx context.Context) (phpver.ID, error) {
	if a.settings.DefaultVersion != "" {
		return a.settings.DefaultVersion, nil
	}

	installed, err := a.brew.ListInstalled(ctx)
	if err != nil {
		return "", err
	}
	if len(installed) == 0 {
		return "", errors.New(MsgNoVersions)
	}
	return installed[len(installed)-1], nil
}
