package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/phpvm/phpvm/internal/phpver"
	"github.com/phpvm/phpvm/internal/resolver"
	"github.com/phpvm/phpvm/internal/service"
)

func newUseCmd() *cobra.Command {
	var noRelink bool

	cmd := &cobra.Command{
		Use:   "use [version]",
		Short: MsgUseShort,
		Long: `Switch the active PHP version. With no argument the version is resolved
from the current project (.php-version, .phpvmrc, composer.json,
.tool-versions) or the configured default.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			version, err := a.targetVersion(ctx, args)
			if err != nil {
				return err
			}

			res, err := a.switchService().Execute(ctx, service.SwitchRequest{
				Version:    version,
				SkipRelink: noRelink,
			})
			if err != nil {
				var nie *service.NotInstalledError
				if errors.As(err, &nie) {
					return fmt.Errorf("%w; "+MsgHintInstall, err, nie.Version.Release())
				}
				return err
			}

			pterm.Success.Printfln(MsgSwitched, res.Version)
			pterm.Info.Printfln("shell: %s (%s), startup file: %s",
				res.Detection.Dialect, res.Detection.Method, res.Profile.Path)
			if res.PathWarning != "" {
				pterm.Warning.Println(res.PathWarning)
			}
			if !res.LiveApplied && res.ReloadScript != "" {
				pterm.Info.Printfln(MsgReloadHint, res.ReloadScript)
			}
			if res.FPMRestart {
				pterm.Info.Println(MsgFPMRestarted)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noRelink, "no-relink", false, "Rewrite the shell configuration without touching Homebrew links")
	return cmd
}

// targetVersion picks the switch target: the explicit argument when given,
// otherwise project resolution from the working directory.
func (a *app) targetVersion(ctx context.Context, args []string) (phpver.ID, error) {
	if len(args) == 1 {
		return a.normalizeArg(ctx, args[0])
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("determine working directory: %w", err)
	}

	res, err := a.resolveService().Execute(ctx, cwd)
	if err != nil {
		if errors.Is(err, resolver.ErrNotFound) {
			return "", fmt.Errorf("no version requested and none found for %s; pass one explicitly or set default_version", cwd)
		}
		return "", err
	}
	return res.Version, nil
}
