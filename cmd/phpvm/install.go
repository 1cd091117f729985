package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/phpvm/phpvm/internal/brew"
)

func newInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install <version>",
		Short: MsgInstallShort,
		Long: `Install a PHP version through Homebrew. On failure the formula index is
updated and the install retried once, after confirmation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			version, err := a.normalizeArg(ctx, args[0])
			if err != nil {
				return err
			}

			spinner, _ := pterm.DefaultSpinner.Start("Installing " + version.Formula())
			err = a.brew.Execute(ctx, brew.InstallPolicy(version.Formula()), confirm)
			if err != nil {
				spinner.Fail()
				return err
			}
			spinner.Success()

			// The available set may have changed shape (a new formula was
			// tapped); drop the cache so the next list is honest.
			if err := a.versionCache().Invalidate(); err != nil {
				a.log.Warn("cache invalidation failed", "error", err)
			}

			pterm.Success.Printfln(MsgInstalled, version)
			return nil
		},
	}
}
