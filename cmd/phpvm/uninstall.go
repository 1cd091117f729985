package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/phpvm/phpvm/internal/brew"
)

func newUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall <version>",
		Short: MsgUninstallShort,
		Args:  cobra.ExactArgs(1),
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

			spinner, _ := pterm.DefaultSpinner.Start("Uninstalling " + version.Formula())
			err = a.brew.Execute(ctx, brew.UninstallPolicy(version.Formula()), confirm)
			if err != nil {
				spinner.Fail()
				return err
			}
			spinner.Success()

			pterm.Success.Printfln(MsgUninstalled, version)
			return nil
		},
	}
}
