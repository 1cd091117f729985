package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/phpvm/phpvm/internal/phpver"
	"github.com/phpvm/phpvm/internal/service"
)

func newRestartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restart [version]",
		Short: MsgRestartShort,
		Long:  `Restart php-fpm through brew services. Defaults to the active version.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var version phpver.ID
			if len(args) == 1 {
				version, err = a.normalizeArg(ctx, args[0])
				if err != nil {
					return err
				}
			} else {
				version, _, err = service.CurrentVersion()
				if err != nil {
					return err
				}
			}

			spinner, _ := pterm.DefaultSpinner.Start("Restarting php-fpm for " + version.Formula())
			if err := a.brew.ServiceRestart(ctx, version); err != nil {
				spinner.Fail()
				return err
			}
			spinner.Success()

			pterm.Success.Println(MsgFPMRestarted)
			return nil
		},
	}
}
