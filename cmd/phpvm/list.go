package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/phpvm/phpvm/internal/phpver"
	"github.com/phpvm/phpvm/internal/service"
)

func newListCmd() *cobra.Command {
	var available bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: MsgListShort,
		Long: `List installed PHP versions. With --available, list every version
Homebrew can install; the result is cached for an hour.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			installed, err := a.brew.ListInstalled(ctx)
			if err != nil {
				return err
			}

			active, _, _ := service.CurrentVersion()

			if !available {
				if len(installed) == 0 {
					pterm.Info.Println(MsgNoVersions)
					return nil
				}
				printVersions(installed, installed, active)
				return nil
			}

			spinner, _ := pterm.DefaultSpinner.Start("Querying available versions")
			ids, err := a.versionCache().Available(ctx)
			spinner.Stop()
			if err != nil {
				return err
			}
			printVersions(ids, installed, active)
			return nil
		},
	}

	cmd.Flags().BoolVar(&available, "available", false, "List versions available for install")
	return cmd
}

func printVersions(ids, installed []phpver.ID, active phpver.ID) {
	installedSet := make(map[phpver.ID]bool, len(installed))
	for _, id := range installed {
		installedSet[id] = true
	}

	for _, id := range ids {
		switch {
		case id == active:
			pterm.Success.Printfln("%s (active)", id)
		case installedSet[id]:
			pterm.Info.Printfln("%s (installed)", id)
		default:
			pterm.Println("  " + id.String())
		}
	}
}
