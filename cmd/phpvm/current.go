package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/phpvm/phpvm/internal/service"
)

func newCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: MsgCurrentShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, resolved, err := service.CurrentVersion()
			if err != nil {
				return err
			}
			pterm.Success.Printfln("%s (%s)", id, resolved)
			return nil
		},
	}
}
