package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/phpvm/phpvm/internal/service"
)

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [dir]",
		Short: MsgResolveShort,
		Long: `Walk upward from a directory (default: the working directory) and report
which PHP version its project files request, and from where.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			dir := ""
			if len(args) == 1 {
				dir = args[0]
			} else {
				dir, err = os.Getwd()
				if err != nil {
					return fmt.Errorf("determine working directory: %w", err)
				}
			}

			res, err := a.resolveService().Execute(cmd.Context(), dir)
			if err != nil {
				return err
			}

			if res.Source == service.SourceDefault {
				pterm.Success.Printfln("%s (configured default)", res.Version)
				return nil
			}
			pterm.Success.Printfln("%s (from %s: %s)", res.Version, res.Source, res.File)
			return nil
		},
	}
}
