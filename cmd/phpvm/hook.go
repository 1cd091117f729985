package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phpvm/phpvm/internal/service"
	"github.com/phpvm/phpvm/internal/shell"
)

// The hook command is evaluated by the shell snippet the managed block
// installs; its stdout is shell code, so it must never print decoration.
func newHookCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:    "hook",
		Short:  MsgHookShort,
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return nil // stay silent; the prompt hook swallows output anyway
			}

			hook := service.NewHookService(a.brew, a.resolveService(), a.dirCache(), a.log)
			script, err := hook.Script(cmd.Context(), dir, shell.Detect().Dialect)
			if err != nil || script == "" {
				return nil
			}

			fmt.Fprint(cmd.OutOrStdout(), script)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to resolve")
	return cmd
}
