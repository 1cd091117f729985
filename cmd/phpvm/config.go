package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/phpvm/phpvm/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: MsgConfigShort,
	}
	cmd.AddCommand(newConfigListCmd(), newConfigGetCmd(), newConfigSetCmd())
	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show all settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			for _, key := range config.Keys() {
				value, err := a.settings.Get(key)
				if err != nil {
					return err
				}
				if value == "" {
					value = "(unset)"
				}
				pterm.Printfln("%-16s %s", key, value)
			}
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Show one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			value, err := a.settings.Get(args[0])
			if err != nil {
				return err
			}
			pterm.Println(value)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.settings.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := config.Save(a.configPath, a.settings); err != nil {
				return err
			}
			pterm.Success.Printfln("%s = %s", args[0], args[1])
			return nil
		},
	}
}
