package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: MsgCacheShort,
	}
	cmd.AddCommand(newCacheRefreshCmd(), newCacheClearCmd())
	return cmd
}

func newCacheRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Re-query Homebrew and rewrite the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			spinner, _ := pterm.DefaultSpinner.Start("Querying available versions")
			ids, err := a.versionCache().ForceRefresh(cmd.Context())
			spinner.Stop()
			if err != nil {
				return err
			}

			pterm.Success.Printfln(MsgCacheRefreshed+" (%d versions)", len(ids))
			return nil
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the cached version list and directory map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.versionCache().Invalidate(); err != nil {
				return err
			}
			if err := a.dirCache().Clear(); err != nil {
				return err
			}
			pterm.Success.Println(MsgCacheCleared)
			return nil
		},
	}
}
