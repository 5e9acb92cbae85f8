package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var userFlag string
	var navidromeUserFlag string
	var configFlag string

	ctx := newCommandContext(&userFlag, &navidromeUserFlag, &configFlag)

	rootCmd := &cobra.Command{
		Use:           "navidrome-fm",
		Short:         "Reconcile last.fm listening history with a Navidrome library",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "last.fm username")
	rootCmd.PersistentFlags().StringVar(&navidromeUserFlag, "navidrome-user", "", "Navidrome account name (inferred when the server has one user)")
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	_ = rootCmd.MarkPersistentFlagRequired("user")

	rootCmd.AddCommand(newInfoCommand(ctx))
	rootCmd.AddCommand(newFetchCommand(ctx))
	rootCmd.AddCommand(newMatchCommand(ctx))
	rootCmd.AddCommand(newUpdateCountsCommand(ctx))
	rootCmd.AddCommand(newUpdateScrobblesCommand(ctx))

	return rootCmd
}
