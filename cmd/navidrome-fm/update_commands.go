package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"navidromefm/internal/aggregate"
	"navidromefm/internal/catalog"
	"navidromefm/internal/config"
	"navidromefm/internal/scrobbles"
)

func newUpdateCountsCommand(ctx *commandContext) *cobra.Command {
	var databaseFlag string

	cmd := &cobra.Command{
		Use:   "update-counts",
		Short: "Add matched scrobbles to the Navidrome play counts",
		Long: `Update-counts rolls the matched scrobbles not yet counted into per-track
play-count increments and applies them to the Navidrome annotation rows.
Counts only ever go up; each scrobble is stamped as counted in the same
transaction as the writes, so a rerun applies nothing and a scrobble
resolved after an earlier run is still picked up.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *scrobbles.Store) error {
				db, user, err := ctx.openCatalog(cmd.Context(), databaseFlag)
				if err != nil {
					return err
				}
				path := db.Path()
				db.Close()

				scrs, err := store.ListUnapplied(cmd.Context(), scrobbles.ModeCounts)
				if err != nil {
					return err
				}
				incs := aggregate.Counts(scrs)
				if len(incs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no new matched scrobbles to apply")
					return nil
				}

				updater := catalog.NewUpdater(store, path, ctx.logger())
				applied, err := updater.ApplyCounts(cmd.Context(), user.ID, incs, aggregate.IDs(scrs))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "raised play counts for %d tracks from %d scrobbles\n",
					applied, len(scrs))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&databaseFlag, "database", "", "Path to the Navidrome database")
	_ = cmd.MarkFlagRequired("database")

	return cmd
}

func newUpdateScrobblesCommand(ctx *commandContext) *cobra.Command {
	var databaseFlag string

	cmd := &cobra.Command{
		Use:   "update-scrobbles",
		Short: "Replay matched scrobbles into the Navidrome listen history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *scrobbles.Store) error {
				db, user, err := ctx.openCatalog(cmd.Context(), databaseFlag)
				if err != nil {
					return err
				}
				path := db.Path()
				db.Close()

				scrs, err := store.ListUnapplied(cmd.Context(), scrobbles.ModeHistory)
				if err != nil {
					return err
				}
				events := aggregate.Events(scrs)
				if len(events) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no new matched scrobbles to replay")
					return nil
				}

				updater := catalog.NewUpdater(store, path, ctx.logger())
				inserted, err := updater.ApplyHistory(cmd.Context(), user.ID, events, aggregate.IDs(scrs))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "recorded %d listens in the Navidrome history\n", inserted)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&databaseFlag, "database", "",
		"Path to the Navidrome database (defaults to navidrome.database_path)")

	return cmd
}
