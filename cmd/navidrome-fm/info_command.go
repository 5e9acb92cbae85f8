package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"navidromefm/internal/config"
	"navidromefm/internal/scrobbles"
)

func newInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the last.fm account and local store summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := ctx.user()
			if err != nil {
				return err
			}
			client, err := ctx.lastfmClient()
			if err != nil {
				return err
			}
			info, err := client.UserInfo(cmd.Context(), user)
			if err != nil {
				return fmt.Errorf("fetch user info: %w", err)
			}

			return ctx.withStore(func(cfg *config.Config, store *scrobbles.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				decisions, err := ctx.ledgerFor(store).Count(cmd.Context())
				if err != nil {
					return err
				}

				rows := [][]string{
					{"last.fm user", info.Name},
					{"last.fm play count", strconv.FormatInt(info.PlayCount, 10)},
					{"local scrobbles", strconv.Itoa(stats.Scrobbles)},
					{"distinct tracks", strconv.Itoa(stats.DistinctTracks)},
					{"recorded decisions", strconv.Itoa(decisions)},
				}
				for _, status := range []scrobbles.Status{
					scrobbles.StatusUnmatched,
					scrobbles.StatusExactMatch,
					scrobbles.StatusFuzzyMatch,
					scrobbles.StatusResolved,
					scrobbles.StatusRejected,
				} {
					rows = append(rows, []string{
						"scrobbles " + string(status),
						strconv.Itoa(stats.ByStatus[status]),
					})
				}

				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Field", "Value"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}
