package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"navidromefm/internal/config"
	"navidromefm/internal/lastfm"
	"navidromefm/internal/scrobbles"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var startPage int
	var greedy bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download new scrobbles from last.fm into the local store",
		Long: `Fetch walks the last.fm listening history newest first and stores each
scrobble locally. By default the walk stops at the first scrobble already
in the store, which makes incremental runs cheap; --greedy keeps going
through the full history to backfill gaps.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := ctx.user()
			if err != nil {
				return err
			}
			client, err := ctx.lastfmClient()
			if err != nil {
				return err
			}

			return ctx.withStore(func(cfg *config.Config, store *scrobbles.Store) error {
				var inserted, duplicates, skipped int

				err := client.RecentTracks(cmd.Context(), user, startPage, func(page lastfm.Page) (bool, error) {
					for _, track := range page.Tracks {
						if track.NowPlaying {
							continue
						}
						raw := scrobbles.Raw{
							Artist:   track.Artist,
							Track:    track.Track,
							Album:    track.Album,
							MBID:     track.MBID,
							PlayedAt: track.PlayedAt,
						}
						ok, err := store.Ingest(cmd.Context(), raw)
						if err != nil {
							if errors.Is(err, scrobbles.ErrMalformedRecord) {
								skipped++
								continue
							}
							return false, err
						}
						if !ok {
							duplicates++
							if !greedy {
								return false, nil
							}
							continue
						}
						inserted++
					}
					fmt.Fprintf(cmd.OutOrStdout(), "page %d/%d: %d scrobbles stored\n",
						page.Number, page.TotalPages, inserted)
					return true, nil
				})
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "fetched %d new scrobbles (%d duplicates, %d malformed)\n",
					inserted, duplicates, skipped)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&startPage, "page", 1, "History page to resume fetching from")
	cmd.Flags().BoolVar(&greedy, "greedy", false, "Walk the full history instead of stopping at the first known scrobble")

	return cmd
}
