package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"navidromefm/internal/config"
	"navidromefm/internal/match"
	"navidromefm/internal/scrobbles"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var databaseFlag string
	var fuzzy bool
	var resolve bool

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Link stored scrobbles to Navidrome tracks",
		Long: `Match links every unmatched scrobble to a catalog track. Previously
recorded decisions and exact title/artist or MusicBrainz-id equality apply
automatically; --fuzzy adds similarity scoring for the rest, and --resolve
opens an interactive session for the candidates that scored below the
auto-accept threshold.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if resolve {
				fuzzy = true
			}

			return ctx.withStore(func(cfg *config.Config, store *scrobbles.Store) error {
				db, user, err := ctx.openCatalog(cmd.Context(), databaseFlag)
				if err != nil {
					return err
				}
				defer db.Close()

				tracks, err := db.Tracks(cmd.Context(), user.ID)
				if err != nil {
					return err
				}
				index := match.NewIndex(tracks)
				ledg := ctx.ledgerFor(store)
				engine := match.NewEngine(store, ledg, index, cfg.Match, ctx.logger())

				summary, pendings, err := engine.Run(cmd.Context(), match.Options{Fuzzy: fuzzy})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "matched "+summary.String())

				if !resolve || len(pendings) == 0 {
					return nil
				}
				if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
					return errors.New("interactive resolution requires a terminal, rerun without --resolve")
				}

				resolver := match.NewResolver(store, ledg, ctx.logger())
				return runResolveSession(cmd, resolver, match.GroupPendings(pendings))
			})
		},
	}

	cmd.Flags().StringVar(&databaseFlag, "database", "", "Path to the Navidrome database")
	cmd.Flags().BoolVar(&fuzzy, "fuzzy", false, "Enable similarity matching after the exact stages")
	cmd.Flags().BoolVar(&resolve, "resolve", false, "Interactively resolve candidates below the auto-accept threshold (implies --fuzzy)")

	return cmd
}
