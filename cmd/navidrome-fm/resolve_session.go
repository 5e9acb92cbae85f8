package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"navidromefm/internal/match"
)

// runResolveSession walks the pending groups and asks the operator to pick
// a candidate, reject the key, or skip. Every answer is recorded in the
// ledger, so skipped groups are the only ones that come back next run.
func runResolveSession(cmd *cobra.Command, resolver *match.Resolver, groups []match.Group) error {
	out := cmd.OutOrStdout()
	reader := bufio.NewScanner(cmd.InOrStdin())
	resolved := 0

	for i, group := range groups {
		sample := group.Scrobbles[0]
		fmt.Fprintf(out, "\n[%d/%d] %s (%d scrobbles)\n", i+1, len(groups), sample.String(), len(group.Scrobbles))

		rows := make([][]string, 0, len(group.Candidates))
		for j, cand := range group.Candidates {
			rows = append(rows, []string{
				strconv.Itoa(j + 1),
				cand.Track.Artist,
				cand.Track.Title,
				cand.Track.Album,
				fmt.Sprintf("%.3f", cand.Score),
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"#", "Artist", "Title", "Album", "Score"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
		))

		choice, err := promptChoice(reader, out, len(group.Candidates))
		if err != nil {
			return err
		}
		switch choice.kind {
		case choiceQuit:
			fmt.Fprintf(out, "resolved %d of %d groups\n", resolved, len(groups))
			return nil
		case choiceSkip:
			continue
		case choiceReject:
			if err := resolver.Reject(cmd.Context(), group); err != nil {
				return err
			}
			resolved++
		case choiceAccept:
			track := group.Candidates[choice.index].Track
			if err := resolver.Accept(cmd.Context(), group, track.ID); err != nil {
				return err
			}
			resolved++
		}
	}

	fmt.Fprintf(out, "resolved %d of %d groups\n", resolved, len(groups))
	return nil
}

type choiceKind int

const (
	choiceAccept choiceKind = iota
	choiceReject
	choiceSkip
	choiceQuit
)

type choice struct {
	kind  choiceKind
	index int
}

func promptChoice(reader *bufio.Scanner, out io.Writer, candidates int) (choice, error) {
	for {
		fmt.Fprintf(out, "pick [1-%d], (r)eject, (s)kip, (q)uit: ", candidates)
		if !reader.Scan() {
			if err := reader.Err(); err != nil {
				return choice{}, err
			}
			return choice{kind: choiceQuit}, nil
		}
		answer := strings.ToLower(strings.TrimSpace(reader.Text()))
		switch answer {
		case "q", "quit":
			return choice{kind: choiceQuit}, nil
		case "s", "skip", "":
			return choice{kind: choiceSkip}, nil
		case "r", "reject":
			return choice{kind: choiceReject}, nil
		}
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= candidates {
			return choice{kind: choiceAccept, index: n - 1}, nil
		}
		fmt.Fprintf(out, "unrecognized answer %q\n", answer)
	}
}
