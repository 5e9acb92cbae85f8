package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"

	"github.com/alitto/pond/v2"

	"navidromefm/internal/catalog"
	"navidromefm/internal/config"
	"navidromefm/internal/ledger"
	"navidromefm/internal/logging"
	"navidromefm/internal/normalize"
	"navidromefm/internal/scrobbles"
)

// Candidate is one catalog track offered for a scrobble, with its score.
type Candidate struct {
	Track catalog.Track
	Score float64
}

// Pending is a scrobble the automatic stages could not settle. Its
// candidates scored below the auto-accept threshold but at or above the
// floor; an operator decision is needed.
type Pending struct {
	Scrobble   scrobbles.Scrobble
	Key        normalize.Key
	Candidates []Candidate
}

// Summary tallies what one run did with the unmatched scrobbles it saw.
type Summary struct {
	Total     int
	Exact     int
	Fuzzy     int
	Resolved  int
	Rejected  int
	Pending   int
	Unmatched int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d scrobbles: %d exact, %d fuzzy, %d resolved, %d rejected, %d pending, %d unmatched",
		s.Total, s.Exact, s.Fuzzy, s.Resolved, s.Rejected, s.Pending, s.Unmatched)
}

// Options selects which stages a run executes.
type Options struct {
	// Fuzzy enables the similarity stage after the exact stages.
	Fuzzy bool
}

// Engine drives the match stages over the store's unmatched scrobbles.
type Engine struct {
	store  *scrobbles.Store
	ledger *ledger.Ledger
	index  *Index
	scorer *Scorer
	cfg    config.Match
	logger *slog.Logger
}

// NewEngine wires a match engine over the store, the resolution ledger, and
// the catalog index.
func NewEngine(store *scrobbles.Store, ledg *ledger.Ledger, index *Index, cfg config.Match, logger *slog.Logger) *Engine {
	return &Engine{
		store:  store,
		ledger: ledg,
		index:  index,
		scorer: NewScorer(cfg),
		cfg:    cfg,
		logger: logging.WithComponent(logger, "match"),
	}
}

// Run matches every unmatched scrobble in the store. Recorded resolutions
// and the exact stages always run; the fuzzy stage runs only when
// opts.Fuzzy is set. Scrobbles no stage settles are counted unmatched and
// left untouched, along with the pendings awaiting an operator.
func (e *Engine) Run(ctx context.Context, opts Options) (*Summary, []Pending, error) {
	scrs, err := e.store.ListUnmatched(ctx)
	if err != nil {
		return nil, nil, err
	}
	summary := &Summary{Total: len(scrs)}

	var remaining []scrobbles.Scrobble
	for _, scr := range scrs {
		settled, err := e.matchExact(ctx, scr, summary)
		if err != nil {
			return nil, nil, err
		}
		if !settled {
			remaining = append(remaining, scr)
		}
	}

	if !opts.Fuzzy {
		summary.Unmatched = len(remaining)
		e.logger.Info("match run complete", slog.String("summary", summary.String()))
		return summary, nil, nil
	}

	pendings, err := e.matchFuzzy(ctx, remaining, summary)
	if err != nil {
		return nil, nil, err
	}
	e.logger.Info("match run complete", slog.String("summary", summary.String()))
	return summary, pendings, nil
}

// matchExact runs the ledger and equality stages for one scrobble and
// reports whether they settled it.
func (e *Engine) matchExact(ctx context.Context, scr scrobbles.Scrobble, summary *Summary) (bool, error) {
	key := normalize.KeyFor(scr.Artist, scr.Track)
	if key.Empty() {
		// A blank artist or title never auto-matches, even on a MusicBrainz
		// id hit; there is no name to verify the id against.
		return false, nil
	}

	decision, err := e.ledger.Lookup(ctx, key)
	if err != nil {
		return false, err
	}
	if decision != nil {
		if decision.Rejected() {
			if err := e.store.SetMatch(ctx, scr.ID, scrobbles.StatusRejected, "", nil); err != nil {
				return false, err
			}
			summary.Rejected++
			return true, nil
		}
		if err := e.store.SetMatch(ctx, scr.ID, scrobbles.StatusResolved, decision.TrackID, nil); err != nil {
			return false, err
		}
		summary.Resolved++
		return true, nil
	}

	if track := e.index.ByMBID(scr.MBID); track != nil {
		if err := e.acceptExact(ctx, scr, track); err != nil {
			return false, err
		}
		summary.Exact++
		return true, nil
	}

	track, err := e.index.Lookup(key)
	if err != nil {
		if errors.Is(err, ErrAmbiguousCatalogEntry) {
			// Several tracks share this key, so equality cannot pick one.
			// The scrobble falls through to the fuzzy stage.
			e.logger.Warn("skipping exact match on ambiguous key",
				slog.String(logging.FieldSourceID, scr.SourceID),
				slog.String("key", key.String()))
			return false, nil
		}
		return false, err
	}
	if track != nil {
		if err := e.acceptExact(ctx, scr, track); err != nil {
			return false, err
		}
		summary.Exact++
		return true, nil
	}
	return false, nil
}

func (e *Engine) acceptExact(ctx context.Context, scr scrobbles.Scrobble, track *catalog.Track) error {
	score := 1.0
	if err := e.store.SetMatch(ctx, scr.ID, scrobbles.StatusExactMatch, track.ID, &score); err != nil {
		return err
	}
	e.logger.Debug("exact match",
		slog.String(logging.FieldSourceID, scr.SourceID),
		slog.String(logging.FieldTrackID, track.ID))
	return nil
}

type fuzzyResult struct {
	scrobble   scrobbles.Scrobble
	candidates []Candidate
}

// matchFuzzy scores the remaining scrobbles against their candidate blocks
// on a worker pool. Scoring is parallel; results are applied in submission
// order so repeated runs behave the same.
func (e *Engine) matchFuzzy(ctx context.Context, scrs []scrobbles.Scrobble, summary *Summary) ([]Pending, error) {
	workers := e.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pool := pond.NewResultPool[fuzzyResult](workers)
	defer pool.StopAndWait()

	group := pool.NewGroup()
	for _, scr := range scrs {
		scr := scr
		group.Submit(func() fuzzyResult {
			return e.scoreOne(scr)
		})
	}
	// Group results come back in submission order, which keeps runs
	// deterministic regardless of worker scheduling.
	results, err := group.Wait()
	if err != nil {
		return nil, err
	}

	var pendings []Pending
	for _, result := range results {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if len(result.candidates) == 0 {
			summary.Unmatched++
			continue
		}
		best := result.candidates[0]
		if best.Score >= e.cfg.AutoAcceptThreshold && e.canAutoAccept(result.candidates) {
			score := best.Score
			if err := e.store.SetMatch(ctx, result.scrobble.ID, scrobbles.StatusFuzzyMatch, best.Track.ID, &score); err != nil {
				return nil, err
			}
			summary.Fuzzy++
			e.logger.Debug("fuzzy match",
				slog.String(logging.FieldSourceID, result.scrobble.SourceID),
				slog.String(logging.FieldTrackID, best.Track.ID),
				slog.Float64(logging.FieldScore, best.Score))
			continue
		}
		pendings = append(pendings, Pending{
			Scrobble:   result.scrobble,
			Key:        normalize.KeyFor(result.scrobble.Artist, result.scrobble.Track),
			Candidates: result.candidates,
		})
		summary.Pending++
	}
	return pendings, nil
}

// canAutoAccept reports whether the top candidate can be taken without an
// operator. A tie for the top score, or a top track whose canonical key is
// shared by another catalog entry, is a coin flip and stays pending.
func (e *Engine) canAutoAccept(candidates []Candidate) bool {
	best := candidates[0]
	if len(candidates) > 1 && candidates[1].Score == best.Score {
		return false
	}
	return !e.index.ambiguousKey(normalize.KeyFor(best.Track.Artist, best.Track.Title))
}

// scoreOne rates one scrobble against its candidate block and keeps the top
// candidates at or above the floor, ordered by score descending with track
// id breaking ties.
func (e *Engine) scoreOne(scr scrobbles.Scrobble) fuzzyResult {
	key := normalize.KeyFor(scr.Artist, scr.Track)
	if key.Empty() {
		return fuzzyResult{scrobble: scr}
	}
	albumKey := normalize.Title(scr.Album)

	var candidates []Candidate
	for _, cand := range e.index.candidates(key) {
		score := e.scorer.Score(key, albumKey, cand)
		if score < e.cfg.Floor {
			continue
		}
		candidates = append(candidates, Candidate{Track: cand.track, Score: score})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Track.ID < candidates[j].Track.ID
	})
	if e.cfg.TopK > 0 && len(candidates) > e.cfg.TopK {
		candidates = candidates[:e.cfg.TopK]
	}
	return fuzzyResult{scrobble: scr, candidates: candidates}
}
