package match

import (
	"context"
	"log/slog"
	"sort"

	"navidromefm/internal/ledger"
	"navidromefm/internal/logging"
	"navidromefm/internal/normalize"
	"navidromefm/internal/scrobbles"
)

// Group bundles the pending scrobbles that share a canonical key. One
// operator decision settles the whole group, and via the ledger every
// future scrobble with the same key.
type Group struct {
	Key        normalize.Key
	Scrobbles  []scrobbles.Scrobble
	Candidates []Candidate
}

// GroupPendings collapses pendings by canonical key, ordered by key so
// interactive sessions walk the backlog in a stable order. Candidates are
// taken from the highest-scoring member of each group.
func GroupPendings(pendings []Pending) []Group {
	byKey := make(map[normalize.Key]*Group)
	for _, p := range pendings {
		g, ok := byKey[p.Key]
		if !ok {
			g = &Group{Key: p.Key, Candidates: p.Candidates}
			byKey[p.Key] = g
		}
		g.Scrobbles = append(g.Scrobbles, p.Scrobble)
		if len(p.Candidates) > 0 && (len(g.Candidates) == 0 || p.Candidates[0].Score > g.Candidates[0].Score) {
			g.Candidates = p.Candidates
		}
	}
	groups := make([]Group, 0, len(byKey))
	for _, g := range byKey {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key.String() < groups[j].Key.String() })
	return groups
}

// Resolver applies operator decisions: it records them in the ledger and
// updates every affected scrobble.
type Resolver struct {
	store  *scrobbles.Store
	ledger *ledger.Ledger
	logger *slog.Logger
}

// NewResolver wires a resolver over the store and the ledger.
func NewResolver(store *scrobbles.Store, ledg *ledger.Ledger, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:  store,
		ledger: ledg,
		logger: logging.WithComponent(logger, "resolve"),
	}
}

// Accept binds the group's key to trackID and marks its scrobbles resolved.
func (r *Resolver) Accept(ctx context.Context, group Group, trackID string) error {
	if err := r.ledger.Record(ctx, group.Key, trackID); err != nil {
		return err
	}
	if err := r.store.ApplyDecisionByKey(ctx, scrobbleIDs(group), trackID); err != nil {
		return err
	}
	r.logger.Info("resolution accepted",
		slog.String("key", group.Key.String()),
		slog.String(logging.FieldTrackID, trackID),
		slog.Int("scrobbles", len(group.Scrobbles)))
	return nil
}

// Reject records the group's key as unmatchable and marks its scrobbles
// rejected so later runs skip them.
func (r *Resolver) Reject(ctx context.Context, group Group) error {
	if err := r.ledger.Record(ctx, group.Key, ""); err != nil {
		return err
	}
	if err := r.store.ApplyDecisionByKey(ctx, scrobbleIDs(group), ""); err != nil {
		return err
	}
	r.logger.Info("resolution rejected",
		slog.String("key", group.Key.String()),
		slog.Int("scrobbles", len(group.Scrobbles)))
	return nil
}

func scrobbleIDs(group Group) []int64 {
	ids := make([]int64, 0, len(group.Scrobbles))
	for _, scr := range group.Scrobbles {
		ids = append(ids, scr.ID)
	}
	return ids
}
