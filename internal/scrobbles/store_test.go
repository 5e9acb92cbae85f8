package scrobbles_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"navidromefm/internal/scrobbles"
	"navidromefm/internal/testsupport"
)

func openStore(t *testing.T) *scrobbles.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	return testsupport.MustOpenStore(t, cfg)
}

func rawScrobble(artist, track string, playedAt time.Time) scrobbles.Raw {
	return scrobbles.Raw{Artist: artist, Track: track, Album: "Album", PlayedAt: playedAt}
}

func TestIngestDeduplicatesBySource(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	when := time.Unix(1700000000, 0).UTC()

	inserted, err := store.Ingest(ctx, rawScrobble("Artist", "Track", when))
	if err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	if !inserted {
		t.Fatal("first ingest reported duplicate")
	}

	inserted, err = store.Ingest(ctx, rawScrobble("Artist", "Track", when))
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if inserted {
		t.Fatal("identical record inserted twice")
	}

	// Same song played a second later is a distinct scrobble.
	inserted, err = store.Ingest(ctx, rawScrobble("Artist", "Track", when.Add(time.Second)))
	if err != nil {
		t.Fatalf("third ingest: %v", err)
	}
	if !inserted {
		t.Fatal("later play treated as duplicate")
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Scrobbles != 2 {
		t.Fatalf("expected 2 scrobbles, got %d", stats.Scrobbles)
	}
}

func TestIngestRejectsMalformedRecords(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	when := time.Unix(1700000000, 0).UTC()

	cases := []scrobbles.Raw{
		{Artist: "", Track: "Track", PlayedAt: when},
		{Artist: "Artist", Track: "  ", PlayedAt: when},
		{Artist: "Artist", Track: "Track"},
	}
	for _, raw := range cases {
		if _, err := store.Ingest(ctx, raw); !errors.Is(err, scrobbles.ErrMalformedRecord) {
			t.Fatalf("ingest %+v: expected ErrMalformedRecord, got %v", raw, err)
		}
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Scrobbles != 0 {
		t.Fatalf("malformed records were stored: %d", stats.Scrobbles)
	}
}

func TestHasSource(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	raw := rawScrobble("Artist", "Track", time.Unix(1700000000, 0).UTC())

	seen, err := store.HasSource(ctx, raw.SourceID())
	if err != nil {
		t.Fatalf("has source: %v", err)
	}
	if seen {
		t.Fatal("source reported before ingest")
	}

	if _, err := store.Ingest(ctx, raw); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	seen, err = store.HasSource(ctx, raw.SourceID())
	if err != nil {
		t.Fatalf("has source: %v", err)
	}
	if !seen {
		t.Fatal("source not reported after ingest")
	}
}

func TestSetMatchEnforcesInvariants(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	testsupport.IngestRaw(t, store, "Artist", "Track", "Album", time.Unix(1700000000, 0).UTC())

	unmatched, err := store.ListUnmatched(ctx)
	if err != nil {
		t.Fatalf("list unmatched: %v", err)
	}
	if len(unmatched) != 1 {
		t.Fatalf("expected 1 unmatched scrobble, got %d", len(unmatched))
	}
	id := unmatched[0].ID
	score := 0.95

	cases := []struct {
		name    string
		status  scrobbles.Status
		trackID string
		score   *float64
	}{
		{"exact without track", scrobbles.StatusExactMatch, "", &score},
		{"fuzzy without score", scrobbles.StatusFuzzyMatch, "track-1", nil},
		{"resolved without track", scrobbles.StatusResolved, "", nil},
		{"rejected with track", scrobbles.StatusRejected, "track-1", nil},
		{"unknown status", scrobbles.Status("bogus"), "", nil},
	}
	for _, tc := range cases {
		if err := store.SetMatch(ctx, id, tc.status, tc.trackID, tc.score); !errors.Is(err, scrobbles.ErrInvalidTransition) {
			t.Fatalf("%s: expected ErrInvalidTransition, got %v", tc.name, err)
		}
	}

	bad := 1.5
	if err := store.SetMatch(ctx, id, scrobbles.StatusExactMatch, "track-1", &bad); !errors.Is(err, scrobbles.ErrInvalidTransition) {
		t.Fatalf("out-of-range score accepted: %v", err)
	}

	if err := store.SetMatch(ctx, id, scrobbles.StatusFuzzyMatch, "track-1", &score); err != nil {
		t.Fatalf("valid fuzzy match rejected: %v", err)
	}
	got, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.MatchStatus != scrobbles.StatusFuzzyMatch || got.MatchTrackID != "track-1" {
		t.Fatalf("match not persisted: %+v", got)
	}
	if got.MatchScore == nil || *got.MatchScore != score {
		t.Fatalf("score not persisted: %+v", got.MatchScore)
	}

	if err := store.SetMatch(ctx, id+100, scrobbles.StatusRejected, "", nil); !errors.Is(err, scrobbles.ErrNotFound) {
		t.Fatalf("missing id: expected ErrNotFound, got %v", err)
	}
}

func TestListUnappliedFiltersAndOrders(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Unix(1700000000, 0).UTC()

	for i := 0; i < 4; i++ {
		testsupport.IngestRaw(t, store, "Artist", "Track", "Album", base.Add(time.Duration(i)*time.Minute))
	}
	unmatched, err := store.ListUnmatched(ctx)
	if err != nil {
		t.Fatalf("list unmatched: %v", err)
	}

	score := 1.0
	if err := store.SetMatch(ctx, unmatched[0].ID, scrobbles.StatusExactMatch, "track-1", &score); err != nil {
		t.Fatalf("set exact: %v", err)
	}
	if err := store.SetMatch(ctx, unmatched[1].ID, scrobbles.StatusResolved, "track-2", nil); err != nil {
		t.Fatalf("set resolved: %v", err)
	}
	if err := store.SetMatch(ctx, unmatched[2].ID, scrobbles.StatusRejected, "", nil); err != nil {
		t.Fatalf("set rejected: %v", err)
	}
	// unmatched[3] stays unmatched.

	pending, err := store.ListUnapplied(ctx, scrobbles.ModeCounts)
	if err != nil {
		t.Fatalf("list unapplied: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 unapplied scrobbles, got %d", len(pending))
	}
	if pending[0].ID >= pending[1].ID {
		t.Fatal("unapplied scrobbles not ordered by id")
	}
}

func TestMarkAppliedIsPerMode(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Unix(1700000000, 0).UTC()

	testsupport.IngestRaw(t, store, "Artist", "Track", "Album", base)
	unmatched, err := store.ListUnmatched(ctx)
	if err != nil {
		t.Fatalf("list unmatched: %v", err)
	}
	score := 1.0
	if err := store.SetMatch(ctx, unmatched[0].ID, scrobbles.StatusExactMatch, "track-1", &score); err != nil {
		t.Fatalf("set match: %v", err)
	}

	tx, err := store.DB().BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := store.MarkAppliedTx(ctx, tx, scrobbles.ModeCounts, []int64{unmatched[0].ID}); err != nil {
		t.Fatalf("mark applied: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	pending, err := store.ListUnapplied(ctx, scrobbles.ModeCounts)
	if err != nil {
		t.Fatalf("list counts: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("counts still lists %d scrobbles after marking", len(pending))
	}

	// The history stamp is independent, so the same scrobble is still due
	// for replay.
	pending, err = store.ListUnapplied(ctx, scrobbles.ModeHistory)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("history lists %d scrobbles, want 1", len(pending))
	}
}

func TestLateMatchedScrobbleIsStillListed(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Unix(1700000000, 0).UTC()

	testsupport.IngestRaw(t, store, "Artist", "First", "Album", base)
	testsupport.IngestRaw(t, store, "Artist", "Second", "Album", base.Add(time.Minute))
	unmatched, err := store.ListUnmatched(ctx)
	if err != nil {
		t.Fatalf("list unmatched: %v", err)
	}

	// Match and apply only the later scrobble.
	score := 1.0
	if err := store.SetMatch(ctx, unmatched[1].ID, scrobbles.StatusExactMatch, "track-2", &score); err != nil {
		t.Fatalf("set match: %v", err)
	}
	tx, err := store.DB().BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := store.MarkAppliedTx(ctx, tx, scrobbles.ModeCounts, []int64{unmatched[1].ID}); err != nil {
		t.Fatalf("mark applied: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	// Resolving the earlier scrobble afterwards must still surface it.
	if err := store.SetMatch(ctx, unmatched[0].ID, scrobbles.StatusResolved, "track-1", nil); err != nil {
		t.Fatalf("resolve earlier scrobble: %v", err)
	}
	pending, err := store.ListUnapplied(ctx, scrobbles.ModeCounts)
	if err != nil {
		t.Fatalf("list unapplied: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != unmatched[0].ID {
		t.Fatalf("late-resolved scrobble not listed: %+v", pending)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	path := store.Path()
	if _, err := store.DB().Exec("UPDATE schema_version SET version = 999"); err != nil {
		t.Fatalf("bump schema version: %v", err)
	}
	store.Close()

	_, err := scrobbles.Open(path)
	if !errors.Is(err, scrobbles.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestApplyDecisionByKey(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Unix(1700000000, 0).UTC()

	testsupport.IngestRaw(t, store, "Artist", "Track", "Album", base)
	testsupport.IngestRaw(t, store, "Artist", "Track", "Album", base.Add(time.Minute))
	unmatched, err := store.ListUnmatched(ctx)
	if err != nil {
		t.Fatalf("list unmatched: %v", err)
	}
	ids := []int64{unmatched[0].ID, unmatched[1].ID}

	if err := store.ApplyDecisionByKey(ctx, ids, "track-9"); err != nil {
		t.Fatalf("apply accept: %v", err)
	}
	for _, id := range ids {
		got, err := store.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("get %d: %v", id, err)
		}
		if got.MatchStatus != scrobbles.StatusResolved || got.MatchTrackID != "track-9" {
			t.Fatalf("decision not applied: %+v", got)
		}
	}
}
