package ledger_test

import (
	"context"
	"testing"

	"navidromefm/internal/ledger"
	"navidromefm/internal/normalize"
	"navidromefm/internal/testsupport"
)

func newLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	return ledger.New(store.DB())
}

func TestRecordAndLookup(t *testing.T) {
	ledg := newLedger(t)
	ctx := context.Background()
	key := normalize.KeyFor("Nirvana", "Lithium")

	decision, err := ledg.Lookup(ctx, key)
	if err != nil {
		t.Fatalf("lookup empty ledger: %v", err)
	}
	if decision != nil {
		t.Fatalf("unexpected decision: %+v", decision)
	}

	if err := ledg.Record(ctx, key, "track-1"); err != nil {
		t.Fatalf("record: %v", err)
	}
	decision, err = ledg.Lookup(ctx, key)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if decision == nil || decision.TrackID != "track-1" || decision.Rejected() {
		t.Fatalf("wrong decision: %+v", decision)
	}
	if decision.DecidedAt.IsZero() {
		t.Fatal("decided-at not recorded")
	}
}

func TestRecordReplacesPreviousDecision(t *testing.T) {
	ledg := newLedger(t)
	ctx := context.Background()
	key := normalize.KeyFor("Nirvana", "Lithium")

	if err := ledg.Record(ctx, key, "track-1"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := ledg.Record(ctx, key, "track-2"); err != nil {
		t.Fatalf("re-record: %v", err)
	}

	decision, err := ledg.Lookup(ctx, key)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if decision.TrackID != "track-2" {
		t.Fatalf("old decision survived: %+v", decision)
	}

	count, err := ledg.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single decision row, got %d", count)
	}
}

func TestRecordRejection(t *testing.T) {
	ledg := newLedger(t)
	ctx := context.Background()
	key := normalize.KeyFor("Some Podcast", "Episode 44")

	if err := ledg.Record(ctx, key, ""); err != nil {
		t.Fatalf("record rejection: %v", err)
	}
	decision, err := ledg.Lookup(ctx, key)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if decision == nil || !decision.Rejected() {
		t.Fatalf("rejection not persisted: %+v", decision)
	}
}

func TestRecordRefusesEmptyKey(t *testing.T) {
	ledg := newLedger(t)
	if err := ledg.Record(context.Background(), normalize.Key{}, "track-1"); err == nil {
		t.Fatal("empty key accepted")
	}
}

func TestLookupMatchesNormalizedVariants(t *testing.T) {
	ledg := newLedger(t)
	ctx := context.Background()

	if err := ledg.Record(ctx, normalize.KeyFor("The Beatles", "Help!"), "track-1"); err != nil {
		t.Fatalf("record: %v", err)
	}
	decision, err := ledg.Lookup(ctx, normalize.KeyFor("Beatles", "help"))
	if err != nil {
		t.Fatalf("lookup variant: %v", err)
	}
	if decision == nil || decision.TrackID != "track-1" {
		t.Fatalf("variant spelling missed the decision: %+v", decision)
	}
}
