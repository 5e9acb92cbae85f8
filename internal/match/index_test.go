package match

import (
	"errors"
	"testing"

	"navidromefm/internal/catalog"
	"navidromefm/internal/normalize"
)

func TestIndexLookup(t *testing.T) {
	idx := NewIndex([]catalog.Track{
		{ID: "t1", Artist: "Sigur Rós", Title: "Svefn-g-englar"},
		{ID: "t2", Artist: "Motörhead", Title: "Ace of Spades"},
	})

	track, err := idx.Lookup(normalize.KeyFor("sigur ros", "svefn g englar"))
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if track == nil || track.ID != "t1" {
		t.Fatalf("diacritic variant missed: %+v", track)
	}

	track, err = idx.Lookup(normalize.KeyFor("Unknown", "Nothing"))
	if err != nil {
		t.Fatalf("lookup miss: %v", err)
	}
	if track != nil {
		t.Fatalf("unexpected hit: %+v", track)
	}
}

func TestIndexLookupAmbiguousKey(t *testing.T) {
	idx := NewIndex([]catalog.Track{
		{ID: "t1", Artist: "Nirvana", Title: "Lithium"},
		{ID: "t2", Artist: "NIRVANA", Title: "lithium"},
	})

	_, err := idx.Lookup(normalize.KeyFor("Nirvana", "Lithium"))
	if !errors.Is(err, ErrAmbiguousCatalogEntry) {
		t.Fatalf("expected ErrAmbiguousCatalogEntry, got %v", err)
	}
}

func TestIndexByMBID(t *testing.T) {
	idx := NewIndex([]catalog.Track{
		{ID: "t1", Artist: "Nirvana", Title: "Lithium", MBZRecordingID: "mbid-1"},
		{ID: "t2", Artist: "Nirvana", Title: "Come as You Are"},
	})

	if track := idx.ByMBID("mbid-1"); track == nil || track.ID != "t1" {
		t.Fatalf("mbid lookup failed: %+v", track)
	}
	if track := idx.ByMBID("mbid-9"); track != nil {
		t.Fatalf("unexpected mbid hit: %+v", track)
	}
	if track := idx.ByMBID(""); track != nil {
		t.Fatal("empty mbid matched")
	}
}

func TestIndexCandidatesShareTokens(t *testing.T) {
	idx := NewIndex([]catalog.Track{
		{ID: "t1", Artist: "Nirvana", Title: "Lithium"},
		{ID: "t2", Artist: "Queen", Title: "Bohemian Rhapsody"},
	})

	got := idx.candidates(normalize.KeyFor("Nirvana", "Lithum"))
	if len(got) != 1 || got[0].track.ID != "t1" {
		t.Fatalf("token blocking returned %+v", got)
	}
	if got := idx.candidates(normalize.Key{}); got != nil {
		t.Fatalf("empty key produced candidates: %+v", got)
	}
}
