package testsupport

import (
	"context"
	"testing"
	"time"

	"navidromefm/internal/config"
	"navidromefm/internal/scrobbles"
)

// MustOpenStore opens a scrobble store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *scrobbles.Store {
	t.Helper()

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	store, err := scrobbles.Open(cfg.ScrobbleDBPath("testuser"))
	if err != nil {
		t.Fatalf("scrobbles.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// IngestRaw inserts one scrobble and fails the test on error or duplicate.
func IngestRaw(t testing.TB, store *scrobbles.Store, artist, track, album string, playedAt time.Time) {
	t.Helper()

	inserted, err := store.Ingest(context.Background(), scrobbles.Raw{
		Artist:   artist,
		Track:    track,
		Album:    album,
		PlayedAt: playedAt,
	})
	if err != nil {
		t.Fatalf("ingest %s - %s: %v", artist, track, err)
	}
	if !inserted {
		t.Fatalf("ingest %s - %s: duplicate", artist, track)
	}
}
