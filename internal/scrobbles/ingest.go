package scrobbles

import (
	"context"
	"fmt"
	"time"
)

// Ingest validates a raw fetched record and inserts it, deduplicated by
// source id. It reports whether the record was new to the store. Records
// failing validation return an error wrapping ErrMalformedRecord and leave
// the store untouched.
func (s *Store) Ingest(ctx context.Context, raw Raw) (bool, error) {
	if err := raw.validate(); err != nil {
		return false, err
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`INSERT OR IGNORE INTO scrobbles (
            source_id, artist, track, album, mbid, played_at, match_status, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		raw.SourceID(),
		raw.Artist,
		raw.Track,
		nullableString(raw.Album),
		nullableString(raw.MBID),
		raw.PlayedAt.Unix(),
		StatusUnmatched,
		now,
	)
	if err != nil {
		return false, fmt.Errorf("insert scrobble: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return inserted > 0, nil
}

// HasSource reports whether a record with the given source id is already
// stored. Fetch uses this to stop paging once it reaches known territory.
func (s *Store) HasSource(ctx context.Context, sourceID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM scrobbles WHERE source_id = ?", sourceID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check source id: %w", err)
	}
	return count > 0, nil
}
