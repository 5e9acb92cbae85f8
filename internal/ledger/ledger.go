// Package ledger persists operator disambiguation decisions so that a
// question answered once is never asked again.
//
// Decisions are keyed by the normalized artist/title key, which means one
// answer covers every scrobble of the same recording regardless of how the
// service spelled it that day. Recording a new decision for a key replaces
// the old one; that is how corrections work.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"navidromefm/internal/normalize"
)

// Decision is one persisted resolution. An empty TrackID records an
// explicit rejection: scrobbles with this key never match anything.
type Decision struct {
	Key       normalize.Key
	TrackID   string
	DecidedAt time.Time
}

// Rejected reports whether the decision forbids matching.
func (d Decision) Rejected() bool {
	return d.TrackID == ""
}

// Ledger reads and writes decisions on the scrobble store's database.
type Ledger struct {
	db *sql.DB
}

// New wraps the given database handle. The resolutions table is created by
// the scrobble store schema.
func New(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

// Record stores a decision for a key, replacing any previous decision.
func (l *Ledger) Record(ctx context.Context, key normalize.Key, trackID string) error {
	if key.Empty() {
		return errors.New("ledger: refusing to record decision for empty key")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	var trackArg any
	if trackID != "" {
		trackArg = trackID
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO resolutions (artist_key, title_key, track_id, decided_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(artist_key, title_key) DO UPDATE SET track_id = excluded.track_id, decided_at = excluded.decided_at`,
		key.Artist, key.Title, trackArg, now)
	if err != nil {
		return fmt.Errorf("record decision: %w", err)
	}
	return nil
}

// Lookup returns the decision for a key, or nil when none exists.
func (l *Ledger) Lookup(ctx context.Context, key normalize.Key) (*Decision, error) {
	var (
		trackID   sql.NullString
		decidedAt string
	)
	err := l.db.QueryRowContext(ctx,
		"SELECT track_id, decided_at FROM resolutions WHERE artist_key = ? AND title_key = ?",
		key.Artist, key.Title).Scan(&trackID, &decidedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup decision: %w", err)
	}

	decision := &Decision{Key: key, TrackID: trackID.String}
	if parsed, err := time.Parse(time.RFC3339Nano, decidedAt); err == nil {
		decision.DecidedAt = parsed
	}
	return decision, nil
}

// Count returns the number of stored decisions.
func (l *Ledger) Count(ctx context.Context) (int, error) {
	var count int
	if err := l.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM resolutions").Scan(&count); err != nil {
		return 0, fmt.Errorf("count decisions: %w", err)
	}
	return count, nil
}
