package scrobbles

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// UpdateMode selects which catalog update a run performs. Each mode stamps
// the scrobbles it has applied independently, so running one never hides
// scrobbles from the other.
type UpdateMode string

const (
	// ModeCounts is the play-count increment mode (update-counts).
	ModeCounts UpdateMode = "counts"
	// ModeHistory is the listen-history insert mode (update-scrobbles).
	ModeHistory UpdateMode = "history"
)

func (m UpdateMode) appliedColumn() (string, error) {
	switch m {
	case ModeCounts:
		return "counts_applied_at", nil
	case ModeHistory:
		return "history_applied_at", nil
	}
	return "", fmt.Errorf("unknown update mode %q", m)
}

// ListUnapplied returns every accepted scrobble the mode has not yet applied
// to the catalog, in id order. A scrobble matched or resolved after an
// earlier update run still shows up here; nothing ages out.
func (s *Store) ListUnapplied(ctx context.Context, mode UpdateMode) ([]Scrobble, error) {
	column, err := mode.appliedColumn()
	if err != nil {
		return nil, err
	}
	list, err := s.queryScrobbles(ctx,
		`SELECT `+scrobbleColumns+` FROM scrobbles
         WHERE `+column+` IS NULL AND match_status IN (?, ?, ?)
         ORDER BY id`,
		StatusExactMatch, StatusFuzzyMatch, StatusResolved)
	if err != nil {
		return nil, fmt.Errorf("list unapplied: %w", err)
	}
	return list, nil
}

// MarkAppliedTx stamps the given scrobbles as applied for the mode, inside
// the caller's transaction. The updater calls this in the same transaction
// as its catalog writes so a crash can never apply a scrobble twice or drop
// one.
func (s *Store) MarkAppliedTx(ctx context.Context, tx *sql.Tx, mode UpdateMode, ids []int64) error {
	column, err := mode.appliedColumn()
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, "UPDATE scrobbles SET "+column+" = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("prepare mark applied: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, now, id); err != nil {
			return fmt.Errorf("mark scrobble %d applied: %w", id, err)
		}
	}
	return nil
}
