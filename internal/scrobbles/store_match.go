package scrobbles

import (
	"context"
	"fmt"
)

// ListUnmatched returns every scrobble still awaiting a match decision, in
// insertion order.
func (s *Store) ListUnmatched(ctx context.Context) ([]Scrobble, error) {
	list, err := s.queryScrobbles(ctx,
		`SELECT `+scrobbleColumns+` FROM scrobbles WHERE match_status = ? ORDER BY id`, StatusUnmatched)
	if err != nil {
		return nil, fmt.Errorf("list unmatched: %w", err)
	}
	return list, nil
}

// SetMatch records a match decision for a scrobble. The store enforces the
// data-model invariants: matched and resolved statuses require a track id,
// rejected and unmatched must not carry one, and scored statuses carry a
// score in [0,1].
func (s *Store) SetMatch(ctx context.Context, id int64, status Status, trackID string, score *float64) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}
	switch status {
	case StatusExactMatch, StatusFuzzyMatch:
		if trackID == "" || score == nil {
			return fmt.Errorf("%w: %s requires track id and score", ErrInvalidTransition, status)
		}
	case StatusResolved:
		if trackID == "" {
			return fmt.Errorf("%w: resolved requires track id", ErrInvalidTransition)
		}
	case StatusRejected, StatusUnmatched:
		if trackID != "" {
			return fmt.Errorf("%w: %s must not carry a track id", ErrInvalidTransition, status)
		}
	}
	if score != nil && (*score < 0 || *score > 1) {
		return fmt.Errorf("%w: score %v outside [0,1]", ErrInvalidTransition, *score)
	}

	var scoreArg any
	if score != nil {
		scoreArg = *score
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE scrobbles SET match_status = ?, match_track_id = ?, match_score = ? WHERE id = ?`,
		status, nullableString(trackID), scoreArg, id)
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

// ApplyDecisionByKey applies a persisted resolution to every unmatched
// scrobble sharing the decision's normalized key, given the concrete
// scrobble ids the matcher identified. Used when a ledger decision
// resolves scrobbles without rescoring.
func (s *Store) ApplyDecisionByKey(ctx context.Context, ids []int64, trackID string) error {
	status := StatusResolved
	if trackID == "" {
		status = StatusRejected
	}
	for _, id := range ids {
		if err := s.SetMatch(ctx, id, status, trackID, nil); err != nil {
			return err
		}
	}
	return nil
}
