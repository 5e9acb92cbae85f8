package scrobbles

import (
	"context"
	"fmt"
)

// Stats summarizes the store contents for the info command.
type Stats struct {
	Scrobbles      int
	DistinctTracks int
	ByStatus       map[Status]int
}

// Stats computes store-wide counters.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{ByStatus: make(map[Status]int, len(allStatuses))}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM scrobbles").Scan(&stats.Scrobbles); err != nil {
		return Stats{}, fmt.Errorf("count scrobbles: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM (SELECT DISTINCT artist, track FROM scrobbles)").Scan(&stats.DistinctTracks); err != nil {
		return Stats{}, fmt.Errorf("count tracks: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT match_status, COUNT(*) FROM scrobbles GROUP BY match_status")
	if err != nil {
		return Stats{}, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Stats{}, fmt.Errorf("scan status count: %w", err)
		}
		stats.ByStatus[status] = count
	}
	return stats, rows.Err()
}
