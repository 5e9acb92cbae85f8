// Package aggregate turns matched scrobbles into catalog updates. It is
// pure: callers load scrobbles from the store and hand the results to the
// catalog updater.
package aggregate

import (
	"sort"
	"time"

	"navidromefm/internal/scrobbles"
)

// Increment is one track's play-count delta for an update run.
type Increment struct {
	TrackID    string
	Count      int64
	LastPlayed time.Time
}

// PlayEvent is one individual listen to replay into the catalog's history.
type PlayEvent struct {
	TrackID  string
	PlayedAt time.Time
	SourceID string
}

// Counts rolls the scrobbles up into per-track increments, ordered by track
// id.
func Counts(scrs []scrobbles.Scrobble) []Increment {
	byTrack := make(map[string]*Increment)
	for _, s := range scrs {
		if s.MatchTrackID == "" {
			continue
		}
		inc, ok := byTrack[s.MatchTrackID]
		if !ok {
			inc = &Increment{TrackID: s.MatchTrackID}
			byTrack[s.MatchTrackID] = inc
		}
		inc.Count++
		if s.PlayedAt.After(inc.LastPlayed) {
			inc.LastPlayed = s.PlayedAt
		}
	}
	incs := make([]Increment, 0, len(byTrack))
	for _, inc := range byTrack {
		incs = append(incs, *inc)
	}
	sort.Slice(incs, func(i, j int) bool { return incs[i].TrackID < incs[j].TrackID })
	return incs
}

// Events flattens the scrobbles into individual play events ordered by play
// time, then track id.
func Events(scrs []scrobbles.Scrobble) []PlayEvent {
	events := make([]PlayEvent, 0, len(scrs))
	for _, s := range scrs {
		if s.MatchTrackID == "" {
			continue
		}
		events = append(events, PlayEvent{
			TrackID:  s.MatchTrackID,
			PlayedAt: s.PlayedAt,
			SourceID: s.SourceID,
		})
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].PlayedAt.Equal(events[j].PlayedAt) {
			return events[i].PlayedAt.Before(events[j].PlayedAt)
		}
		return events[i].TrackID < events[j].TrackID
	})
	return events
}

// IDs returns the scrobble ids in input order, for stamping them applied
// once the updater's transaction commits.
func IDs(scrs []scrobbles.Scrobble) []int64 {
	ids := make([]int64, 0, len(scrs))
	for _, s := range scrs {
		ids = append(ids, s.ID)
	}
	return ids
}
