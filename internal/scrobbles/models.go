package scrobbles

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Status represents the match lifecycle of a scrobble.
type Status string

const (
	// StatusUnmatched marks a scrobble no catalog track has been found for.
	StatusUnmatched Status = "unmatched"
	// StatusExactMatch marks a canonical-key or MusicBrainz-id equality match.
	StatusExactMatch Status = "exact"
	// StatusFuzzyMatch marks a similarity match at or above the auto-accept
	// threshold.
	StatusFuzzyMatch Status = "fuzzy"
	// StatusResolved marks an operator-confirmed match.
	StatusResolved Status = "resolved"
	// StatusRejected marks a scrobble the operator declared unmatchable.
	StatusRejected Status = "rejected"
)

var allStatuses = []Status{
	StatusUnmatched,
	StatusExactMatch,
	StatusFuzzyMatch,
	StatusResolved,
	StatusRejected,
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	for _, known := range allStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Accepted reports whether scrobbles in this status contribute to play
// counts and history rows.
func (s Status) Accepted() bool {
	switch s {
	case StatusExactMatch, StatusFuzzyMatch, StatusResolved:
		return true
	default:
		return false
	}
}

// Scrobble is one listen record persisted in the store.
type Scrobble struct {
	ID           int64
	SourceID     string
	Artist       string
	Track        string
	Album        string
	MBID         string
	PlayedAt     time.Time
	MatchStatus  Status
	MatchTrackID string
	MatchScore   *float64
	CreatedAt    time.Time
}

func (s Scrobble) String() string {
	if s.Album != "" {
		return fmt.Sprintf("%s / %s -- %s", s.Artist, s.Album, s.Track)
	}
	return fmt.Sprintf("%s -- %s", s.Artist, s.Track)
}

// Raw is an unvalidated record handed over by the fetch layer. It is
// converted into a Scrobble row at the store boundary or refused with
// ErrMalformedRecord.
type Raw struct {
	Artist   string
	Track    string
	Album    string
	MBID     string
	PlayedAt time.Time
}

// SourceID derives the stable record identity. Only fields that cannot
// change across fetches participate in the hash.
func (r Raw) SourceID() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s\x00%d", r.MBID, r.Artist, r.Track, r.Album, r.PlayedAt.Unix())
	return hex.EncodeToString(h.Sum(nil))
}

func (r Raw) validate() error {
	if strings.TrimSpace(r.Artist) == "" {
		return fmt.Errorf("%w: missing artist", ErrMalformedRecord)
	}
	if strings.TrimSpace(r.Track) == "" {
		return fmt.Errorf("%w: missing track title", ErrMalformedRecord)
	}
	if r.PlayedAt.IsZero() || r.PlayedAt.Unix() <= 0 {
		return fmt.Errorf("%w: missing played-at timestamp for %q by %q", ErrMalformedRecord, r.Track, r.Artist)
	}
	return nil
}
