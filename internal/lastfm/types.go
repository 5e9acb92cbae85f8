package lastfm

import "time"

// Track is one recent-tracks entry in domain form.
type Track struct {
	Artist     string
	Track      string
	Album      string
	MBID       string
	PlayedAt   time.Time
	NowPlaying bool
}

// UserInfo is the subset of the user profile the tool reports.
type UserInfo struct {
	Name      string
	PlayCount int64
}

// Page is one fetched page of recent tracks together with its position in
// the listening history.
type Page struct {
	Number     int
	TotalPages int
	Tracks     []Track
}
