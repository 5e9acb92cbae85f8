package testsupport

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// NavidromeTrack seeds one media_file row in a fixture database.
type NavidromeTrack struct {
	ID             string
	Title          string
	Artist         string
	Album          string
	MBZRecordingID string
	PlayCount      int64
}

const navidromeFixtureSchema = `
CREATE TABLE user (
    id TEXT PRIMARY KEY,
    user_name TEXT NOT NULL UNIQUE
);
CREATE TABLE media_file (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    artist TEXT NOT NULL,
    album TEXT,
    mbz_recording_id TEXT
);
CREATE TABLE annotation (
    user_id TEXT NOT NULL,
    item_id TEXT NOT NULL,
    item_type TEXT NOT NULL,
    play_count INTEGER,
    play_date TEXT,
    PRIMARY KEY (user_id, item_id, item_type)
);
CREATE TABLE scrobble_buffer (
    user_id TEXT NOT NULL,
    service TEXT NOT NULL,
    media_file_id TEXT NOT NULL,
    play_time TEXT NOT NULL,
    enqueue_time TEXT NOT NULL
);
`

// FixtureUserID is the id of the user every fixture database contains.
const FixtureUserID = "user-1"

// CreateNavidromeDB writes a minimal Navidrome database at path with a
// single user and the given tracks. Tracks with a nonzero PlayCount get a
// matching annotation row.
func CreateNavidromeDB(t testing.TB, path string, tracks ...NavidromeTrack) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(navidromeFixtureSchema); err != nil {
		t.Fatalf("create fixture schema: %v", err)
	}
	if _, err := db.Exec("INSERT INTO user (id, user_name) VALUES (?, ?)", FixtureUserID, "testuser"); err != nil {
		t.Fatalf("seed fixture user: %v", err)
	}
	for _, track := range tracks {
		if _, err := db.Exec(
			"INSERT INTO media_file (id, title, artist, album, mbz_recording_id) VALUES (?, ?, ?, ?, ?)",
			track.ID, track.Title, track.Artist, track.Album, track.MBZRecordingID); err != nil {
			t.Fatalf("seed track %s: %v", track.ID, err)
		}
		if track.PlayCount > 0 {
			if _, err := db.Exec(
				"INSERT INTO annotation (user_id, item_id, item_type, play_count) VALUES (?, ?, 'media_file', ?)",
				FixtureUserID, track.ID, track.PlayCount); err != nil {
				t.Fatalf("seed annotation %s: %v", track.ID, err)
			}
		}
	}
}

// ReadPlayCount reads a track's play count from a fixture database.
func ReadPlayCount(t testing.TB, path, trackID string) int64 {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer db.Close()

	var count sql.NullInt64
	err = db.QueryRow(
		"SELECT play_count FROM annotation WHERE user_id = ? AND item_id = ? AND item_type = 'media_file'",
		FixtureUserID, trackID).Scan(&count)
	if err == sql.ErrNoRows {
		return 0
	}
	if err != nil {
		t.Fatalf("read play count for %s: %v", trackID, err)
	}
	return count.Int64
}

// CountBufferRows reads the number of listen-history rows in a fixture
// database.
func CountBufferRows(t testing.TB, path string) int {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM scrobble_buffer").Scan(&count); err != nil {
		t.Fatalf("count buffer rows: %v", err)
	}
	return count
}
