package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

var (
	// ErrNoUsers indicates the Navidrome database has no user rows.
	ErrNoUsers = errors.New("no users found in the Navidrome database")
	// ErrAmbiguousUser indicates several users exist and none was selected.
	ErrAmbiguousUser = errors.New("multiple Navidrome users found, pass --navidrome-user")
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("navidrome user not found")
)

// Track is an immutable snapshot of one catalog track, including the play
// count already present before this run.
type Track struct {
	ID             string
	Artist         string
	Title          string
	Album          string
	MBZRecordingID string
	PlayCount      int64
}

func (t Track) String() string {
	if t.Album != "" {
		return fmt.Sprintf("%s / %s -- %s", t.Artist, t.Album, t.Title)
	}
	return fmt.Sprintf("%s -- %s", t.Artist, t.Title)
}

// User is a Navidrome account.
type User struct {
	ID   string
	Name string
}

// DB provides read access to a Navidrome database file.
type DB struct {
	db   *sql.DB
	path string
}

// Open connects to the Navidrome database at path. The file must already
// exist; this tool never creates a catalog.
func Open(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("navidrome database %s: %w", path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open navidrome db: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragma: %w", err)
	}
	return &DB{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Path returns the database file location.
func (d *DB) Path() string {
	return d.path
}

// Tracks reads the full catalog snapshot. Baseline play counts are taken
// from the annotation rows of the given user.
func (d *DB) Tracks(ctx context.Context, userID string) ([]Track, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT mf.id, mf.title, mf.artist, COALESCE(mf.album, ''),
                COALESCE(mf.mbz_recording_id, ''), COALESCE(a.play_count, 0)
         FROM media_file mf
         LEFT JOIN annotation a
           ON a.item_id = mf.id AND a.item_type = 'media_file' AND a.user_id = ?
         ORDER BY mf.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("read catalog tracks: %w", err)
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		var t Track
		if err := rows.Scan(&t.ID, &t.Title, &t.Artist, &t.Album, &t.MBZRecordingID, &t.PlayCount); err != nil {
			return nil, fmt.Errorf("scan catalog track: %w", err)
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// ResolveUser picks the Navidrome account to operate on. With an empty name
// the single existing user is inferred; with several users a name is
// required.
func (d *DB) ResolveUser(ctx context.Context, name string) (*User, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT id, user_name FROM user ORDER BY user_name")
	if err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if name != "" {
		for _, u := range users {
			if u.Name == name {
				user := u
				return &user, nil
			}
		}
		return nil, fmt.Errorf("%w: %q", ErrUserNotFound, name)
	}

	switch len(users) {
	case 0:
		return nil, ErrNoUsers
	case 1:
		user := users[0]
		return &user, nil
	default:
		return nil, ErrAmbiguousUser
	}
}
