package scrobbles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages scrobble persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the scrobble database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure state directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the underlying handle for collaborators that share this
// store's transactions (the resolution ledger and the catalog updater).
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

const scrobbleColumns = "id, source_id, artist, track, album, mbid, played_at, match_status, match_track_id, match_score, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScrobble(row rowScanner) (*Scrobble, error) {
	var (
		s         Scrobble
		album     sql.NullString
		mbid      sql.NullString
		playedAt  int64
		trackID   sql.NullString
		score     sql.NullFloat64
		createdAt string
	)
	if err := row.Scan(&s.ID, &s.SourceID, &s.Artist, &s.Track, &album, &mbid, &playedAt, &s.MatchStatus, &trackID, &score, &createdAt); err != nil {
		return nil, err
	}
	s.Album = album.String
	s.MBID = mbid.String
	s.PlayedAt = time.Unix(playedAt, 0).UTC()
	s.MatchTrackID = trackID.String
	if score.Valid {
		value := score.Float64
		s.MatchScore = &value
	}
	if parsed, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		s.CreatedAt = parsed
	}
	return &s, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

// GetByID fetches a scrobble by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Scrobble, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+scrobbleColumns+` FROM scrobbles WHERE id = ?`, id)
	scrobble, err := scanScrobble(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get scrobble: %w", err)
	}
	return scrobble, nil
}

func (s *Store) queryScrobbles(ctx context.Context, query string, args ...any) ([]Scrobble, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Scrobble
	for rows.Next() {
		scrobble, err := scanScrobble(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *scrobble)
	}
	return result, rows.Err()
}
