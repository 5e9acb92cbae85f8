package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"navidromefm/internal/aggregate"
	"navidromefm/internal/logging"
	"navidromefm/internal/scrobbles"
)

// ErrDatabaseWrite marks a failed catalog update. The transaction has been
// rolled back; nothing was applied and the run is safe to retry.
var ErrDatabaseWrite = errors.New("catalog write failed")

// Updater applies aggregated results to the Navidrome database. All writes
// of one run, including stamping the source scrobbles as applied, happen in
// a single transaction on the scrobble store's connection with the
// Navidrome database attached.
type Updater struct {
	store        *scrobbles.Store
	databasePath string
	logger       *slog.Logger
}

// NewUpdater constructs an updater targeting the Navidrome database at
// databasePath.
func NewUpdater(store *scrobbles.Store, databasePath string, logger *slog.Logger) *Updater {
	return &Updater{
		store:        store,
		databasePath: databasePath,
		logger:       logging.WithComponent(logger, "updater"),
	}
}

// ApplyCounts adds the play-count increments to the user's annotation rows
// and stamps the scrobbles behind them as counted. Returns the number of
// tracks touched.
func (u *Updater) ApplyCounts(ctx context.Context, userID string, incs []aggregate.Increment, scrobbleIDs []int64) (int, error) {
	if len(incs) == 0 {
		return 0, nil
	}
	applied := 0
	err := u.withAttachedTx(ctx, func(tx *sql.Tx) error {
		for _, inc := range incs {
			playDate := inc.LastPlayed.UTC().Format("2006-01-02 15:04:05")
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO navidrome.annotation (user_id, item_id, item_type, play_count, play_date)
                 VALUES (?, ?, 'media_file', ?, ?)
                 ON CONFLICT(user_id, item_id, item_type) DO UPDATE SET
                     play_count = COALESCE(annotation.play_count, 0) + excluded.play_count,
                     play_date = MAX(COALESCE(annotation.play_date, excluded.play_date), excluded.play_date)`,
				userID, inc.TrackID, inc.Count, playDate); err != nil {
				return fmt.Errorf("apply increment for track %s: %w", inc.TrackID, err)
			}
			applied++
		}
		return u.store.MarkAppliedTx(ctx, tx, scrobbles.ModeCounts, scrobbleIDs)
	})
	if err != nil {
		return 0, err
	}
	u.logger.Info("applied play-count increments",
		slog.Int("tracks", applied), slog.Int("scrobbles", len(scrobbleIDs)))
	return applied, nil
}

// ApplyHistory inserts one listen row per play event into the Navidrome
// scrobble buffer and stamps the scrobbles behind them as replayed. Returns
// the number of rows inserted.
func (u *Updater) ApplyHistory(ctx context.Context, userID string, events []aggregate.PlayEvent, scrobbleIDs []int64) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	inserted := 0
	err := u.withAttachedTx(ctx, func(tx *sql.Tx) error {
		for _, event := range events {
			playTime := event.PlayedAt.UTC().Format("2006-01-02 15:04:05")
			res, err := tx.ExecContext(ctx,
				`INSERT INTO navidrome.scrobble_buffer (user_id, service, media_file_id, play_time, enqueue_time)
                 SELECT ?, 'navidrome-fm', ?, ?, datetime('now')
                 WHERE NOT EXISTS (
                     SELECT 1 FROM navidrome.scrobble_buffer
                     WHERE user_id = ? AND service = 'navidrome-fm' AND media_file_id = ? AND play_time = ?
                 )`,
				userID, event.TrackID, playTime, userID, event.TrackID, playTime)
			if err != nil {
				return fmt.Errorf("insert history row for track %s: %w", event.TrackID, err)
			}
			if affected, err := res.RowsAffected(); err == nil {
				inserted += int(affected)
			}
		}
		return u.store.MarkAppliedTx(ctx, tx, scrobbles.ModeHistory, scrobbleIDs)
	})
	if err != nil {
		return 0, err
	}
	u.logger.Info("inserted listen-history rows",
		slog.Int("rows", inserted), slog.Int("scrobbles", len(scrobbleIDs)))
	return inserted, nil
}

// withAttachedTx runs fn inside a transaction on a dedicated connection with
// the Navidrome database attached as "navidrome". ATTACH is per-connection,
// so a single pinned conn guarantees the attach, the writes, and the commit
// all happen on the same session.
func (u *Updater) withAttachedTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	conn, err := u.store.DB().Conn(ctx)
	if err != nil {
		return fmt.Errorf("%w: acquire connection: %w", ErrDatabaseWrite, err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "ATTACH DATABASE ? AS navidrome", u.databasePath); err != nil {
		return fmt.Errorf("%w: attach %s: %w", ErrDatabaseWrite, u.databasePath, err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.WithoutCancel(ctx), "DETACH DATABASE navidrome")
	}()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrDatabaseWrite, err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%w: %w", ErrDatabaseWrite, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrDatabaseWrite, err)
	}
	return nil
}
