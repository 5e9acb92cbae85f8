package logging

import "log/slog"

// Standardized structured logging keys. Components must use these instead of
// ad-hoc spellings so log output stays consistent and greppable.
const (
	// FieldComponent names the subsystem emitting the record.
	FieldComponent = "component"
	// FieldUser is the last.fm username the run operates on.
	FieldUser = "user"
	// FieldSourceID identifies a scrobble record.
	FieldSourceID = "source_id"
	// FieldTrackID identifies a Navidrome catalog track.
	FieldTrackID = "track_id"
	// FieldRunID correlates all records of one CLI invocation.
	FieldRunID = "run_id"
	// FieldScore carries a match confidence in [0,1].
	FieldScore = "score"
)

// WithComponent returns a child logger tagged with the component name.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger.With(slog.String(FieldComponent, component))
}
