// Package logging builds the slog loggers used across navidrome-fm.
//
// It provides a human-oriented console handler for interactive runs and a
// JSON handler for machine consumption, plus the standardized attribute keys
// every component logs with so output stays greppable.
package logging
