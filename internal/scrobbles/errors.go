package scrobbles

import "errors"

var (
	// ErrMalformedRecord marks a fetched record missing required fields.
	// Callers skip and count these; they are never fatal to a fetch.
	ErrMalformedRecord = errors.New("malformed scrobble record")

	// ErrNotFound marks a lookup for a scrobble id that does not exist.
	ErrNotFound = errors.New("scrobble not found")

	// ErrInvalidTransition marks a match-state update that would violate
	// the store invariants (for example a match status without a track id).
	ErrInvalidTransition = errors.New("invalid match transition")
)
