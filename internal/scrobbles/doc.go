// Package scrobbles persists fetched listen records in SQLite and tracks
// their match state.
//
// The Store manages database connections, schema initialization, ingestion
// with source-id deduplication, match-state transitions, and the per-mode
// applied stamps that keep repeated update runs from counting a scrobble
// twice while never aging one out.
// Scrobble rows are never deleted; the store is the durable record of every
// match decision, which is what makes aggregation idempotent.
//
// The resolution ledger (internal/ledger) and the catalog updater
// (internal/catalog) operate on this store's database handle so their writes
// share its transactions. Treat this package as the single source of truth
// for scrobble semantics; schema changes bump schemaVersion in schema.go.
package scrobbles
