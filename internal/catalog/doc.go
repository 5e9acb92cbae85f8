// Package catalog reads the Navidrome database and applies play-count and
// listen-history updates to it.
//
// Reads produce an immutable per-run snapshot of the track catalog; the core
// never mutates track metadata. Writes go through the Updater, which
// attaches the Navidrome database to the scrobble store's connection so the
// catalog changes and the applied stamps on the source scrobbles commit
// in a single transaction. Either everything for a run lands or nothing does.
package catalog
