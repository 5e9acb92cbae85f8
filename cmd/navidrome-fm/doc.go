// Command navidrome-fm syncs last.fm listening history into a Navidrome
// server's play counts and listen history. It keeps a local per-user
// scrobble database, matches scrobbles against the Navidrome library, and
// applies the results atomically.
package main
