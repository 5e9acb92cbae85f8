package match

import (
	"errors"
	"fmt"
	"sort"

	"navidromefm/internal/catalog"
	"navidromefm/internal/normalize"
)

// ErrAmbiguousCatalogEntry is returned when two catalog tracks collapse to
// the same canonical key. Exact matching on that key would be a coin flip,
// so lookups fail instead.
var ErrAmbiguousCatalogEntry = errors.New("ambiguous catalog entry")

// entry is a catalog track with its normalized fields precomputed once at
// index build time.
type entry struct {
	track       catalog.Track
	key         normalize.Key
	albumKey    string
	titleTokens []string
}

// Index holds the catalog in the shapes the match stages need: a canonical
// key map and a MusicBrainz-id map for the exact stages, and a token block
// map that keeps the fuzzy stage from scoring every scrobble against the
// whole library.
type Index struct {
	entries []entry
	byKey   map[normalize.Key]int
	dupKeys map[normalize.Key]struct{}
	byMBID  map[string]int
	blocks  map[string][]int
}

// NewIndex builds an index over the given tracks.
func NewIndex(tracks []catalog.Track) *Index {
	idx := &Index{
		entries: make([]entry, 0, len(tracks)),
		byKey:   make(map[normalize.Key]int, len(tracks)),
		dupKeys: make(map[normalize.Key]struct{}),
		byMBID:  make(map[string]int),
		blocks:  make(map[string][]int),
	}
	for _, track := range tracks {
		key := normalize.KeyFor(track.Artist, track.Title)
		e := entry{
			track:       track,
			key:         key,
			albumKey:    normalize.Title(track.Album),
			titleTokens: normalize.Tokens(key.Artist + " " + key.Title),
		}
		idx.entries = append(idx.entries, e)
		pos := len(idx.entries) - 1

		if !key.Empty() {
			if _, seen := idx.byKey[key]; seen {
				idx.dupKeys[key] = struct{}{}
			} else {
				idx.byKey[key] = pos
			}
		}
		if track.MBZRecordingID != "" {
			if _, seen := idx.byMBID[track.MBZRecordingID]; !seen {
				idx.byMBID[track.MBZRecordingID] = pos
			}
		}
		for _, token := range e.titleTokens {
			idx.blocks[token] = append(idx.blocks[token], pos)
		}
	}
	return idx
}

// Len returns the number of indexed tracks.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Lookup finds the track whose canonical key equals key. A nil track with a
// nil error means no entry; a key shared by several tracks yields
// ErrAmbiguousCatalogEntry.
func (idx *Index) Lookup(key normalize.Key) (*catalog.Track, error) {
	if key.Empty() {
		return nil, nil
	}
	if _, dup := idx.dupKeys[key]; dup {
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousCatalogEntry, key)
	}
	pos, ok := idx.byKey[key]
	if !ok {
		return nil, nil
	}
	track := idx.entries[pos].track
	return &track, nil
}

// ambiguousKey reports whether more than one catalog track collapses to key.
func (idx *Index) ambiguousKey(key normalize.Key) bool {
	_, dup := idx.dupKeys[key]
	return dup
}

// ByMBID finds the track with the given MusicBrainz recording id, or nil.
func (idx *Index) ByMBID(mbid string) *catalog.Track {
	if mbid == "" {
		return nil
	}
	pos, ok := idx.byMBID[mbid]
	if !ok {
		return nil
	}
	track := idx.entries[pos].track
	return &track
}

// candidates returns the entries sharing at least one token with key, in
// index order without duplicates. An empty key has no candidates.
func (idx *Index) candidates(key normalize.Key) []entry {
	if key.Empty() {
		return nil
	}
	seen := make(map[int]struct{})
	var positions []int
	for _, token := range normalize.Tokens(key.Artist + " " + key.Title) {
		for _, pos := range idx.blocks[token] {
			if _, dup := seen[pos]; dup {
				continue
			}
			seen[pos] = struct{}{}
			positions = append(positions, pos)
		}
	}
	sort.Ints(positions)
	out := make([]entry, 0, len(positions))
	for _, pos := range positions {
		out = append(out, idx.entries[pos])
	}
	return out
}
