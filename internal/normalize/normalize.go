package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key is the canonical identity of an (artist, title) pair. Keys are derived
// on demand and never persisted.
type Key struct {
	Artist string
	Title  string
}

// Empty reports whether either component normalized to nothing. Scrobbles
// with empty keys are never auto-matched.
func (k Key) Empty() bool {
	return k.Artist == "" || k.Title == ""
}

func (k Key) String() string {
	return k.Artist + " / " + k.Title
}

var (
	punctuationRe = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespaceRe  = regexp.MustCompile(`\s+`)

	// Featured-artist separators treated as equivalent. Longest first so
	// "featuring" is not split by the shorter "feat" replacement.
	featuringRe = regexp.MustCompile(`\s+(?:featuring|feat\.?|ft\.?)\s+|\s*&\s*|\s+and\s+`)

	leadingArticles = []string{"the ", "a ", "an "}

	diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// KeyFor builds the canonical key for an artist/title pair.
func KeyFor(artist, title string) Key {
	return Key{Artist: Artist(artist), Title: Title(title)}
}

// Artist canonicalizes an artist name. Featured-artist separators
// ("feat.", "ft.", "&", "and", ...) collapse into a single "feat" separator
// so "A & B", "A feat. B", and "A and B" produce the same key.
func Artist(s string) string {
	return fold(unifySeparators(s))
}

// Title canonicalizes a track or album title.
func Title(s string) string {
	return fold(unifySeparators(s))
}

func unifySeparators(s string) string {
	return featuringRe.ReplaceAllString(strings.ToLower(s), " feat ")
}

func fold(s string) string {
	s = strings.ToLower(s)
	if folded, _, err := transform.String(diacriticStripper, s); err == nil {
		s = folded
	}
	s = punctuationRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	for _, article := range leadingArticles {
		if strings.HasPrefix(s, article) {
			s = strings.TrimSpace(strings.TrimPrefix(s, article))
			break
		}
	}
	return s
}

// Tokens splits a canonical key component into its word tokens. Used by the
// catalog index for blocking.
func Tokens(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}
