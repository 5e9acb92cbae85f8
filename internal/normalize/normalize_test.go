package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"navidromefm/internal/normalize"
)

func TestKeyForFoldsCase(t *testing.T) {
	a := normalize.KeyFor("Pixies", "Where Is My Mind?")
	b := normalize.KeyFor("pixies", "where is my mind")
	assert.Equal(t, a, b)
}

func TestArtistStripsDiacritics(t *testing.T) {
	assert.Equal(t, "bjork", normalize.Artist("Björk"))
	assert.Equal(t, "sigur ros", normalize.Artist("Sigur Rós"))
}

func TestArtistRemovesLeadingArticle(t *testing.T) {
	assert.Equal(t, "beatles", normalize.Artist("The Beatles"))
	assert.Equal(t, "national", normalize.Artist("the national"))
}

func TestArtistUnifiesFeaturingSeparators(t *testing.T) {
	variants := []string{
		"Jay-Z feat. Alicia Keys",
		"Jay-Z ft. Alicia Keys",
		"Jay-Z featuring Alicia Keys",
		"Jay-Z & Alicia Keys",
		"Jay-Z and Alicia Keys",
	}
	want := normalize.Artist(variants[0])
	for _, v := range variants[1:] {
		assert.Equal(t, want, normalize.Artist(v), "variant %q", v)
	}
}

func TestTitleCollapsesWhitespaceAndPunctuation(t *testing.T) {
	assert.Equal(t, "smells like teen spirit", normalize.Title("  Smells  Like\tTeen Spirit!! "))
	assert.Equal(t, "don t stop me now", normalize.Title("Don't Stop Me Now"))
}

func TestKeyIsDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.Equal(t, "motorhead", normalize.Artist("Motörhead"))
	}
}

func TestEmptyKey(t *testing.T) {
	assert.True(t, normalize.KeyFor("", "Song").Empty())
	assert.True(t, normalize.KeyFor("Artist", "???").Empty())
	assert.False(t, normalize.KeyFor("Artist", "Song").Empty())
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"where", "is", "my", "mind"}, normalize.Tokens("where is my mind"))
	assert.Nil(t, normalize.Tokens(""))
}
