// Package normalize canonicalizes free-text track metadata for comparison.
//
// Scrobble services and local tags disagree on capitalization, diacritics,
// punctuation, and featured-artist conventions. Every lookup and similarity
// computation in the matcher runs over keys produced here, so the functions
// in this package must stay pure: the same input text always yields the same
// key regardless of prior calls.
package normalize
