// Package match links scrobbles to catalog tracks. Matching runs in
// stages: recorded resolutions first, then MusicBrainz-id equality, then
// canonical-key equality, then optional similarity scoring. Each stage only
// sees scrobbles the earlier stages left unmatched.
package match
