package match

import (
	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"navidromefm/internal/config"
	"navidromefm/internal/normalize"
)

// Scorer blends per-field string similarities into a single match score in
// [0, 1].
type Scorer struct {
	cfg    config.Match
	metric *metrics.JaroWinkler
}

// NewScorer builds a scorer from the match settings.
func NewScorer(cfg config.Match) *Scorer {
	return &Scorer{cfg: cfg, metric: metrics.NewJaroWinkler()}
}

// Score rates how well the scrobble described by key and albumKey fits the
// indexed track. Title and artist similarities are weighted; the album adds
// a bonus only when both sides have one and they agree closely, so a missing
// album never penalizes a candidate.
func (s *Scorer) Score(key normalize.Key, albumKey string, e entry) float64 {
	titleSim := strutil.Similarity(key.Title, e.key.Title, s.metric)
	artistSim := strutil.Similarity(key.Artist, e.key.Artist, s.metric)
	score := s.cfg.TitleWeight*titleSim + s.cfg.ArtistWeight*artistSim
	if albumKey != "" && e.albumKey != "" {
		if strutil.Similarity(albumKey, e.albumKey, s.metric) >= s.cfg.MinAlbumSimilarity {
			score += s.cfg.AlbumBonus
		}
	}
	if score > 1 {
		score = 1
	}
	return score
}
