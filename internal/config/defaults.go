package config

const (
	defaultStateDir = "~/.local/share/navidrome-fm"
	defaultLogDir   = "~/.local/share/navidrome-fm/logs"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"

	defaultAutoAcceptThreshold = 0.90
	defaultFloor               = 0.65
	defaultTitleWeight         = 0.5
	defaultArtistWeight        = 0.4
	defaultAlbumBonus          = 0.1
	defaultMinAlbumSimilarity  = 0.8
	defaultTopK                = 5

	defaultRequestsPerSecond = 4.0
	defaultRetrySeconds      = 60
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Match: Match{
			AutoAcceptThreshold: defaultAutoAcceptThreshold,
			Floor:               defaultFloor,
			TitleWeight:         defaultTitleWeight,
			ArtistWeight:        defaultArtistWeight,
			AlbumBonus:          defaultAlbumBonus,
			MinAlbumSimilarity:  defaultMinAlbumSimilarity,
			TopK:                defaultTopK,
		},
		Fetch: Fetch{
			RequestsPerSecond: defaultRequestsPerSecond,
			RetrySeconds:      defaultRetrySeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
