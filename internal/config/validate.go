package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMatch(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateMatch() error {
	m := c.Match
	if m.AutoAcceptThreshold <= 0 || m.AutoAcceptThreshold > 1 {
		return errors.New("match.auto_accept_threshold must be in (0, 1]")
	}
	if m.Floor < 0 || m.Floor > m.AutoAcceptThreshold {
		return errors.New("match.floor must be in [0, auto_accept_threshold]")
	}
	if m.TitleWeight < 0 || m.ArtistWeight < 0 || m.AlbumBonus < 0 {
		return errors.New("match weights must be non-negative")
	}
	if sum := m.TitleWeight + m.ArtistWeight + m.AlbumBonus; sum > 1.0001 {
		return fmt.Errorf("match weights sum to %.2f, must not exceed 1", sum)
	}
	if m.MinAlbumSimilarity < 0 || m.MinAlbumSimilarity > 1 {
		return errors.New("match.min_album_similarity must be in [0, 1]")
	}
	if m.TopK < 1 {
		return errors.New("match.top_k must be at least 1")
	}
	if m.Workers < 0 {
		return errors.New("match.workers must not be negative")
	}
	return nil
}

func (c *Config) validateFetch() error {
	if c.Fetch.RequestsPerSecond <= 0 {
		return errors.New("fetch.requests_per_second must be positive")
	}
	// Zero would make the backoff budget unlimited, not disabled.
	if c.Fetch.RetrySeconds <= 0 {
		return errors.New("fetch.retry_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

// RequireLastFM reports an actionable error when API credentials are absent.
// Only the commands that talk to last.fm call this, so match and update runs
// work without credentials.
func (c *Config) RequireLastFM() error {
	if c.LastFM.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/navidrome-fm/config.toml"
		}
		return fmt.Errorf("lastfm.api_key is required. Set LASTFM_API_KEY (env or .env file) or edit %s", defaultPath)
	}
	return nil
}
