package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// StateDir holds the per-user scrobble databases and the run lock.
	StateDir string `toml:"state_dir"`
	// LogDir receives the navidrome-fm log file in addition to stdout.
	LogDir string `toml:"log_dir"`
}

// LastFM contains credentials for the last.fm API. Both fields fall back to
// the LASTFM_API_KEY / LASTFM_API_SECRET environment variables, which may be
// supplied through a .env file in the working directory.
type LastFM struct {
	APIKey    string `toml:"api_key"`
	APISecret string `toml:"api_secret"`
}

// Navidrome contains the location of the Navidrome database and the catalog
// user whose play counts are updated.
type Navidrome struct {
	// DatabasePath may be overridden per invocation with --database.
	DatabasePath string `toml:"database_path"`
	// User selects the Navidrome account when the database has several.
	User string `toml:"user"`
}

// Match contains the fuzzy-match policy. The defaults are a starting point,
// not gospel: tighten auto_accept_threshold if the matcher is too eager for
// your library, lower the floor to surface more candidates for --resolve.
type Match struct {
	// AutoAcceptThreshold is the score at or above which a fuzzy candidate
	// is accepted without confirmation. Range (0,1].
	AutoAcceptThreshold float64 `toml:"auto_accept_threshold"`
	// Floor is the score below which a candidate is not even offered for
	// interactive resolution.
	Floor float64 `toml:"floor"`
	// TitleWeight and ArtistWeight blend the per-field similarities into
	// one score. They must sum to at most 1.
	TitleWeight  float64 `toml:"title_weight"`
	ArtistWeight float64 `toml:"artist_weight"`
	// AlbumBonus is added when both sides carry an album and the album
	// similarity is at least MinAlbumSimilarity.
	AlbumBonus         float64 `toml:"album_bonus"`
	MinAlbumSimilarity float64 `toml:"min_album_similarity"`
	// TopK bounds how many candidates an interactive prompt shows.
	TopK int `toml:"top_k"`
	// Workers bounds the fuzzy-scoring worker pool. Zero means one worker
	// per CPU.
	Workers int `toml:"workers"`
}

// Fetch contains settings for pulling scrobbles from last.fm.
type Fetch struct {
	// RequestsPerSecond paces calls against the last.fm API.
	RequestsPerSecond float64 `toml:"requests_per_second"`
	// RetrySeconds bounds the total exponential-backoff retry budget for a
	// single page fetch.
	RetrySeconds int `toml:"retry_seconds"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for navidrome-fm.
type Config struct {
	Paths     Paths     `toml:"paths"`
	LastFM    LastFM    `toml:"lastfm"`
	Navidrome Navidrome `toml:"navidrome"`
	Match     Match     `toml:"match"`
	Fetch     Fetch     `toml:"fetch"`
	Logging   Logging   `toml:"logging"`
}

// SampleConfig returns the embedded sample configuration file contents.
func SampleConfig() string {
	return sampleConfig
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/navidrome-fm/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.StateDir, err = ExpandPath(c.Paths.StateDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if c.Navidrome.DatabasePath != "" {
		if c.Navidrome.DatabasePath, err = ExpandPath(c.Navidrome.DatabasePath); err != nil {
			return err
		}
	}

	// Credentials may live in the environment or a .env file instead of
	// the config file.
	_ = godotenv.Load()
	if c.LastFM.APIKey == "" {
		c.LastFM.APIKey = strings.TrimSpace(os.Getenv("LASTFM_API_KEY"))
	}
	if c.LastFM.APISecret == "" {
		c.LastFM.APISecret = strings.TrimSpace(os.Getenv("LASTFM_API_SECRET"))
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ScrobbleDBPath returns the per-user scrobble database location. The file
// name matches the layout of earlier releases so existing databases keep
// working.
func (c *Config) ScrobbleDBPath(user string) string {
	return filepath.Join(c.Paths.StateDir, fmt.Sprintf("scrobbles_%s.db", user))
}

// LockPath returns the run lock location guarding concurrent runs against
// the same scrobble store.
func (c *Config) LockPath(user string) string {
	return filepath.Join(c.Paths.StateDir, fmt.Sprintf("scrobbles_%s.lock", user))
}

// ExpandPath resolves ~ prefixes and returns an absolute, cleaned path.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
