// Package testsupport provides shared helpers for package tests: disposable
// configs, stores, and Navidrome database fixtures.
package testsupport

import (
	"path/filepath"
	"testing"

	"navidromefm/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.LastFM.APIKey = "test-key"
	cfg.LastFM.APISecret = "test-secret"
	cfg.Navidrome.DatabasePath = filepath.Join(base, "navidrome.db")
	cfg.Match.Workers = 2

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithMatch overrides the match settings on the test config.
func WithMatch(match config.Match) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Match = match
	}
}
