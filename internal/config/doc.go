// Package config loads, normalizes, and validates navidrome-fm configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LASTFM_API_KEY (including a .env file for compatibility with earlier
// versions of the tool). The Config type centralizes every knob the CLI
// needs: state directories, last.fm credentials, the Navidrome database
// location, and the match policy thresholds.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
