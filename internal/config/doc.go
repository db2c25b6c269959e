// Package config loads hakija.toml and resolves the effective configuration
// from defaults, the file, HAKIJA_* environment variables and command-line
// flags, recording where each value came from.
package config
