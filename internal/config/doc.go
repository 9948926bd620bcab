// Package config loads backfill settings in layers.
//
// Later layers override earlier ones:
//
//  1. defaults
//  2. an optional TOML file (backfill.toml)
//  3. environment variables (a .env file is loaded into the environment by main)
//  4. command-line flags, applied by the CLI
//
// Validate must be called after the last layer. It resolves derived values
// (start day, timeout, location) and reports problems as
// domain.ErrConfiguration.
package config
