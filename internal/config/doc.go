// Package config loads, normalizes, and validates mqlite configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MQLITE_STORE_PATH. The Config type centralizes the store location and mode,
// logging output, and metrics toggle so the CLI and embedding programs resolve
// settings in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical modes and log formats, and clear validation errors.
package config
