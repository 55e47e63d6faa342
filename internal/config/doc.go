// Package config loads, normalizes, and validates Auricle configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// AURICLE_LLM_API_KEY. The Config type centralizes every knob the daemon and
// CLI need, from pipeline intervals to service endpoints.
package config
