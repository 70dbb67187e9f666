// Package config loads, normalizes, and validates phisweep configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks for store
// endpoints (PHISWEEP_REDIS_URL, PHISWEEP_POSTGRES_DSN). The Config type
// centralizes every knob the CLI, the GPFS callback and the workflow need.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical backend names, and clear validation errors.
package config
