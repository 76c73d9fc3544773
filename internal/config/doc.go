// Package config defines the TOML configuration for the quality gate and
// the rules for resolving it.
//
// Default supplies the baseline; Load layers the config file over it,
// expands ~ in paths, applies environment fallbacks such as
// BUTTONDOWN_API_KEY, and validates the result, so the rest of the system
// can assume paths, timeouts, retry bounds, and lint knobs are sane.
// EnsureDirectories creates the data and log directories the gate writes
// to.
package config
