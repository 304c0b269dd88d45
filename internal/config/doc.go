// Package config loads engine settings from a TOML file with environment
// overrides.
//
// Precedence, lowest to highest: built-in defaults, the TOML file,
// LOOM_* environment variables. A missing file is not an error; the
// defaults simply apply. The Watcher reloads the file on change and hands
// the validated result to a callback, so a running editor picks up
// setting changes without a restart.
package config
