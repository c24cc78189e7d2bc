// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.flash2do/flash2do.toml or OS-specific config directory)
// 3. Project config file (flash2do.toml or .flash2do.toml in the working directory)
// 4. Environment variables (FLASH2DO_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.flash2do/flash2do.toml (preferred)
// - Windows: %APPDATA%\flash2do\flash2do.toml
// - macOS: ~/Library/Application Support/flash2do/flash2do.toml
// - Linux/BSD: $XDG_CONFIG_HOME/flash2do/flash2do.toml or ~/.config/flash2do/flash2do.toml
//
// Project-level config locations (overrides user config):
// - ./flash2do.toml (preferred)
// - ./.flash2do.toml
package config
