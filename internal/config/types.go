package config

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource

	// Files lists the config files that were read, lowest priority first.
	Files []string

	// Unknown lists keys found in config files that match no field.
	Unknown []string
}

// Themes accepted by the theme key.
const (
	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Default values.
const (
	DefaultDataDir        = "~/.flash2do"
	DefaultLogDir         = "~/.flash2do/logs"
	DefaultBackend        = "file"
	DefaultStorageKey     = "@tasks"
	DefaultSaveDebounceMS = 500
	DefaultTickMS         = 1000
	DefaultUrgentMinutes  = 60
	DefaultTheme          = ThemeAuto
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// Config holds the full configuration for flash2do.
type Config struct {
	// Storage
	DataDir    string `toml:"data_dir"`
	Backend    string `toml:"backend"`
	StorageKey string `toml:"storage_key"`

	// Timing
	SaveDebounceMS int `toml:"save_debounce_ms"`
	TickMS         int `toml:"tick_ms"`
	UrgentMinutes  int `toml:"urgent_minutes"`

	// Display
	Theme string `toml:"theme"`

	// Logging configuration
	LogDir        string `toml:"log_dir"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Working directory (computed)
	ProjectRoot string `toml:"-"`
}
