package config

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/flash2do/internal/kv"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.flash2do/flash2do.toml or OS-specific config dir)
// 3. Project config file (flash2do.toml or .flash2do.toml in current directory)
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
// Returns ConfigWithSources containing the config and a map of field names to their sources.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	cws := &ConfigWithSources{
		Config:  &Config{},
		Sources: make(map[string]ConfigSource),
	}
	cfg := cws.Config

	// 1. Set defaults (all fields start with default source)
	setDefaults(cfg)
	for _, field := range configFields() {
		cws.Sources[field] = SourceDefault
	}

	// 2. Try to load from user config file
	if path := findUserConfigFile(); path != "" {
		if err := cws.loadFile(path, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
	}

	// 3. Try to load from project config file (overrides user config)
	if path := findProjectConfigFile(); path != "" {
		if err := cws.loadFile(path, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
	}

	// 4. Override from environment
	if err := loadFromEnv(cfg, cws.Sources); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	// 5. Parse CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args, cws.Sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 6. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cws, nil
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"data_dir",
		"backend",
		"storage_key",
		"save_debounce_ms",
		"tick_ms",
		"urgent_minutes",
		"theme",
		"log_dir",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// loadConfigFile loads TOML config from the given file.
// Keys absent from the file leave cfg untouched.
func loadConfigFile(cfg *Config, path string) (toml.MetaData, error) {
	return toml.DecodeFile(path, cfg)
}

func (cws *ConfigWithSources) loadFile(path string, source ConfigSource) error {
	md, err := loadConfigFile(cws.Config, path)
	if err != nil {
		return err
	}
	cws.Files = append(cws.Files, path)
	for _, field := range configFields() {
		if md.IsDefined(field) {
			cws.Sources[field] = source
		}
	}
	for _, key := range md.Undecoded() {
		cws.Unknown = append(cws.Unknown, fmt.Sprintf("%s: %s", path, key.String()))
	}
	return nil
}

// finalizeConfig computes derived values and validates paths.
func finalizeConfig(cfg *Config) error {
	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}

	// Relative paths are taken from the directory flash2do runs in.
	cfg.DataDir = resolvePath(cfg.DataDir, cfg.ProjectRoot)
	cfg.LogDir = resolvePath(cfg.LogDir, cfg.ProjectRoot)

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.Theme = strings.ToLower(strings.TrimSpace(cfg.Theme))
	return nil
}

// Validate reports the first invalid setting.
func Validate(cfg *Config) error {
	if !kv.ValidBackend(cfg.Backend) {
		return fmt.Errorf("invalid backend %q (want %s)", cfg.Backend, strings.Join(kv.Backends(), ", "))
	}
	if cfg.Backend != kv.BackendMemory && cfg.DataDir == "" {
		return fmt.Errorf("data_dir must be set for the %s backend", cfg.Backend)
	}
	if strings.TrimSpace(cfg.StorageKey) == "" {
		return fmt.Errorf("storage_key must not be empty")
	}
	switch cfg.Theme {
	case ThemeAuto, ThemeLight, ThemeDark:
	default:
		return fmt.Errorf("invalid theme %q (want auto, light, or dark)", cfg.Theme)
	}
	if cfg.SaveDebounceMS < 0 || cfg.TickMS < 0 || cfg.UrgentMinutes < 0 {
		return fmt.Errorf("save_debounce_ms, tick_ms and urgent_minutes must not be negative")
	}
	return nil
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.DataDir = DefaultDataDir
	cfg.Backend = DefaultBackend
	cfg.StorageKey = DefaultStorageKey
	cfg.SaveDebounceMS = DefaultSaveDebounceMS
	cfg.TickMS = DefaultTickMS
	cfg.UrgentMinutes = DefaultUrgentMinutes
	cfg.Theme = DefaultTheme
	cfg.LogDir = DefaultLogDir
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}

// GetConfigFile returns the highest priority config file that was read.
func (cws *ConfigWithSources) GetConfigFile() string {
	if len(cws.Files) == 0 {
		return ""
	}
	return cws.Files[len(cws.Files)-1]
}

// SortedSources returns field names in a stable order alongside their source.
func (cws *ConfigWithSources) SortedSources() []string {
	keys := make([]string, 0, len(cws.Sources))
	for k := range cws.Sources {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
