package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FLASH2DO_"

// loadFromEnv overrides config from FLASH2DO_* variables. Empty values are
// ignored; malformed numbers are an error.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) error {
	str := func(name, field string, target *string) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			*target = v
			setSource(sources, field, SourceEnv)
		}
	}
	num := func(name, field string, target *int) error {
		v := strings.TrimSpace(os.Getenv(EnvPrefix + name))
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*target = n
		setSource(sources, field, SourceEnv)
		return nil
	}
	boolean := func(name, field string, target *bool) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			*target = boolFromString(v)
			setSource(sources, field, SourceEnv)
		}
	}

	str("DATA_DIR", "data_dir", &cfg.DataDir)
	str("BACKEND", "backend", &cfg.Backend)
	str("STORAGE_KEY", "storage_key", &cfg.StorageKey)
	str("THEME", "theme", &cfg.Theme)
	str("LOG_DIR", "log_dir", &cfg.LogDir)
	str("LOG_LEVEL", "log_level", &cfg.LogLevel)
	str("LOG_FORMAT", "log_format", &cfg.LogFormat)
	boolean("LOG_TIMESTAMPS", "log_timestamps", &cfg.LogTimestamps)
	boolean("LOG_CALLER", "log_caller", &cfg.LogCaller)

	if err := num("SAVE_DEBOUNCE_MS", "save_debounce_ms", &cfg.SaveDebounceMS); err != nil {
		return err
	}
	if err := num("TICK_MS", "tick_ms", &cfg.TickMS); err != nil {
		return err
	}
	return num("URGENT_MINUTES", "urgent_minutes", &cfg.UrgentMinutes)
}
