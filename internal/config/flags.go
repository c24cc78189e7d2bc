package config

import (
	"flag"

	"github.com/nibzard/flash2do/internal/datadir"
)

// parseFlags defines the global flags on fs, parses args and applies only
// the flags that were explicitly set.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet(datadir.AppName, flag.ContinueOnError)
	}

	// Parse into a copy so unset flags never clobber file or env values.
	parsed := *cfg

	fs.StringVar(&parsed.DataDir, "data-dir", cfg.DataDir, "Directory holding the task store")
	fs.StringVar(&parsed.Backend, "backend", cfg.Backend, "Storage backend (file, sqlite, memory)")
	fs.StringVar(&parsed.StorageKey, "key", cfg.StorageKey, "Storage key of the task list")
	fs.IntVar(&parsed.SaveDebounceMS, "debounce-ms", cfg.SaveDebounceMS, "Delay before changes are saved (milliseconds)")
	fs.IntVar(&parsed.TickMS, "tick-ms", cfg.TickMS, "Countdown refresh interval (milliseconds)")
	fs.IntVar(&parsed.UrgentMinutes, "urgent-minutes", cfg.UrgentMinutes, "Deadlines closer than this are urgent (minutes)")
	fs.StringVar(&parsed.Theme, "theme", cfg.Theme, "Color theme (auto, light, dark)")
	fs.StringVar(&parsed.LogDir, "log-dir", cfg.LogDir, "Log directory")
	fs.StringVar(&parsed.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&parsed.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&parsed.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&parsed.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Map flag names to source field names
	flagToField := map[string]string{
		"data-dir":       "data_dir",
		"backend":        "backend",
		"key":            "storage_key",
		"debounce-ms":    "save_debounce_ms",
		"tick-ms":        "tick_ms",
		"urgent-minutes": "urgent_minutes",
		"theme":          "theme",
		"log-dir":        "log_dir",
		"log-level":      "log_level",
		"log-format":     "log_format",
		"log-timestamps": "log_timestamps",
		"log-caller":     "log_caller",
	}

	fs.Visit(func(f *flag.Flag) {
		field, ok := flagToField[f.Name]
		if !ok {
			return
		}
		applyField(cfg, &parsed, field)
		setSource(sources, field, SourceFlag)
	})
	return nil
}

// applyField copies one field from src into dst.
func applyField(dst, src *Config, field string) {
	switch field {
	case "data_dir":
		dst.DataDir = src.DataDir
	case "backend":
		dst.Backend = src.Backend
	case "storage_key":
		dst.StorageKey = src.StorageKey
	case "save_debounce_ms":
		dst.SaveDebounceMS = src.SaveDebounceMS
	case "tick_ms":
		dst.TickMS = src.TickMS
	case "urgent_minutes":
		dst.UrgentMinutes = src.UrgentMinutes
	case "theme":
		dst.Theme = src.Theme
	case "log_dir":
		dst.LogDir = src.LogDir
	case "log_level":
		dst.LogLevel = src.LogLevel
	case "log_format":
		dst.LogFormat = src.LogFormat
	case "log_timestamps":
		dst.LogTimestamps = src.LogTimestamps
	case "log_caller":
		dst.LogCaller = src.LogCaller
	}
}
