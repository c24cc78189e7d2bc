package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# flash2do configuration file
# Values can be overridden by FLASH2DO_* environment variables or CLI flags

# Directory holding the task store (supports ~ expansion and %VAR% on Windows)
data_dir = "~/.flash2do"

# Storage backend: file, sqlite, or memory
backend = "file"

# Key the task list is stored under
storage_key = "@tasks"

# Delay before changes are written (milliseconds)
save_debounce_ms = 500

# Countdown refresh interval (milliseconds)
tick_ms = 1000

# Deadlines closer than this are highlighted (minutes)
urgent_minutes = 60

# Color theme: auto, light, or dark
theme = "auto"

# Log directory and format
log_dir = "~/.flash2do/logs"
log_level = "info"
log_format = "text"
log_timestamps = true
log_caller = false
`
}
