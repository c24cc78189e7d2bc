// Package datadir names the files flash2do keeps under its state directory.
package datadir

import "path/filepath"

const (
	// Dir is the name of the per-user state directory.
	Dir = ".flash2do"

	// AppName is used for OS config directories and the project config file.
	AppName = "flash2do"

	// ConfigFile is the config file name.
	ConfigFile = AppName + ".toml"

	// HiddenConfigFile is the alternative project config file name.
	HiddenConfigFile = "." + ConfigFile

	// LogsDir is the log directory name inside the state directory.
	LogsDir = "logs"
)

// Home returns the state directory under home.
func Home(home string) string {
	return filepath.Join(home, Dir)
}

// ConfigPath returns the user config path under home.
func ConfigPath(home string) string {
	return filepath.Join(home, Dir, ConfigFile)
}

// LogsPath returns the default log directory under home.
func LogsPath(home string) string {
	return filepath.Join(home, Dir, LogsDir)
}
