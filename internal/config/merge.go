package config

import (
	"strings"
)

// setSource records where a field's value came from. A nil map is ignored.
func setSource(sources map[string]ConfigSource, field string, source ConfigSource) {
	if sources == nil {
		return
	}
	sources[field] = source
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
