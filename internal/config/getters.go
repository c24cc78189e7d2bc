package config

import (
	"time"
)

// SaveDebounce returns the persistence debounce delay.
func (c *Config) SaveDebounce() time.Duration {
	return positiveMillis(c.SaveDebounceMS, DefaultSaveDebounceMS)
}

// TickInterval returns the countdown refresh interval.
func (c *Config) TickInterval() time.Duration {
	return positiveMillis(c.TickMS, DefaultTickMS)
}

// UrgentWindow returns how close a deadline must be to count as urgent.
func (c *Config) UrgentWindow() time.Duration {
	if c.UrgentMinutes <= 0 {
		return DefaultUrgentMinutes * time.Minute
	}
	return time.Duration(c.UrgentMinutes) * time.Minute
}

func positiveMillis(v, fallback int) time.Duration {
	if v <= 0 {
		v = fallback
	}
	return time.Duration(v) * time.Millisecond
}
