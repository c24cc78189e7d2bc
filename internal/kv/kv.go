// Package kv provides small key-value blob stores.
//
// A store maps string keys to opaque string values. Three backends exist:
//
//   - file: one file per key under a directory (the default)
//   - sqlite: a single kv table in a SQLite database
//   - memory: an in-process map, used by tests
//
// A missing key is not an error: Get reports ok=false with a nil error.
package kv

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// SQLiteFile is the database file name used by the sqlite backend.
const SQLiteFile = "flash2do.db"

// KV is a key-value blob store.
type KV interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Close releases backend resources.
	Close() error
}

// Open opens the named backend rooted at dir.
func Open(backend, dir string) (KV, error) {
	switch normalizeBackend(backend) {
	case BackendFile:
		return NewFileKV(dir)
	case BackendSQLite:
		return OpenSQLite(filepath.Join(dir, SQLiteFile))
	case BackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q (expected file|sqlite|memory)", backend)
	}
}

// ValidBackend reports whether name is a known backend.
func ValidBackend(name string) bool {
	switch normalizeBackend(name) {
	case BackendFile, BackendSQLite, BackendMemory:
		return true
	}
	return false
}

func normalizeBackend(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Backends lists the known backend names.
func Backends() []string {
	return []string{BackendFile, BackendSQLite, BackendMemory}
}
