package kv

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileKV stores each key as a JSON file in Dir.
type FileKV struct {
	Dir string
}

// NewFileKV creates dir if needed and returns a file-backed store.
func NewFileKV(dir string) (*FileKV, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("data dir is empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileKV{Dir: dir}, nil
}

// Path returns the file that holds key.
func (f *FileKV) Path(key string) string {
	return filepath.Join(f.Dir, fileName(key))
}

// Get reads the file for key.
func (f *FileKV) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(f.Path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set writes value to a temp file and renames it over the key's file.
func (f *FileKV) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.Dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.Path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

// Close is a no-op.
func (f *FileKV) Close() error {
	return nil
}

// fileName maps a key such as "@tasks" to "tasks.json". A single leading
// "@" is dropped, so "@tasks" and "tasks" share a file. Any other key that
// needs characters replaced gets a hash of the full key appended, so keys
// that sanitize to the same name stay apart.
func fileName(key string) string {
	rest := strings.TrimPrefix(key, "@")
	var b strings.Builder
	replaced := rest == ""
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		valid := (c >= 'A' && c <= 'Z') ||
			(c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') ||
			c == '_' || c == '-'
		if !valid {
			b.WriteByte('_')
			replaced = true
			continue
		}
		b.WriteByte(c)
	}
	if !replaced {
		return b.String() + ".json"
	}

	name := strings.Trim(b.String(), "_")
	if name == "" {
		name = "default"
	}
	sum := sha256.Sum256([]byte(key))
	return name + "-" + hex.EncodeToString(sum[:4]) + ".json"
}
