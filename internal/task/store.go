package task

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/nibzard/flash2do/internal/kv"
)

// DefaultKey is the key the task list is stored under.
const DefaultKey = "@tasks"

// Store reads and writes the task list as JSON text in a KV store.
type Store struct {
	kv     kv.KV
	key    string
	logger *log.Logger
}

// NewStore returns a store for key. A nil logger discards output.
func NewStore(backend kv.KV, key string, logger *log.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Store{kv: backend, key: key, logger: logger}
}

// Key returns the storage key.
func (s *Store) Key() string {
	return s.key
}

// Load returns the saved tasks. It never fails: a missing key, a backend
// error, or a corrupt value all yield an empty list.
func (s *Store) Load(ctx context.Context) []Task {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("Failed to load tasks", "key", s.key, "err", err)
		return []Task{}
	}
	if !ok {
		s.logger.Debug("No saved tasks", "key", s.key)
		return []Task{}
	}
	tasks, err := Decode([]byte(raw))
	if err != nil {
		s.logger.Warn("Failed to parse saved tasks", "key", s.key, "err", err)
		return []Task{}
	}
	s.logger.Debug("Loaded tasks", "key", s.key, "count", len(tasks))
	return tasks
}

// Save writes tasks under the store key.
func (s *Store) Save(ctx context.Context, tasks []Task) error {
	data, err := Encode(tasks)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	s.logger.Debug("Saved tasks", "key", s.key, "count", len(tasks))
	return nil
}

// Raw returns the stored value as-is.
func (s *Store) Raw(ctx context.Context) (string, bool, error) {
	return s.kv.Get(ctx, s.key)
}

// Encode marshals tasks to the persisted JSON array. A nil slice encodes
// as [].
func Encode(tasks []Task) ([]byte, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("marshal tasks: %w", err)
	}
	return data, nil
}

// Decode parses a persisted JSON array. A value that is valid JSON but not
// an array decodes to an empty list; elements that cannot be decoded or
// carry no id are skipped, as are repeated ids.
func Decode(data []byte) ([]Task, error) {
	var top any
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}
	if _, ok := top.([]any); !ok {
		return []Task{}, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}

	tasks := make([]Task, 0, len(elems))
	seen := make(map[string]struct{}, len(elems))
	for _, elem := range elems {
		var t Task
		if err := json.Unmarshal(elem, &t); err != nil {
			continue
		}
		if t.IsZero() {
			continue
		}
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
