package task

import (
	"encoding/json"
	"fmt"
	"time"
)

// Task is a single to-do entry.
type Task struct {
	ID       string
	Text     string
	Deadline *time.Time
}

// HasDeadline reports whether the task carries a deadline.
func (t Task) HasDeadline() bool {
	return t.Deadline != nil
}

// IsZero returns true if the task has no ID.
func (t Task) IsZero() bool {
	return t.ID == ""
}

// wireTask is the persisted shape of a Task.
type wireTask struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Deadline *int64 `json:"deadline,omitempty"`
}

// MarshalJSON encodes the deadline as epoch milliseconds.
func (t Task) MarshalJSON() ([]byte, error) {
	w := wireTask{ID: t.ID, Text: t.Text}
	if t.HasDeadline() {
		ms := t.Deadline.UnixMilli()
		w.Deadline = &ms
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the persisted shape. A zero or missing deadline
// means no deadline.
func (t *Task) UnmarshalJSON(data []byte) error {
	var w wireTask
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode task: %w", err)
	}
	t.ID = w.ID
	t.Text = w.Text
	t.Deadline = nil
	if w.Deadline != nil && *w.Deadline != 0 {
		d := time.UnixMilli(*w.Deadline)
		t.Deadline = &d
	}
	return nil
}

// WithDeadline returns a copy of t with the deadline replaced.
func (t Task) WithDeadline(d *time.Time) Task {
	if d == nil {
		t.Deadline = nil
		return t
	}
	v := *d
	t.Deadline = &v
	return t
}
