package task

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TapResult is the outcome of a tap on a task row.
type TapResult int

const (
	// TapIgnored means the tapped id was not found.
	TapIgnored TapResult = iota
	// TapToggled means the selection was non-empty, so the tap toggled it.
	TapToggled
	// TapOpenEditor means the selection was empty and the editor should open.
	TapOpenEditor
)

// Collection is an immutable, ordered (most recent first) list of tasks
// plus the current multi-selection.
type Collection struct {
	tasks    []Task
	selected map[string]struct{}
	newID    func() string
}

// Option configures a Collection.
type Option func(*Collection)

// WithIDFunc overrides the id generator (uuid v4 by default).
func WithIDFunc(fn func() string) Option {
	return func(c *Collection) {
		c.newID = fn
	}
}

// NewCollection builds a collection from tasks in their stored order.
// Tasks without an id and repeated ids are dropped.
func NewCollection(tasks []Task, opts ...Option) Collection {
	c := Collection{newID: uuid.NewString}
	for _, opt := range opts {
		opt(&c)
	}

	seen := make(map[string]struct{}, len(tasks))
	c.tasks = make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsZero() {
			continue
		}
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		c.tasks = append(c.tasks, t.WithDeadline(t.Deadline))
	}
	return c
}

// Tasks returns a copy of the task list.
func (c Collection) Tasks() []Task {
	out := make([]Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// Len returns the number of tasks.
func (c Collection) Len() int {
	return len(c.tasks)
}

// At returns the task at index i.
func (c Collection) At(i int) Task {
	return c.tasks[i]
}

// Get returns the task with id.
func (c Collection) Get(id string) (Task, bool) {
	for _, t := range c.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// HasText reports whether some task has exactly text.
func (c Collection) HasText(text string) bool {
	for _, t := range c.tasks {
		if t.Text == text {
			return true
		}
	}
	return false
}

// IsSelected reports whether id is in the selection.
func (c Collection) IsSelected(id string) bool {
	_, ok := c.selected[id]
	return ok
}

// SelectionCount returns the size of the selection.
func (c Collection) SelectionCount() int {
	return len(c.selected)
}

// Selected returns the selected ids in list order.
func (c Collection) Selected() []string {
	ids := make([]string, 0, len(c.selected))
	for _, t := range c.tasks {
		if c.IsSelected(t.ID) {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// Add inserts a new task at the front. Blank text and text already present
// are rejected without error. The text is stored as typed.
func (c Collection) Add(text string) (Collection, bool) {
	if strings.TrimSpace(text) == "" || c.HasText(text) {
		return c, false
	}
	next := c.clone()
	next.tasks = make([]Task, 0, len(c.tasks)+1)
	next.tasks = append(next.tasks, Task{ID: c.mintID(), Text: text})
	next.tasks = append(next.tasks, c.tasks...)
	return next, true
}

// Update replaces the text and deadline of the task with id.
func (c Collection) Update(id, text string, deadline *time.Time) (Collection, bool) {
	idx := c.index(id)
	if idx < 0 {
		return c, false
	}
	next := c.clone()
	next.tasks = c.Tasks()
	updated := next.tasks[idx]
	updated.Text = text
	next.tasks[idx] = updated.WithDeadline(deadline)
	return next, true
}

// Remove drops every task whose id is in ids and clears the selection.
// The returned flag reports whether any task was removed.
func (c Collection) Remove(ids []string) (Collection, bool) {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	next := c.clone()
	next.selected = nil
	next.tasks = make([]Task, 0, len(c.tasks))
	for _, t := range c.tasks {
		if _, ok := drop[t.ID]; ok {
			continue
		}
		next.tasks = append(next.tasks, t)
	}
	return next, len(next.tasks) != len(c.tasks)
}

// RemoveSelected removes the selected tasks.
func (c Collection) RemoveSelected() (Collection, bool) {
	return c.Remove(c.Selected())
}

// ToggleSelect adds id to the selection if absent and removes it if present.
func (c Collection) ToggleSelect(id string) Collection {
	next := c.clone()
	next.selected = make(map[string]struct{}, len(c.selected)+1)
	for k := range c.selected {
		next.selected[k] = struct{}{}
	}
	if _, ok := next.selected[id]; ok {
		delete(next.selected, id)
	} else {
		next.selected[id] = struct{}{}
	}
	return next
}

// ClearSelection empties the selection.
func (c Collection) ClearSelection() Collection {
	next := c.clone()
	next.selected = nil
	return next
}

// LongPress always toggles selection.
func (c Collection) LongPress(id string) Collection {
	return c.ToggleSelect(id)
}

// Tap toggles selection when a selection is active; otherwise it asks the
// caller to open the editor for the task.
func (c Collection) Tap(id string) (Collection, TapResult) {
	if c.SelectionCount() > 0 {
		return c.ToggleSelect(id), TapToggled
	}
	if c.index(id) < 0 {
		return c, TapIgnored
	}
	return c, TapOpenEditor
}

func (c Collection) index(id string) int {
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// clone copies the header; tasks and selected are shared until replaced.
func (c Collection) clone() Collection {
	return c
}

func (c Collection) mintID() string {
	gen := c.newID
	if gen == nil {
		gen = uuid.NewString
	}
	for {
		id := gen()
		if c.index(id) < 0 {
			return id
		}
	}
}
