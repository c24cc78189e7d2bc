// Package countdown turns task deadlines into remaining-time strings and
// urgency flags.
package countdown

import (
	"fmt"
	"time"

	"github.com/nibzard/flash2do/internal/task"
)

// Expired is shown once a deadline has passed.
const Expired = "Expired"

// DefaultUrgentWindow is how close a deadline must be to count as urgent.
const DefaultUrgentWindow = time.Hour

const (
	msPerSecond = int64(1000)
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

// Entry is the display state of one task's countdown.
type Entry struct {
	Text   string
	Urgent bool
}

// Remaining returns deadline - now in whole milliseconds.
func Remaining(deadline, now time.Time) int64 {
	return deadline.UnixMilli() - now.UnixMilli()
}

// Format renders the time left as "{d}d {h}h {m}m {s}s", or Expired when
// nothing is left.
func Format(deadline, now time.Time) string {
	diff := Remaining(deadline, now)
	if diff <= 0 {
		return Expired
	}
	days := diff / msPerDay
	hours := (diff / msPerHour) % 24
	minutes := (diff / msPerMinute) % 60
	seconds := (diff / msPerSecond) % 60
	return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
}

// IsUrgent reports whether deadline is strictly in the future and less
// than window away.
func IsUrgent(deadline, now time.Time, window time.Duration) bool {
	diff := Remaining(deadline, now)
	return diff > 0 && diff < window.Milliseconds()
}

// Compute returns an entry for every task with a deadline, keyed by id.
func Compute(tasks []task.Task, now time.Time, window time.Duration) map[string]Entry {
	entries := make(map[string]Entry, len(tasks))
	for _, t := range tasks {
		if !t.HasDeadline() {
			continue
		}
		entries[t.ID] = Entry{
			Text:   Format(*t.Deadline, now),
			Urgent: IsUrgent(*t.Deadline, now, window),
		}
	}
	return entries
}
