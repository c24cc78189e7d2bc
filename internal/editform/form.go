// Package editform holds the state and save-time validation of the task
// edit form.
//
// The form has two states, no-deadline and custom-deadline, switched by
// SetDeadlineEnabled. In custom-deadline the five date fields are free text
// and are only checked when Save is called, in the order year, month, day,
// hour, minute. The first failing field aborts the save with a *FieldError.
//
// Day is checked against 1..31 regardless of month; time.Date normalizes
// out-of-range days (February 31 becomes early March).
package editform

import (
	"fmt"
	"strconv"
	"time"

	"github.com/nibzard/flash2do/internal/task"
)

// Field names a date field of the form.
type Field string

const (
	FieldYear   Field = "year"
	FieldMonth  Field = "month"
	FieldDay    Field = "day"
	FieldHour   Field = "hour"
	FieldMinute Field = "minute"
)

// Fields lists the date fields in validation order.
var Fields = []Field{FieldYear, FieldMonth, FieldDay, FieldHour, FieldMinute}

// FieldError is a user-facing validation failure for one field.
type FieldError struct {
	Field   Field
	Title   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Title + ": " + e.Message
}

type fieldRule struct {
	field    Field
	min, max int
	title    string
	message  string
}

var rules = []fieldRule{
	{FieldYear, 1900, 2100, "Invalid Year", "Please enter a year between 1900 and 2100."},
	{FieldMonth, 1, 12, "Invalid Month", "Month must be between 1 and 12."},
	{FieldDay, 1, 31, "Invalid Day", "Day must be between 1 and 31."},
	{FieldHour, 0, 23, "Invalid Hour", "Hour must be between 0 and 23."},
	{FieldMinute, 0, 59, "Invalid Minute", "Minute must be between 0 and 59."},
}

// Form is the editable state of one task.
type Form struct {
	Text        string
	UseDeadline bool
	Year        string
	Month       string
	Day         string
	Hour        string
	Minute      string
}

// CommitFunc receives the validated text and deadline.
type CommitFunc func(text string, deadline *time.Time)

// FromTask prefills the form. A task with a deadline starts in
// custom-deadline with the fields taken from the deadline in loc.
func FromTask(t task.Task, loc *time.Location) Form {
	f := Form{Text: t.Text}
	if !t.HasDeadline() {
		return f
	}
	if loc == nil {
		loc = time.Local
	}
	d := t.Deadline.In(loc)
	f.UseDeadline = true
	f.Year = strconv.Itoa(d.Year())
	f.Month = strconv.Itoa(int(d.Month()))
	f.Day = strconv.Itoa(d.Day())
	f.Hour = strconv.Itoa(d.Hour())
	f.Minute = strconv.Itoa(d.Minute())
	return f
}

// SetDeadlineEnabled flips the deadline switch. Turning it off clears all
// five date fields.
func (f *Form) SetDeadlineEnabled(on bool) {
	f.UseDeadline = on
	if on {
		return
	}
	f.Year, f.Month, f.Day, f.Hour, f.Minute = "", "", "", "", ""
}

// Value returns the raw text of a date field.
func (f *Form) Value(field Field) string {
	switch field {
	case FieldYear:
		return f.Year
	case FieldMonth:
		return f.Month
	case FieldDay:
		return f.Day
	case FieldHour:
		return f.Hour
	case FieldMinute:
		return f.Minute
	}
	return ""
}

// SetValue sets the raw text of a date field.
func (f *Form) SetValue(field Field, v string) {
	switch field {
	case FieldYear:
		f.Year = v
	case FieldMonth:
		f.Month = v
	case FieldDay:
		f.Day = v
	case FieldHour:
		f.Hour = v
	case FieldMinute:
		f.Minute = v
	}
}

// Validate checks the date fields. It returns nil in no-deadline state.
func (f Form) Validate() error {
	if !f.UseDeadline {
		return nil
	}
	_, err := f.parse()
	return err
}

// Deadline composes the date fields into a timestamp in loc. It returns
// nil without error in no-deadline state.
func (f Form) Deadline(loc *time.Location) (*time.Time, error) {
	if !f.UseDeadline {
		return nil, nil
	}
	v, err := f.parse()
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.Local
	}
	d := time.Date(v[0], time.Month(v[1]), v[2], v[3], v[4], 0, 0, loc)
	return &d, nil
}

// Save validates the form and, only on success, hands the result to commit.
func (f Form) Save(loc *time.Location, commit CommitFunc) error {
	deadline, err := f.Deadline(loc)
	if err != nil {
		return err
	}
	commit(f.Text, deadline)
	return nil
}

func (f Form) parse() ([5]int, error) {
	var out [5]int
	for i, r := range rules {
		n, ok := leadingInt(f.Value(r.field))
		if !ok || n < r.min || n > r.max {
			return out, &FieldError{Field: r.field, Title: r.title, Message: r.message}
		}
		out[i] = n
	}
	return out, nil
}

// leadingInt reads an optionally signed decimal prefix after leading
// whitespace, so "12abc" reads as 12 and "abc" fails.
func leadingInt(s string) (int, bool) {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	neg := i > start && s[start] == '-'
	digits := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == digits {
		return 0, false
	}
	sig := digits
	for sig < i-1 && s[sig] == '0' {
		sig++
	}
	// Cap the significant digits so absurd input fails the range check instead of overflowing.
	if i-sig > 9 {
		return 0, false
	}
	n, err := strconv.Atoi(s[sig:i])
	if err != nil {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// String renders the form state for logs.
func (f Form) String() string {
	if !f.UseDeadline {
		return fmt.Sprintf("text=%q deadline=none", f.Text)
	}
	return fmt.Sprintf("text=%q deadline=%s-%s-%s %s:%s", f.Text, f.Year, f.Month, f.Day, f.Hour, f.Minute)
}
