package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nibzard/flash2do/internal/config"
	"github.com/nibzard/flash2do/internal/countdown"
	"github.com/nibzard/flash2do/internal/editform"
	"github.com/nibzard/flash2do/internal/export"
	"github.com/nibzard/flash2do/internal/task"
)

const (
	// shortIDLen is how many id characters ls prints.
	shortIDLen     = 8
	deadlineLayout = "YYYY-MM-DD HH:MM"
)

// Clock and zone used by the task commands.
var (
	now         = time.Now
	cliLocation = time.Local
)

var errStoreCorrupt = errors.New("stored tasks are unreadable (run 'flash2do doctor')")

// loadStrict reads the task list for a command that writes it back. Unlike
// Store.Load it fails on any value that does not match the task schema or
// has rows Decode would skip, instead of starting over from what is left.
func loadStrict(ctx context.Context, store *task.Store) (task.Collection, error) {
	raw, ok, err := store.Raw(ctx)
	if err != nil {
		return task.Collection{}, fmt.Errorf("reading tasks: %w", err)
	}
	if !ok {
		return task.NewCollection(nil), nil
	}
	result := task.Validate([]byte(raw))
	if !result.Valid {
		if len(result.Errors) > 0 {
			return task.Collection{}, fmt.Errorf("%w: %v", errStoreCorrupt, result.Errors[0])
		}
		return task.Collection{}, errStoreCorrupt
	}
	tasks, err := task.Decode([]byte(raw))
	if err != nil {
		return task.Collection{}, fmt.Errorf("%w: %v", errStoreCorrupt, err)
	}
	// Decode drops repeated ids; writing that list back would lose rows.
	var rows []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &rows); err != nil || len(rows) != len(tasks) {
		return task.Collection{}, fmt.Errorf("%w: %d stored rows, %d readable", errStoreCorrupt, len(rows), len(tasks))
	}
	return task.NewCollection(tasks), nil
}

// addCommand adds one task built from the joined arguments.
func addCommand(ctx context.Context, cfg *config.Config, args []string) error {
	text := strings.Join(args, " ")

	store, backend, err := openStore(cfg, cliLogger(cfg))
	if err != nil {
		return err
	}
	defer backend.Close()

	coll, err := loadStrict(ctx, store)
	if err != nil {
		return err
	}
	next, added := coll.Add(text)
	if !added {
		if strings.TrimSpace(text) == "" {
			fmt.Fprintln(stderr, "Nothing added: task text is empty.")
		} else {
			fmt.Fprintf(stderr, "Nothing added: %q is already in the list.\n", text)
		}
		return nil
	}
	if err := store.Save(ctx, next.Tasks()); err != nil {
		return err
	}
	t := next.At(0)
	fmt.Fprintf(stdout, "Added %s %s\n", shortID(t.ID), t.Text)
	return nil
}

// listEntry is one row of ls -json.
type listEntry struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Deadline  string `json:"deadline,omitempty"`
	Countdown string `json:"countdown,omitempty"`
	Urgent    bool   `json:"urgent,omitempty"`
}

// lsCommand lists tasks in stored order with their countdowns.
func lsCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("flash2do ls", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asJSON := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	store, backend, err := openStore(cfg, cliLogger(cfg))
	if err != nil {
		return err
	}
	defer backend.Close()

	tasks := store.Load(ctx)
	at := now()
	entries := countdown.Compute(tasks, at, cfg.UrgentWindow())

	if *asJSON {
		out := make([]listEntry, 0, len(tasks))
		for _, t := range tasks {
			e := listEntry{ID: t.ID, Text: t.Text}
			if t.HasDeadline() {
				e.Deadline = t.Deadline.In(cliLocation).Format(time.RFC3339)
				e.Countdown = entries[t.ID].Text
				e.Urgent = entries[t.ID].Urgent
			}
			out = append(out, e)
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(tasks) == 0 {
		fmt.Fprintln(stdout, "Hooray! No Tasks Pending")
		return nil
	}
	for _, t := range tasks {
		fmt.Fprintf(stdout, "%-*s  %s\n", shortIDLen, shortID(t.ID), t.Text)
		if e, ok := entries[t.ID]; ok {
			marker := ""
			if e.Urgent {
				marker = "  (urgent)"
			}
			fmt.Fprintf(stdout, "%-*s  Deadline: %s%s\n", shortIDLen, "", e.Text, marker)
		}
	}
	return nil
}

// rmCommand removes the tasks named by id or unique id prefix.
func rmCommand(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("rm requires at least one task id")
	}

	store, backend, err := openStore(cfg, cliLogger(cfg))
	if err != nil {
		return err
	}
	defer backend.Close()

	coll, err := loadStrict(ctx, store)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(args))
	for _, ref := range args {
		id, err := resolveID(coll, ref)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	next, changed := coll.Remove(ids)
	if !changed {
		return nil
	}
	if err := store.Save(ctx, next.Tasks()); err != nil {
		return err
	}
	removed := coll.Len() - next.Len()
	fmt.Fprintf(stdout, "Removed %d task(s)\n", removed)
	return nil
}

// editCommand updates a task's text and deadline through the same
// validation as the edit screen.
func editCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("flash2do edit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	text := fs.String("text", "", "New task text")
	deadline := fs.String("deadline", "", "Deadline as \""+deadlineLayout+"\" in local time")
	clearDeadline := fs.Bool("clear-deadline", false, "Remove the deadline")

	// Allow the id before or after the flags.
	var ref string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		ref, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if ref == "" {
		if len(rest) == 0 {
			return fmt.Errorf("edit requires a task id")
		}
		ref, rest = rest[0], rest[1:]
	}
	if len(rest) > 0 {
		return fmt.Errorf("unexpected arguments: %v", rest)
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["deadline"] && *clearDeadline {
		return fmt.Errorf("-deadline and -clear-deadline cannot be combined")
	}
	if !set["text"] && !set["deadline"] && !*clearDeadline {
		return fmt.Errorf("nothing to change (use -text, -deadline or -clear-deadline)")
	}

	store, backend, err := openStore(cfg, cliLogger(cfg))
	if err != nil {
		return err
	}
	defer backend.Close()

	coll, err := loadStrict(ctx, store)
	if err != nil {
		return err
	}
	id, err := resolveID(coll, ref)
	if err != nil {
		return err
	}
	current, _ := coll.Get(id)

	form := editform.FromTask(current, cliLocation)
	if set["text"] {
		form.Text = *text
	}
	if *clearDeadline {
		form.SetDeadlineEnabled(false)
	}
	if set["deadline"] {
		if err := setDeadline(&form, *deadline); err != nil {
			return err
		}
	}

	next := coll
	err = form.Save(cliLocation, func(text string, d *time.Time) {
		next, _ = coll.Update(id, text, d)
	})
	if err != nil {
		var fe *editform.FieldError
		if errors.As(err, &fe) {
			return fmt.Errorf("invalid deadline: %w", err)
		}
		return err
	}
	if err := store.Save(ctx, next.Tasks()); err != nil {
		return err
	}

	updated, _ := next.Get(id)
	fmt.Fprintf(stdout, "Updated %s %s\n", shortID(updated.ID), updated.Text)
	if updated.HasDeadline() {
		fmt.Fprintf(stdout, "  Deadline: %s\n", updated.Deadline.In(cliLocation).Format("2006-01-02 15:04"))
	}
	return nil
}

// setDeadline splits "YYYY-MM-DD HH:MM" into the form's date fields. The
// field values themselves are checked by the form.
func setDeadline(form *editform.Form, value string) error {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return fmt.Errorf("deadline %q: expected %s", value, deadlineLayout)
	}
	date := strings.Split(parts[0], "-")
	clock := strings.Split(parts[1], ":")
	if len(date) != 3 || len(clock) != 2 {
		return fmt.Errorf("deadline %q: expected %s", value, deadlineLayout)
	}
	form.SetDeadlineEnabled(true)
	values := append(date, clock...)
	for i, field := range editform.Fields {
		form.SetValue(field, values[i])
	}
	return nil
}

// exportCommand writes every task as JSON or YAML.
func exportCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("flash2do export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	formatFlag := fs.String("format", string(export.FormatJSON), "Output format (json|yaml)")
	output := fs.String("o", "", "Output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	format, err := export.ParseFormat(*formatFlag)
	if err != nil {
		return err
	}

	store, backend, err := openStore(cfg, cliLogger(cfg))
	if err != nil {
		return err
	}
	defer backend.Close()
	tasks := store.Load(ctx)

	if *output == "" {
		return export.Write(stdout, tasks, format, cliLocation)
	}
	f, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", *output, err)
	}
	if err := export.Write(f, tasks, format, cliLocation); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", *output, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", *output, err)
	}
	fmt.Fprintf(stderr, "Exported %d task(s) to %s\n", len(tasks), *output)
	return nil
}

// resolveID maps an exact id or a unique id prefix to a task id.
func resolveID(coll task.Collection, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty id", ErrNotFound)
	}
	if _, ok := coll.Get(ref); ok {
		return ref, nil
	}
	var matches []string
	for _, t := range coll.Tasks() {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("id prefix %q is ambiguous (%d tasks match)", ref, len(matches))
	}
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}
