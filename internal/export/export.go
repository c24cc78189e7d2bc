// Package export writes a task list in a portable format.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nibzard/flash2do/internal/task"
)

// Format is an export format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown export format %q (expected json|yaml)", s)
}

// Record is the YAML shape of a task. Deadlines are RFC 3339 in loc.
type Record struct {
	ID       string `yaml:"id"`
	Text     string `yaml:"text"`
	Deadline string `yaml:"deadline,omitempty"`
}

// Records converts tasks for YAML output.
func Records(tasks []task.Task, loc *time.Location) []Record {
	if loc == nil {
		loc = time.Local
	}
	out := make([]Record, 0, len(tasks))
	for _, t := range tasks {
		r := Record{ID: t.ID, Text: t.Text}
		if t.HasDeadline() {
			r.Deadline = t.Deadline.In(loc).Format(time.RFC3339)
		}
		out = append(out, r)
	}
	return out
}

// Write encodes tasks to w. JSON output is the stored wire format,
// indented; YAML output uses Record.
func Write(w io.Writer, tasks []task.Task, format Format, loc *time.Location) error {
	switch format {
	case FormatJSON, "":
		if tasks == nil {
			tasks = []task.Task{}
		}
		data, err := json.MarshalIndent(tasks, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		data = append(data, '\n')
		_, err = w.Write(data)
		return err
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(Records(tasks, loc)); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		_, err := w.Write(buf.Bytes())
		return err
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
