// Package logging provides tests for run logs and tail output.
package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

// TestNewRunLogger tests creating a new run logger.
func TestNewRunLogger(t *testing.T) {
	t.Run("successful creation with valid paths", func(t *testing.T) {
		baseDir := t.TempDir()
		dataDir := t.TempDir()

		logger, err := NewRunLogger(baseDir, dataDir)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer logger.Close()

		if logger.Dir == "" || logger.RunID == "" || logger.LogPath == "" {
			t.Errorf("fields not set: %+v", logger)
		}
		if filepath.Ext(logger.LogPath) != LogExt {
			t.Errorf("LogPath: got %q, want %s extension", logger.LogPath, LogExt)
		}
		if _, err := os.Stat(logger.LogPath); err != nil {
			t.Errorf("log file not created: %v", err)
		}
	})

	t.Run("empty base dir returns error", func(t *testing.T) {
		_, err := NewRunLogger("", t.TempDir())
		if err == nil {
			t.Fatal("expected error for empty base dir, got nil")
		}
		if !strings.Contains(err.Error(), "empty") {
			t.Errorf("expected empty dir error, got %v", err)
		}
	})

	t.Run("creates log directory if missing", func(t *testing.T) {
		newLogDir := filepath.Join(t.TempDir(), "new-logs", "nested")

		logger, err := NewRunLogger(newLogDir, t.TempDir())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer logger.Close()

		if _, err := os.Stat(newLogDir); err != nil {
			t.Errorf("log directory not created: %v", err)
		}
	})

	t.Run("log directory includes store slug", func(t *testing.T) {
		dataDir := filepath.Join(t.TempDir(), "my tasks")
		logger, err := NewRunLogger(t.TempDir(), dataDir)
		if err != nil {
			t.Fatal(err)
		}
		defer logger.Close()

		if !strings.HasPrefix(filepath.Base(logger.Dir), "my_tasks-") {
			t.Errorf("Dir: got %q, want my_tasks-<hash>", logger.Dir)
		}
	})
}

func TestRunLoggerWritesLogger(t *testing.T) {
	logger, err := NewRunLogger(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	l := logger.Logger(Options{Level: "debug", Format: "logfmt"})
	l.Debug("saved", "count", 3)
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(logger.LogPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "msg=saved") || !strings.Contains(string(data), "count=3") {
		t.Errorf("log content: %q", data)
	}
}

func TestRunLoggerNilSafe(t *testing.T) {
	var r *RunLogger
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil: %v", err)
	}
	if _, err := r.Writer().Write([]byte("x")); err != nil {
		t.Errorf("Writer on nil: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug":   log.DebugLevel,
		"INFO":    log.InfoLevel,
		"warn":    log.WarnLevel,
		"warning": log.WarnLevel,
		"error":   log.ErrorLevel,
		"":        log.InfoLevel,
		"loud":    log.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q): got %v, want %v", in, got, want)
		}
	}
}

func TestParseFormatter(t *testing.T) {
	tests := map[string]log.Formatter{
		"json":   log.JSONFormatter,
		"logfmt": log.LogfmtFormatter,
		"text":   log.TextFormatter,
		"":       log.TextFormatter,
	}
	for in, want := range tests {
		if got := ParseFormatter(in); got != want {
			t.Errorf("ParseFormatter(%q): got %v, want %v", in, got, want)
		}
	}
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, Options{Format: "json", Level: "warn"}).Info("hidden")
	New(&buf, Options{Format: "json", Level: "warn"}).Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("json output: %q", out)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"tasks", "tasks"},
		{".flash2do", "flash2do"},
		{"my tasks!", "my_tasks"},
		{"a//b", "a_b"},
		{"   ", "store"},
		{"???", "store"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := slugify(tt.input); got != tt.want {
				t.Errorf("slugify(%q): got %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestHashPath(t *testing.T) {
	a := hashPath("/a")
	if len(a) != 8 {
		t.Errorf("hash length: got %d, want 8", len(a))
	}
	if a != hashPath("/a") {
		t.Error("hash should be deterministic")
	}
	if a == hashPath("/b") {
		t.Error("different paths should hash differently")
	}
}

func TestRunID(t *testing.T) {
	id := runID()
	parts := strings.Split(id, "-")
	if len(parts) != 3 {
		t.Fatalf("runID %q: want date-time-pid", id)
	}
	if _, err := time.Parse("20060102-150405", parts[0]+"-"+parts[1]); err != nil {
		t.Errorf("runID timestamp: %v", err)
	}
}

func TestFindLogDirStable(t *testing.T) {
	base := t.TempDir()
	data := t.TempDir()
	a, err := FindLogDir(base, data)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := FindLogDir(base, data)
	if a != b {
		t.Errorf("FindLogDir not stable: %q vs %q", a, b)
	}
	if filepath.Dir(a) != base {
		t.Errorf("FindLogDir: %q not under %q", a, base)
	}
}

func TestFindLatestLog(t *testing.T) {
	t.Run("missing dir", func(t *testing.T) {
		got, err := FindLatestLog(filepath.Join(t.TempDir(), "nope"))
		if err != nil || got != "" {
			t.Errorf("got %q, %v", got, err)
		}
	})

	t.Run("newest log wins and other files are ignored", func(t *testing.T) {
		dir := t.TempDir()
		old := filepath.Join(dir, "20240101-000000-1.log")
		newer := filepath.Join(dir, "20240102-000000-2.log")
		other := filepath.Join(dir, "notes.txt")
		for _, p := range []string{old, newer, other} {
			if err := os.WriteFile(p, []byte("x\n"), 0644); err != nil {
				t.Fatal(err)
			}
		}
		past := time.Now().Add(-time.Hour)
		if err := os.Chtimes(old, past, past); err != nil {
			t.Fatal(err)
		}
		future := time.Now().Add(time.Hour)
		if err := os.Chtimes(other, future, future); err != nil {
			t.Fatal(err)
		}

		got, err := FindLatestLog(dir)
		if err != nil {
			t.Fatal(err)
		}
		if got != newer {
			t.Errorf("got %q, want %q", got, newer)
		}

		runs, err := FindLogRuns(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(runs) != 2 || runs[0].RunID != "20240102-000000-2" {
			t.Errorf("runs: %+v", runs)
		}
	})
}

func TestTailLog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.log")
	if err := os.WriteFile(path, []byte("one\ntwo\nthree\nfour\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		n    int
		want string
	}{
		{"all lines", 0, "one\ntwo\nthree\nfour\n"},
		{"last two", 2, "three\nfour\n"},
		{"last one", 1, "four\n"},
		{"more than file", 10, "one\ntwo\nthree\nfour\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := TailLog(context.Background(), &buf, path, tt.n, false); err != nil {
				t.Fatal(err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}

	t.Run("no trailing newline", func(t *testing.T) {
		p := filepath.Join(dir, "partial.log")
		if err := os.WriteFile(p, []byte("a\nb\nc"), 0644); err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		if err := TailLog(context.Background(), &buf, p, 2, false); err != nil {
			t.Fatal(err)
		}
		if buf.String() != "b\nc" {
			t.Errorf("got %q", buf.String())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if err := TailLog(context.Background(), &bytes.Buffer{}, filepath.Join(dir, "nope.log"), 0, false); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("follow stops on cancel", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
		defer cancel()
		var buf bytes.Buffer
		if err := TailLog(ctx, &buf, path, 1, true); err != nil {
			t.Fatal(err)
		}
		if buf.String() != "four\n" {
			t.Errorf("got %q", buf.String())
		}
	})
}
