// Package ui provides the interactive task screen.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nibzard/flash2do/internal/config"
	"github.com/nibzard/flash2do/internal/task"
)

// TUIOption configures the TUI behavior.
type TUIOption func(*settings)

// settings holds the resolved TUI configuration.
type settings struct {
	debounce time.Duration
	tick     time.Duration
	urgent   time.Duration
	dark     bool
	loc      *time.Location
	now      func() time.Time
	newID    func() string
	logger   *log.Logger
}

func defaultSettings() settings {
	return settings{
		debounce: config.DefaultSaveDebounceMS * time.Millisecond,
		tick:     config.DefaultTickMS * time.Millisecond,
		urgent:   config.DefaultUrgentMinutes * time.Minute,
		dark:     true,
		loc:      time.Local,
		now:      time.Now,
		logger:   log.New(io.Discard),
	}
}

func (s settings) collectionOptions() []task.Option {
	if s.newID == nil {
		return nil
	}
	return []task.Option{task.WithIDFunc(s.newID)}
}

// WithLogger sets the logger. The TUI owns the terminal, so it should not
// write to stdout or stderr.
func WithLogger(l *log.Logger) TUIOption {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for countdowns.
func WithClock(now func() time.Time) TUIOption {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the zone the editor reads and writes deadlines in.
func WithLocation(loc *time.Location) TUIOption {
	return func(s *settings) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithIDFunc overrides task id generation.
func WithIDFunc(fn func() string) TUIOption {
	return func(s *settings) {
		s.newID = fn
	}
}

// WithDarkTheme forces the dark or light palette.
func WithDarkTheme(dark bool) TUIOption {
	return func(s *settings) {
		s.dark = dark
	}
}

func settingsFromConfig(cfg *config.Config) settings {
	s := defaultSettings()
	if cfg == nil {
		return s
	}
	s.debounce = cfg.SaveDebounce()
	s.tick = cfg.TickInterval()
	s.urgent = cfg.UrgentWindow()
	s.dark = resolveDark(cfg.Theme)
	return s
}

// RunTUI runs the task screen until the user quits or ctx is done. A save
// still pending at exit is written before returning.
func RunTUI(ctx context.Context, cfg *config.Config, store *task.Store, opts ...TUIOption) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	set := settingsFromConfig(cfg)
	for _, opt := range opts {
		opt(&set)
	}

	m := newModel(ctx, store, set)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, runErr := program.Run()

	final, ok := finalModel.(*model)
	if !ok {
		final = m
	}
	// The program context may already be cancelled; the flush must still land.
	if err := final.Flush(context.WithoutCancel(ctx)); err != nil {
		set.logger.Error("final save failed", "err", err)
		if runErr == nil {
			return fmt.Errorf("saving tasks: %w", err)
		}
	}
	if runErr != nil && ctx.Err() == nil {
		return runErr
	}
	return nil
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
