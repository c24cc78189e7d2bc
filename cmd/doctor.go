package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/nibzard/flash2do/internal/config"
	"github.com/nibzard/flash2do/internal/kv"
	"github.com/nibzard/flash2do/internal/logging"
	"github.com/nibzard/flash2do/internal/task"
)

// doctorCommand checks config, store reachability and the stored value.
func doctorCommand(ctx context.Context, cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("flash2do doctor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	cfg := cws.Config

	fmt.Fprintln(stdout, "Flash2do Doctor")
	fmt.Fprintln(stdout, "===============")
	fmt.Fprintln(stdout)

	allOK := true

	// Config files and sources
	fmt.Fprintln(stdout, "Config:")
	if len(cws.Files) == 0 {
		fmt.Fprintln(stdout, "  ✅ No config file (using defaults)")
	}
	for _, f := range cws.Files {
		fmt.Fprintf(stdout, "  ✅ Read %s\n", f)
	}
	for _, key := range cws.Unknown {
		fmt.Fprintf(stdout, "  ⚠️  Unknown key: %s\n", key)
	}
	values := configValues(cfg)
	for _, field := range cws.SortedSources() {
		source := cws.Sources[field]
		if source == config.SourceDefault && !*verbose {
			continue
		}
		fmt.Fprintf(stdout, "  %s = %s (%s)\n", field, values[field], source)
	}
	fmt.Fprintln(stdout)

	// Store
	fmt.Fprintf(stdout, "Store: %s backend", cfg.Backend)
	if cfg.Backend != kv.BackendMemory {
		fmt.Fprintf(stdout, " in %s", cfg.DataDir)
	}
	fmt.Fprintf(stdout, ", key %q\n", cfg.StorageKey)
	if !storeCheck(ctx, cfg) {
		allOK = false
	}
	fmt.Fprintln(stdout)

	// Logs
	fmt.Fprintf(stdout, "Log directory: %s\n", cfg.LogDir)
	logDir, err := logging.FindLogDir(cfg.LogDir, cfg.DataDir)
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
		allOK = false
	} else if runs, err := logging.FindLogRuns(logDir); err != nil {
		fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
		allOK = false
	} else if len(runs) == 0 {
		fmt.Fprintln(stdout, "  ⚠️  No run logs yet (created when the TUI starts)")
	} else {
		fmt.Fprintf(stdout, "  ✅ %d run log(s), latest %s\n", len(runs), runs[0].Path)
	}
	fmt.Fprintln(stdout)

	if allOK {
		fmt.Fprintln(stdout, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(stdout, "⚠️  Some checks failed. Tasks may not load or save correctly.")
	return fmt.Errorf("doctor checks failed")
}

// storeCheck opens the backend, reads the task value and validates it.
func storeCheck(ctx context.Context, cfg *config.Config) bool {
	backend, err := kv.Open(cfg.Backend, cfg.DataDir)
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ Open failed: %v\n", err)
		return false
	}
	defer backend.Close()
	fmt.Fprintln(stdout, "  ✅ Reachable")

	store := task.NewStore(backend, cfg.StorageKey, cliLogger(cfg))
	raw, ok, err := store.Raw(ctx)
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ Read failed: %v\n", err)
		return false
	}
	if !ok {
		fmt.Fprintln(stdout, "  ✅ No saved tasks yet")
		return true
	}

	result := task.Validate([]byte(raw))
	for _, w := range result.Warnings {
		fmt.Fprintf(stdout, "  ⚠️  %s\n", w)
	}
	if !result.Valid {
		for _, e := range result.Errors {
			fmt.Fprintf(stdout, "  ❌ %v\n", e)
		}
		fmt.Fprintln(stdout, "  ⚠️  The app will start with an empty list and overwrite this value on the next change.")
		return false
	}
	tasks, _ := task.Decode([]byte(raw))
	fmt.Fprintf(stdout, "  ✅ %d task(s), schema valid\n", len(tasks))
	return true
}

// configValues renders each config field for display.
func configValues(cfg *config.Config) map[string]string {
	return map[string]string{
		"data_dir":         cfg.DataDir,
		"backend":          cfg.Backend,
		"storage_key":      strconv.Quote(cfg.StorageKey),
		"save_debounce_ms": strconv.Itoa(cfg.SaveDebounceMS),
		"tick_ms":          strconv.Itoa(cfg.TickMS),
		"urgent_minutes":   strconv.Itoa(cfg.UrgentMinutes),
		"theme":            cfg.Theme,
		"log_dir":          cfg.LogDir,
		"log_level":        cfg.LogLevel,
		"log_format":       cfg.LogFormat,
		"log_timestamps":   strconv.FormatBool(cfg.LogTimestamps),
		"log_caller":       strconv.FormatBool(cfg.LogCaller),
	}
}

// fileExists reports whether path names an existing regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
