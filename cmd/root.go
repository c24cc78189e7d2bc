// Package cmd provides CLI command handlers.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/flash2do/internal/config"
	"github.com/nibzard/flash2do/internal/datadir"
	"github.com/nibzard/flash2do/internal/kv"
	"github.com/nibzard/flash2do/internal/logging"
	"github.com/nibzard/flash2do/internal/task"
	"github.com/nibzard/flash2do/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// ErrNotFound is returned when an id or id prefix matches no task.
var ErrNotFound = errors.New("task not found")

// Command output. Tests swap these for buffers.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Run is the main entry point for the CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet(datadir.AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// No args or a leading flag means the interactive screen.
	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "add":
		return addCommand(ctx, cfg, remainingArgs)
	case "ls", "list":
		return lsCommand(ctx, cfg, remainingArgs)
	case "rm", "remove":
		return rmCommand(ctx, cfg, remainingArgs)
	case "edit":
		return editCommand(ctx, cfg, remainingArgs)
	case "export":
		return exportCommand(ctx, cfg, remainingArgs)
	case "doctor":
		return doctorCommand(ctx, cws, remainingArgs)
	case "logs", "tail":
		return logsCommand(ctx, cfg, remainingArgs)
	case "init":
		return initCommand(cfg, remainingArgs)
	case "version", "--version", "-v":
		return versionCommand()
	case "help", "--help", "-h":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// tuiCommand launches the interactive screen. Its logger writes to a
// per-run file because the screen owns the terminal.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("flash2do tui", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if !ui.IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY (use ls, add, rm or edit instead)")
	}

	runLog, err := logging.NewRunLogger(cfg.LogDir, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("creating run log: %w", err)
	}
	defer runLog.Close()
	logger := runLog.Logger(logOptions(cfg))
	logger.Info("Starting", "version", Version, "backend", cfg.Backend, "data_dir", cfg.DataDir, "key", cfg.StorageKey)

	store, backend, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("Opening store failed", "err", err)
		return err
	}
	defer backend.Close()

	if err := ui.RunTUI(ctx, cfg, store, ui.WithLogger(logger)); err != nil {
		logger.Error("TUI exited with error", "err", err)
		return err
	}
	logger.Info("Exited")
	return nil
}

func logOptions(cfg *config.Config) logging.Options {
	return logging.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		Timestamps: cfg.LogTimestamps,
		Caller:     cfg.LogCaller,
	}
}

// cliLogger returns the logger used by non-interactive commands.
func cliLogger(cfg *config.Config) *log.Logger {
	return logging.New(stderr, logOptions(cfg))
}

// openStore opens the configured backend. The caller closes the KV.
func openStore(cfg *config.Config, logger *log.Logger) (*task.Store, kv.KV, error) {
	backend, err := kv.Open(cfg.Backend, cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s store: %w", cfg.Backend, err)
	}
	return task.NewStore(backend, cfg.StorageKey, logger), backend, nil
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Fprintf(stdout, "flash2do version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "flash2do - a to-do list with live deadline countdowns")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  flash2do [options] [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui                 Interactive task screen (default command)")
	fmt.Fprintln(w, "  add <text...>       Add a task")
	fmt.Fprintln(w, "  ls [-json]          List tasks with countdowns")
	fmt.Fprintln(w, "  rm <id>...          Remove tasks by id or unique id prefix")
	fmt.Fprintln(w, "  edit <id> [opts]    Change a task's text or deadline")
	fmt.Fprintln(w, "  export [opts]       Write all tasks as JSON or YAML")
	fmt.Fprintln(w, "  doctor              Check config, store and stored data")
	fmt.Fprintln(w, "  logs [-n N] [-f]    Show the latest run log")
	fmt.Fprintln(w, "  init [-project]     Write an example config file")
	fmt.Fprintln(w, "  version             Show version information")
	fmt.Fprintln(w, "  help                Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Edit Options:")
	fmt.Fprintln(w, "  -text string")
	fmt.Fprintln(w, "        New task text")
	fmt.Fprintln(w, "  -deadline string")
	fmt.Fprintln(w, "        Deadline as \"YYYY-MM-DD HH:MM\" in local time")
	fmt.Fprintln(w, "  -clear-deadline")
	fmt.Fprintln(w, "        Remove the deadline")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export Options:")
	fmt.Fprintln(w, "  -format string")
	fmt.Fprintln(w, "        Output format (json|yaml) (default \"json\")")
	fmt.Fprintln(w, "  -o string")
	fmt.Fprintln(w, "        Output file (default stdout)")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Environment variables use the %s prefix, e.g. %sBACKEND=sqlite.\n", config.EnvPrefix, config.EnvPrefix)
}
