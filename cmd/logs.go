package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/nibzard/flash2do/internal/config"
	"github.com/nibzard/flash2do/internal/logging"
)

// logsCommand prints the latest run log, or lists the runs.
func logsCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("flash2do logs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	list := fs.Bool("list", false, "List run logs instead of printing one")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	logDir, err := logging.FindLogDir(cfg.LogDir, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}

	if *list {
		runs, err := logging.FindLogRuns(logDir)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(stdout, "No log files found.")
			return nil
		}
		for _, r := range runs {
			fmt.Fprintf(stdout, "%s  %s  %d bytes\n", r.RunID, r.ModTime.Format("2006-01-02 15:04:05"), r.Size)
		}
		return nil
	}

	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(stdout, "No log files found.")
		return nil
	}

	fmt.Fprintf(stderr, "Tailing: %s\n", logPath)
	if *follow {
		fmt.Fprintln(stderr, "(Ctrl+C to stop)")
	}
	return logging.TailLog(ctx, stdout, logPath, *n, *follow)
}
