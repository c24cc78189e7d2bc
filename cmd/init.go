package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nibzard/flash2do/internal/config"
	"github.com/nibzard/flash2do/internal/datadir"
)

// initCommand writes the example config to the user config path, or to
// ./flash2do.toml with -project. Existing files are left alone.
func initCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("flash2do init", flag.ContinueOnError)
	fs.SetOutput(stderr)
	project := fs.Bool("project", false, "Write "+datadir.ConfigFile+" in the current directory")
	force := fs.Bool("force", false, "Overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	var path string
	if *project {
		root := cfg.ProjectRoot
		if root == "" {
			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting working directory: %w", err)
			}
			root = wd
		}
		path = filepath.Join(root, datadir.ConfigFile)
	} else {
		p, err := config.UserConfigPath()
		if err != nil {
			return fmt.Errorf("finding user config path: %w", err)
		}
		path = p
	}

	if fileExists(path) && !*force {
		fmt.Fprintf(stdout, "Skipped %s (already exists)\n", path)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(config.ExampleConfig()), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(stdout, "Wrote %s\n", path)
	return nil
}
