// Package commands implements the unveil subcommands.
package commands

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/unveil/unveil/internal/build"
	"github.com/unveil/unveil/internal/config"
)

func init() {
	log.SetFlags(0) // Remove timestamp from logs
}

// errNotProject is returned when the directory has no config file.
var errNotProject = errors.New("not an unveil project (no unveil.toml), run `unveil init` first")

// addDirFlag registers the project directory flag shared by all commands.
func addDirFlag(fs *flag.FlagSet, dir *string) {
	fs.StringVarP(dir, "dir", "C", ".", "project directory")
}

// openProject resolves the project layout and loads its configuration as
// written on disk.
func openProject(dir string) (build.Paths, *config.Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return build.Paths{}, nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	paths := build.DefaultPaths(absDir)
	if _, err := os.Stat(paths.Config); errors.Is(err, os.ErrNotExist) {
		return build.Paths{}, nil, errNotProject
	}

	cfg, err := config.Load(paths.Config)
	if err != nil {
		return build.Paths{}, nil, err
	}
	return paths, cfg, nil
}
