package commands

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
)

// CleanCommand implements the clean command.
// It removes the generated public/ directory.
func CleanCommand(args []string) error {
	fs := flag.NewFlagSet("clean", flag.ContinueOnError)
	var dir string
	addDirFlag(fs, &dir)
	if err := fs.Parse(args); err != nil {
		return err
	}

	paths, _, err := openProject(dir)
	if err != nil {
		return err
	}

	if err := os.RemoveAll(paths.Output); err != nil {
		return fmt.Errorf("failed to remove %s: %w", paths.Output, err)
	}
	fmt.Printf("Removed %s\n", paths.Output)
	return nil
}
