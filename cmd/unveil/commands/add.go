package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"
)

// AddCommand implements the add command.
// It creates slides/<name>.md and appends it to the slide list.
func AddCommand(args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	var dir string
	addDirFlag(fs, &dir)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: unveil add SLIDE_NAME")
	}

	name := fs.Arg(0)
	if !strings.HasSuffix(name, ".md") {
		name += ".md"
	}

	paths, cfg, err := openProject(dir)
	if err != nil {
		return err
	}
	if err := cfg.AddSlide(name); err != nil {
		return err
	}

	slidePath := filepath.Join(paths.Slides, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(slidePath), 0755); err != nil {
		return fmt.Errorf("failed to create slide directory: %w", err)
	}
	title := strings.TrimSuffix(filepath.Base(name), ".md")
	f, err := os.OpenFile(slidePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("slide %s already exists", slidePath)
	}
	if err != nil {
		return fmt.Errorf("failed to create slide: %w", err)
	}
	_, err = fmt.Fprintf(f, "# %s\n", title)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write slide: %w", err)
	}

	if err := cfg.Save(paths.Config); err != nil {
		return err
	}

	fmt.Printf("Added %s (slide %d)\n", slidePath, len(cfg.Slides))
	return nil
}
