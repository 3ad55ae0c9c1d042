package commands

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/unveil/unveil/internal/build"
	"github.com/unveil/unveil/internal/style"
)

// BuildCommand implements the build command.
// It renders the presentation into public/ once, without live reload.
func BuildCommand(args []string) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	var dir string
	addDirFlag(fs, &dir)
	if err := fs.Parse(args); err != nil {
		return err
	}

	paths, _, err := openProject(dir)
	if err != nil {
		return err
	}

	sass := style.NewSass(style.SassOptions{Fallback: style.Passthrough})
	defer sass.Close()

	if _, err := build.New(paths, sass).Build(context.Background()); err != nil {
		return err
	}

	fmt.Printf("Presentation written to %s\n", paths.Output)
	return nil
}
