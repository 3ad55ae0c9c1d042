package commands

import (
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/unveil/unveil/internal/assets"
	"github.com/unveil/unveil/internal/build"
	"github.com/unveil/unveil/internal/config"
)

// DefaultProjectName is used by init when no name is given.
const DefaultProjectName = "unveil"

// InitCommand implements the init command.
// It scaffolds a project directory with example slides and a config file.
func InitCommand(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	var dir string
	addDirFlag(fs, &dir)
	if err := fs.Parse(args); err != nil {
		return err
	}

	name := DefaultProjectName
	if fs.NArg() > 0 {
		name = fs.Arg(0)
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("usage: unveil init [PROJECT_NAME]")
	}

	projectDir := name
	if !filepath.IsAbs(name) {
		projectDir = filepath.Join(dir, name)
	}
	if _, err := os.Stat(projectDir); err == nil {
		return fmt.Errorf("directory %s already exists", projectDir)
	}

	slidesDir := filepath.Join(projectDir, build.SlidesDir)
	if err := os.MkdirAll(slidesDir, 0755); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	landing, err := assets.GetLandingTemplate()
	if err != nil {
		return err
	}
	example, err := assets.GetSlideTemplate()
	if err != nil {
		return err
	}
	files := map[string][]byte{
		"landing.md": landing,
		"slide.md":   example,
	}
	for file, content := range files {
		if err := os.WriteFile(filepath.Join(slidesDir, file), content, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", file, err)
		}
	}

	cfg := config.DefaultConfig()
	cfg.Name = filepath.Base(projectDir)
	cfg.Slides = []string{"landing.md", "slide.md"}
	if err := cfg.Save(filepath.Join(projectDir, config.FileName)); err != nil {
		return err
	}

	if cfg.Gitignore {
		ignore := "/" + build.OutputDir + "/\n"
		if err := os.WriteFile(filepath.Join(projectDir, ".gitignore"), []byte(ignore), 0644); err != nil {
			return fmt.Errorf("failed to write .gitignore: %w", err)
		}
	}

	fmt.Printf("Created presentation %q in %s\n", cfg.Name, projectDir)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Printf("  cd %s\n", projectDir)
	fmt.Println("  unveil serve")
	return nil
}
