// Package build runs the slide build pipeline: read, render, transform,
// compile styles, assemble and write the output directory.
package build

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/unveil/unveil"
	"github.com/unveil/unveil/internal/assets"
	"github.com/unveil/unveil/internal/config"
	"github.com/unveil/unveil/internal/style"
)

// Project directory layout.
const (
	SlidesDir = "slides"
	OutputDir = "public"
)

// Paths locates the inputs and outputs of a project.
type Paths struct {
	Root   string // Project root
	Slides string // Slide directory
	Output string // Output directory
	Config string // Config file
}

// DefaultPaths returns the standard layout under root.
func DefaultPaths(root string) Paths {
	return Paths{
		Root:   root,
		Slides: filepath.Join(root, SlidesDir),
		Output: filepath.Join(root, OutputDir),
		Config: config.PathInDir(root),
	}
}

// BaseStyle returns the path of the user-editable stylesheet.
func (p Paths) BaseStyle() string {
	return filepath.Join(p.Output, unveil.BaseStyleFile)
}

// Page returns the path of the generated page.
func (p Paths) Page() string {
	return filepath.Join(p.Output, unveil.PageFile)
}

// Builder runs build attempts. A Builder is not safe for concurrent Build
// calls; the dev server serializes rebuilds.
type Builder struct {
	Paths Paths

	// Converter overrides the markdown converter. Nil selects goldmark,
	// with GFM following the config.
	Converter unveil.HTMLConverter

	// Compiler compiles style matter. Nil leaves it as written.
	Compiler style.Compiler

	// LiveReload adds the live-reload script, connecting to
	// SocketHost:SocketPort.
	LiveReload bool
	SocketHost string
	SocketPort int

	stage atomic.Int32
}

// New creates a Builder for paths.
func New(paths Paths, compiler style.Compiler) *Builder {
	return &Builder{Paths: paths, Compiler: compiler}
}

// Stage returns the stage of the running attempt, StageIdle between
// attempts.
func (b *Builder) Stage() unveil.Stage {
	return unveil.Stage(b.stage.Load())
}

func (b *Builder) enter(s unveil.Stage) {
	b.stage.Store(int32(s))
}

// Build runs one build attempt. On failure it returns a *unveil.BuildError
// and index.html is left as it was.
func (b *Builder) Build(ctx context.Context) (*unveil.Document, error) {
	start := time.Now()
	defer b.enter(unveil.StageIdle)

	doc, err := b.build(ctx)
	if err != nil {
		var be *unveil.BuildError
		if errors.As(err, &be) {
			log.Printf("[Build] Failed while %s: %v", be.Stage, be)
		} else {
			log.Printf("[Build] Failed: %v", err)
		}
		return nil, err
	}

	log.Printf("[Build] Built %d slides in %s", len(doc.Slides), time.Since(start).Round(time.Millisecond))
	return doc, nil
}

func (b *Builder) build(ctx context.Context) (*unveil.Document, error) {
	b.enter(unveil.StageReading)
	cfg, err := config.Load(b.Paths.Config)
	if err != nil {
		return nil, unveil.NewBuildError(unveil.StageReading, b.Paths.Config, err)
	}
	if err := cfg.ValidateBuild(); err != nil {
		return nil, unveil.NewBuildError(unveil.StageReading, b.Paths.Config, err)
	}

	raws := make([]string, 0, len(cfg.Slides))
	for _, name := range cfg.Slides {
		path := filepath.Join(b.Paths.Slides, filepath.FromSlash(name))
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, unveil.NewBuildError(unveil.StageReading, path, err)
		}
		raws = append(raws, string(data))
	}

	b.enter(unveil.StageRendering)
	conv := b.Converter
	if conv == nil {
		opts := []unveil.GoldmarkOption{unveil.WithGFM(cfg.Build.GFM)}
		if cfg.Build.ServerHighlighting() {
			opts = append(opts, unveil.WithHighlighting(cfg.Build.GetHighlightStyle()))
		}
		conv = unveil.NewGoldmarkConverter(opts...)
	}
	doc, err := unveil.NewRenderer(conv).Render(ctx, raws)
	if err != nil {
		return nil, unveil.NewBuildError(unveil.StageRendering, "", err)
	}

	b.enter(unveil.StageTransforming)
	doc.HTML, doc.Diagnostics = unveil.Transform(doc.HTML)
	for _, d := range doc.Diagnostics {
		log.Printf("[Build] Warning: %s", d)
	}

	if doc.StyleSource != "" {
		b.enter(unveil.StageStyleCompiling)
		css, err := b.compile(ctx, doc.StyleSource, cfg.Build.Minify)
		if err != nil {
			return nil, unveil.NewBuildError(unveil.StageStyleCompiling, "", err)
		}
		doc.CSS = css
	}

	doc.Page, err = unveil.AssemblePage(doc.HTML, unveil.PageOptions{
		Lang:       cfg.Language,
		UserCSS:    doc.HasUserCSS(),
		LiveReload: b.LiveReload,
	})
	if err != nil {
		return nil, unveil.NewBuildError(unveil.StageTransforming, "", err)
	}

	b.enter(unveil.StageWriting)
	if err := b.write(cfg, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (b *Builder) compile(ctx context.Context, src string, minify bool) (string, error) {
	c := b.Compiler
	if c == nil {
		c = style.Passthrough
	}
	if minify {
		c = style.Minified(c)
	}
	css, err := c.Compile(ctx, src)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(css) == "" {
		return "", nil
	}
	return css, nil
}

// write stores the artifacts. index.html goes last so an earlier failure
// leaves the previous page in place.
func (b *Builder) write(cfg *config.Config, doc *unveil.Document) error {
	out := b.Paths.Output
	if err := EnsureDir(out); err != nil {
		return unveil.NewBuildError(unveil.StageWriting, out, err)
	}

	framework, err := assets.Framework()
	if err != nil {
		return unveil.NewBuildError(unveil.StageWriting, "", err)
	}
	for _, a := range framework {
		path := filepath.Join(out, filepath.FromSlash(a.Name))
		data := a.Data
		if a.Name == unveil.HighlightCSS && cfg.Build.ServerHighlighting() {
			if data, err = style.HighlightCSS(cfg.Build.GetHighlightStyle()); err != nil {
				return unveil.NewBuildError(unveil.StageWriting, path, err)
			}
		}
		if err := ReplaceFile(path, data); err != nil {
			return unveil.NewBuildError(unveil.StageWriting, path, err)
		}
	}

	if b.LiveReload {
		path := filepath.Join(out, unveil.LiveReloadJS)
		js, err := assets.LiveReloadJS(b.SocketHost, b.SocketPort)
		if err == nil {
			err = ReplaceFile(path, js)
		}
		if err != nil {
			return unveil.NewBuildError(unveil.StageWriting, path, err)
		}
	}

	userCSS := filepath.Join(out, unveil.UserStyleFile)
	if doc.HasUserCSS() {
		err = ReplaceFile(userCSS, []byte(doc.CSS))
	} else {
		err = RemoveIfExists(userCSS)
	}
	if err != nil {
		return unveil.NewBuildError(unveil.StageWriting, userCSS, err)
	}

	if err := b.writeBaseStyle(cfg); err != nil {
		return err
	}

	if err := ReplaceFile(b.Paths.Page(), []byte(doc.Page)); err != nil {
		return unveil.NewBuildError(unveil.StageWriting, b.Paths.Page(), err)
	}
	return nil
}

// writeBaseStyle seeds unveil.css from the user theme or the bundled
// stylesheet. An existing file is never touched.
func (b *Builder) writeBaseStyle(cfg *config.Config) error {
	path := b.Paths.BaseStyle()
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	var seed []byte
	var err error
	if cfg.UserTheme != "" {
		theme := cfg.UserTheme
		if !filepath.IsAbs(theme) {
			theme = filepath.Join(b.Paths.Root, theme)
		}
		seed, err = os.ReadFile(theme)
		if err != nil {
			return unveil.NewBuildError(unveil.StageReading, theme, fmt.Errorf("user theme: %w", err))
		}
	} else {
		seed, err = assets.GetBaseCSS()
		if err != nil {
			return unveil.NewBuildError(unveil.StageWriting, path, err)
		}
	}

	written, err := WriteIfAbsent(path, seed)
	if err != nil {
		return unveil.NewBuildError(unveil.StageWriting, path, err)
	}
	if written {
		log.Printf("[Build] Created %s", path)
	}
	return nil
}
