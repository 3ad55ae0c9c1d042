// Package style compiles the slide-scoped stylesheet source into CSS.
package style

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/bep/godartsass/v2"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
)

// Compiler compiles stylesheet source (SCSS with nested rules) to CSS.
type Compiler interface {
	Compile(ctx context.Context, source string) (string, error)
}

// ErrSassUnavailable is returned when the Dart Sass process cannot be
// started, e.g. because the executable is missing.
var ErrSassUnavailable = errors.New("dart sass unavailable")

// DefaultSassBinary is looked up in $PATH when SassOptions.Binary is empty.
const DefaultSassBinary = "sass"

// SassOptions configures the Dart Sass compiler.
type SassOptions struct {
	Binary  string        // Dart Sass executable, DefaultSassBinary when empty
	Timeout time.Duration // Per compilation, 30s when zero
	Style   godartsass.OutputStyle

	// Fallback compiles when Dart Sass cannot be started. Nil makes that
	// a compile error.
	Fallback Compiler
}

// Sass compiles SCSS through an embedded Dart Sass process. The process is
// started on first use and reused until Close.
type Sass struct {
	opts SassOptions

	mu sync.Mutex
	t  *godartsass.Transpiler

	warnOnce sync.Once
}

// NewSass creates a Sass compiler. No process is started yet.
func NewSass(opts SassOptions) *Sass {
	if opts.Binary == "" {
		opts.Binary = DefaultSassBinary
	}
	if opts.Style == "" {
		opts.Style = godartsass.OutputStyleExpanded
	}
	return &Sass{opts: opts}
}

func (s *Sass) transpiler() (*godartsass.Transpiler, error) {
	if s.t != nil && !s.t.IsShutDown() {
		return s.t, nil
	}
	if _, err := exec.LookPath(s.opts.Binary); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSassUnavailable, err)
	}
	t, err := godartsass.Start(godartsass.Options{
		DartSassEmbeddedFilename: s.opts.Binary,
		Timeout:                  s.opts.Timeout,
		LogEventHandler: func(e godartsass.LogEvent) {
			log.Printf("[Style] %s", e.Message)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSassUnavailable, err)
	}
	s.t = t
	return t, nil
}

// Compile compiles SCSS source to CSS.
func (s *Sass) Compile(ctx context.Context, source string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.transpiler()
	if errors.Is(err, ErrSassUnavailable) && s.opts.Fallback != nil {
		s.warnOnce.Do(func() {
			log.Printf("[Style] %v, slide styles are written without compiling", err)
		})
		return s.opts.Fallback.Compile(ctx, source)
	}
	if err != nil {
		return "", err
	}
	res, err := t.Execute(godartsass.Args{
		Source:       source,
		SourceSyntax: godartsass.SourceSyntaxSCSS,
		OutputStyle:  s.opts.Style,
	})
	if err != nil {
		var serr godartsass.SassError
		if errors.As(err, &serr) {
			return "", fmt.Errorf("scss: %s", serr.Message)
		}
		return "", err
	}
	return res.CSS, nil
}

// Close stops the Dart Sass process, if running.
func (s *Sass) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.t == nil {
		return nil
	}
	err := s.t.Close()
	s.t = nil
	return err
}

// MinifyCSS minifies a stylesheet.
func MinifyCSS(src string) (string, error) {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	out, err := m.String("text/css", src)
	if err != nil {
		return "", fmt.Errorf("minify css: %w", err)
	}
	return out, nil
}

type minifying struct {
	next Compiler
}

// Minified wraps c so that its output is minified.
func Minified(c Compiler) Compiler {
	return minifying{next: c}
}

func (m minifying) Compile(ctx context.Context, source string) (string, error) {
	out, err := m.next.Compile(ctx, source)
	if err != nil {
		return "", err
	}
	return MinifyCSS(out)
}

// Func adapts a plain function to the Compiler interface.
type Func func(ctx context.Context, source string) (string, error)

// Compile calls f.
func (f Func) Compile(ctx context.Context, source string) (string, error) {
	return f(ctx, source)
}

// emptyRuleRe matches a rule whose block holds nothing but whitespace.
var emptyRuleRe = regexp.MustCompile(`[^{};]*\{\s*\}`)

// Passthrough returns the source without empty rules and with surrounding
// whitespace trimmed. Nested slide rules are left for the browser's CSS
// nesting support.
var Passthrough Compiler = Func(func(_ context.Context, source string) (string, error) {
	for {
		out := emptyRuleRe.ReplaceAllString(source, "")
		if out == source {
			break
		}
		source = out
	}
	return strings.TrimSpace(source), nil
})
