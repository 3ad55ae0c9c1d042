package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// File names recognised by LoadFromDir, in lookup order.
const (
	FileName     = "unveil.toml"
	YAMLFileName = "unveil.yaml"
)

var (
	// ErrNoSlides is returned by Validate when the slide list is empty.
	ErrNoSlides = errors.New("no slides configured")
	// ErrDuplicateSlide is returned when a slide is listed twice.
	ErrDuplicateSlide = errors.New("slide already listed")
)

// Config represents the unveil project configuration
type Config struct {
	Name      string       `toml:"name" yaml:"name"`
	Language  string       `toml:"language" yaml:"language"` // html[lang] of the generated page
	Slides    []string     `toml:"slides" yaml:"slides"`     // Slide files under slides/, in presentation order
	UserTheme string       `toml:"user_theme,omitempty" yaml:"user_theme,omitempty"`
	Gitignore bool         `toml:"gitignore" yaml:"gitignore"`
	Server    ServerConfig `toml:"server" yaml:"server"`
	Build     BuildConfig  `toml:"build" yaml:"build"`
}

// ServerConfig holds dev server configuration
type ServerConfig struct {
	Hostname    string `toml:"hostname" yaml:"hostname"`
	HTTPPort    int    `toml:"http_port" yaml:"http_port"`
	WSPort      int    `toml:"ws_port" yaml:"ws_port"`
	OpenBrowser bool   `toml:"open_browser" yaml:"open_browser"`
}

// BuildConfig holds build pipeline options
type BuildConfig struct {
	Minify   bool   `toml:"minify" yaml:"minify"`     // Minify compiled slide styles
	GFM      bool   `toml:"gfm" yaml:"gfm"`           // Enable GitHub Flavored Markdown extensions
	Debounce string `toml:"debounce" yaml:"debounce"` // Watcher quiescence window (e.g. "50ms")

	// Highlight selects where code blocks are highlighted: "client"
	// (highlight.js in the browser, default) or "server" (chroma at build).
	Highlight      string `toml:"highlight,omitempty" yaml:"highlight,omitempty"`
	HighlightStyle string `toml:"highlight_style,omitempty" yaml:"highlight_style,omitempty"` // chroma style name
}

// Highlight modes.
const (
	HighlightClient = "client"
	HighlightServer = "server"
)

// DefaultHighlightStyle is the chroma style used when none is configured.
const DefaultHighlightStyle = "github"

// ServerHighlighting reports whether code blocks are highlighted at build time.
func (b BuildConfig) ServerHighlighting() bool {
	return b.Highlight == HighlightServer
}

// GetHighlightStyle returns the chroma style name (default: github)
func (b BuildConfig) GetHighlightStyle() string {
	if b.HighlightStyle == "" {
		return DefaultHighlightStyle
	}
	return b.HighlightStyle
}

// DefaultDebounce is the watcher quiescence window used when none is configured.
const DefaultDebounce = 50 * time.Millisecond

// GetDebounce returns the parsed debounce window (default: 50ms)
func (b BuildConfig) GetDebounce() time.Duration {
	if b.Debounce == "" {
		return DefaultDebounce
	}
	d, err := time.ParseDuration(b.Debounce)
	if err != nil || d <= 0 {
		return DefaultDebounce
	}
	return d
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Name:      "unveil",
		Language:  "EN",
		Slides:    []string{"landing.md"},
		Gitignore: true,
		Server: ServerConfig{
			Hostname:    "localhost",
			HTTPPort:    7878,
			WSPort:      3000,
			OpenBrowser: true,
		},
		Build: BuildConfig{
			Debounce: DefaultDebounce.String(),
		},
	}
}

// Load loads configuration from a TOML or YAML file, picked by extension.
// If the file doesn't exist, returns the default configuration
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	config := DefaultConfig()
	if isYAML(configPath) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = toml.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	return config, nil
}

// LoadFromDir looks for unveil.toml, then unveil.yaml in the given directory.
// If none is found, returns the default configuration
func LoadFromDir(dir string) (*Config, error) {
	return Load(PathInDir(dir))
}

// PathInDir returns the config file used for dir: the first existing
// candidate, or unveil.toml when there is none.
func PathInDir(dir string) string {
	for _, name := range []string{FileName, YAMLFileName} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(dir, FileName)
}

// Save writes the configuration to a TOML or YAML file, picked by extension.
func (c *Config) Save(configPath string) error {
	var data []byte
	var err error
	if isYAML(configPath) {
		data, err = yaml.Marshal(c)
	} else {
		var sb strings.Builder
		err = toml.NewEncoder(&sb).Encode(c)
		data = []byte(sb.String())
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the whole configuration, server ports included.
func (c *Config) Validate() error {
	if err := c.ValidateBuild(); err != nil {
		return err
	}

	if !validPort(c.Server.HTTPPort) {
		return fmt.Errorf("server: invalid http_port %d", c.Server.HTTPPort)
	}
	if !validPort(c.Server.WSPort) {
		return fmt.Errorf("server: invalid ws_port %d", c.Server.WSPort)
	}
	if c.Server.HTTPPort == c.Server.WSPort {
		return fmt.Errorf("server: http_port and ws_port must differ (both %d)", c.Server.HTTPPort)
	}

	return nil
}

// ValidateBuild checks what a build reads: the slide list and the [build]
// section. Server settings may still be overridden by the caller.
func (c *Config) ValidateBuild() error {
	if len(c.Slides) == 0 {
		return ErrNoSlides
	}

	seen := make(map[string]bool, len(c.Slides))
	for _, s := range c.Slides {
		if err := validateSlideName(s); err != nil {
			return err
		}
		if seen[s] {
			return fmt.Errorf("%w: %s", ErrDuplicateSlide, s)
		}
		seen[s] = true
	}

	switch c.Build.Highlight {
	case "", HighlightClient, HighlightServer:
	default:
		return fmt.Errorf("build: unknown highlight mode %q (want %q or %q)", c.Build.Highlight, HighlightClient, HighlightServer)
	}

	return nil
}

// AddSlide appends a slide to the list. Duplicates are refused.
func (c *Config) AddSlide(name string) error {
	if err := validateSlideName(name); err != nil {
		return err
	}
	for _, s := range c.Slides {
		if s == name {
			return fmt.Errorf("%w: %s", ErrDuplicateSlide, name)
		}
	}
	c.Slides = append(c.Slides, name)
	return nil
}

func validateSlideName(name string) error {
	if name == "" {
		return errors.New("slides: empty slide name")
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("slides: %q escapes the slide directory", name)
	}
	return nil
}

func validPort(p int) bool {
	return p > 0 && p <= 65535
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
