package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unveil/unveil/internal/build"
	"github.com/unveil/unveil/internal/config"
	"github.com/unveil/unveil/internal/style"
)

// initProject scaffolds a project named deck under a temp dir.
func initProject(t *testing.T) string {
	t.Helper()
	parent := t.TempDir()
	require.NoError(t, InitCommand([]string{"--dir", parent, "deck"}))
	return filepath.Join(parent, "deck")
}

func TestInitCommand(t *testing.T) {
	dir := initProject(t)

	for _, f := range []string{"slides/landing.md", "slides/slide.md", "unveil.toml", ".gitignore"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "expected %s to exist", f)
	}

	cfg, err := config.LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "deck", cfg.Name)
	assert.Equal(t, []string{"landing.md", "slide.md"}, cfg.Slides)
	assert.NoError(t, cfg.Validate())

	ignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(ignore), "/public/")
}

func TestInitCommandDefaultName(t *testing.T) {
	parent := t.TempDir()
	require.NoError(t, InitCommand([]string{"-C", parent}))

	_, err := os.Stat(filepath.Join(parent, DefaultProjectName, config.FileName))
	assert.NoError(t, err)
}

func TestInitCommandExistingDir(t *testing.T) {
	parent := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(parent, "deck"), 0755))

	err := InitCommand([]string{"--dir", parent, "deck"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInitCommandAbsoluteName(t *testing.T) {
	target := filepath.Join(t.TempDir(), "talks", "deck")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0755))
	cwd := t.TempDir()

	require.NoError(t, InitCommand([]string{"--dir", cwd, target}))

	_, err := os.Stat(filepath.Join(target, config.FileName))
	assert.NoError(t, err)
	entries, err := os.ReadDir(cwd)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing may be created under --dir")

	cfg, err := config.LoadFromDir(target)
	require.NoError(t, err)
	assert.Equal(t, "deck", cfg.Name)
}

func TestInitCommandUsage(t *testing.T) {
	err := InitCommand([]string{"--dir", t.TempDir(), "a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage:")
}

func TestAddCommand(t *testing.T) {
	dir := initProject(t)

	tests := []struct {
		name string
		arg  string
		file string
	}{
		{"appends extension", "intro", "intro.md"},
		{"keeps extension", "outro.md", "outro.md"},
		{"nested", "part/one", "part/one.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, AddCommand([]string{"--dir", dir, tt.arg}))

			data, err := os.ReadFile(filepath.Join(dir, "slides", filepath.FromSlash(tt.file)))
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(data), "# "))

			cfg, err := config.LoadFromDir(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.file, cfg.Slides[len(cfg.Slides)-1])
		})
	}
}

func TestAddCommandErrors(t *testing.T) {
	dir := initProject(t)

	t.Run("duplicate in config", func(t *testing.T) {
		err := AddCommand([]string{"--dir", dir, "landing"})
		assert.True(t, errors.Is(err, config.ErrDuplicateSlide), "got %v", err)
	})

	t.Run("file already exists", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "slides", "stray.md"), []byte("keep"), 0644))

		err := AddCommand([]string{"--dir", dir, "stray"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")

		data, err := os.ReadFile(filepath.Join(dir, "slides", "stray.md"))
		require.NoError(t, err)
		assert.Equal(t, "keep", string(data))

		cfg, err := config.LoadFromDir(dir)
		require.NoError(t, err)
		assert.NotContains(t, cfg.Slides, "stray.md")
	})

	t.Run("escaping name", func(t *testing.T) {
		assert.Error(t, AddCommand([]string{"--dir", dir, "../outside"}))
	})

	t.Run("missing name", func(t *testing.T) {
		err := AddCommand([]string{"--dir", dir})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "usage:")
	})

	t.Run("not a project", func(t *testing.T) {
		err := AddCommand([]string{"--dir", t.TempDir(), "intro"})
		assert.ErrorIs(t, err, errNotProject)
	})
}

func TestBuildCommand(t *testing.T) {
	dir := initProject(t)

	// Only the unstyled slide so no sass binary is needed.
	cfg, err := config.LoadFromDir(dir)
	require.NoError(t, err)
	cfg.Slides = []string{"landing.md"}
	require.NoError(t, cfg.Save(filepath.Join(dir, config.FileName)))

	require.NoError(t, BuildCommand([]string{"--dir", dir}))

	page, err := os.ReadFile(filepath.Join(dir, "public", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), `<section id="unveil-slide-0">`)
	assert.NotContains(t, string(page), "livereload.js")

	_, err = os.Stat(filepath.Join(dir, "public", "livereload.js"))
	assert.True(t, os.IsNotExist(err))
}

func TestInitThenBuild(t *testing.T) {
	dir := initProject(t)

	// The scaffold carries style matter; it builds with or without sass.
	require.NoError(t, BuildCommand([]string{"--dir", dir}))

	page, err := os.ReadFile(filepath.Join(dir, "public", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), `<section id="unveil-slide-1">`)
	assert.Contains(t, string(page), `href="user_css.css"`)

	css, err := os.ReadFile(filepath.Join(dir, "public", "user_css.css"))
	require.NoError(t, err)
	assert.Contains(t, string(css), "#unveil-slide-1")
	assert.Contains(t, string(css), "#c0392b")
}

func TestBuildCommandMissingSlide(t *testing.T) {
	dir := initProject(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "slides", "landing.md")))

	err := BuildCommand([]string{"--dir", dir})
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "public", "index.html"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCleanCommand(t *testing.T) {
	dir := initProject(t)
	public := filepath.Join(dir, "public")
	require.NoError(t, os.MkdirAll(filepath.Join(public, "fontawesome"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(public, "index.html"), []byte("x"), 0644))

	require.NoError(t, CleanCommand([]string{"--dir", dir}))
	_, err := os.Stat(public)
	assert.True(t, os.IsNotExist(err))

	// Nothing to remove is fine.
	assert.NoError(t, CleanCommand([]string{"--dir", dir}))
}

func TestServeFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantHost string
		wantHTTP int
		wantWS   int
		wantOpen bool
	}{
		{
			name:     "defaults from config",
			wantHost: "localhost",
			wantHTTP: 7878,
			wantWS:   3000,
			wantOpen: true,
		},
		{
			name:     "long flags",
			args:     []string{"--hostname", "0.0.0.0", "--http-port", "8080", "--ws-port", "8081", "--no-open"},
			wantHost: "0.0.0.0",
			wantHTTP: 8080,
			wantWS:   8081,
		},
		{
			name:     "short flags",
			args:     []string{"-H", "example.test", "-p", "9000", "-w", "9001"},
			wantHost: "example.test",
			wantHTTP: 9000,
			wantWS:   9001,
			wantOpen: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, fs, err := parseServeFlags(tt.args)
			require.NoError(t, err)

			cfg := config.DefaultConfig()
			f.apply(fs, cfg)
			assert.Equal(t, tt.wantHost, cfg.Server.Hostname)
			assert.Equal(t, tt.wantHTTP, cfg.Server.HTTPPort)
			assert.Equal(t, tt.wantWS, cfg.Server.WSPort)
			assert.Equal(t, tt.wantOpen, cfg.Server.OpenBrowser)
		})
	}
}

func TestServeCommandRejectsSamePorts(t *testing.T) {
	dir := initProject(t)
	err := ServeCommand([]string{"--dir", dir, "-p", "4000", "-w", "4000", "--no-open"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}

func TestServeConfigPrecedence(t *testing.T) {
	dir := initProject(t)
	dotenv := "UNVEIL_HTTP_PORT=9100\nUNVEIL_HOSTNAME=from-dotenv\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0644))
	t.Setenv(config.EnvWSPort, "9101")
	// Registered for cleanup, then unset so .env can supply them.
	t.Setenv(config.EnvHTTPPort, "")
	t.Setenv(config.EnvHostname, "")
	require.NoError(t, os.Unsetenv(config.EnvHTTPPort))
	require.NoError(t, os.Unsetenv(config.EnvHostname))

	f, fs, err := parseServeFlags([]string{"--dir", dir, "--hostname", "from-flag"})
	require.NoError(t, err)

	_, cfg, err := serveConfig(f, fs)
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Server.Hostname)
	assert.Equal(t, 9100, cfg.Server.HTTPPort)
	assert.Equal(t, 9101, cfg.Server.WSPort)
}

func TestServeConfigFlagFixesPorts(t *testing.T) {
	dir := initProject(t)
	cfg, err := config.LoadFromDir(dir)
	require.NoError(t, err)
	cfg.Server.HTTPPort, cfg.Server.WSPort = 4100, 4100
	require.NoError(t, cfg.Save(filepath.Join(dir, config.FileName)))

	f, fs, err := parseServeFlags([]string{"--dir", dir, "-w", "4101"})
	require.NoError(t, err)
	paths, merged, err := serveConfig(f, fs)
	require.NoError(t, err)
	assert.Equal(t, 4101, merged.Server.WSPort)

	// Builds read the file again and must not trip over its ports.
	_, err = build.New(paths, style.Passthrough).Build(context.Background())
	assert.NoError(t, err)
}

func TestAddCommandIgnoresEnvironment(t *testing.T) {
	dir := initProject(t)
	t.Setenv(config.EnvHTTPPort, "9200")

	require.NoError(t, AddCommand([]string{"--dir", dir, "intro"}))

	cfg, err := config.LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 7878, cfg.Server.HTTPPort)
}
