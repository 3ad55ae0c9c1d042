package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/unveil/unveil/internal/build"
	"github.com/unveil/unveil/internal/cache"
	"github.com/unveil/unveil/internal/config"
	"github.com/unveil/unveil/internal/server"
	"github.com/unveil/unveil/internal/style"
)

// Compiled slide styles are reused for a bounded time and count.
const (
	compileCacheSize = 16
	compileTTL       = time.Hour
)

type serveFlags struct {
	dir      string
	hostname string
	httpPort int
	wsPort   int
	noOpen   bool
	debug    bool
}

func parseServeFlags(args []string) (*serveFlags, *flag.FlagSet, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	f := &serveFlags{}
	addDirFlag(fs, &f.dir)
	fs.StringVarP(&f.hostname, "hostname", "H", "", "hostname to serve on (default localhost)")
	fs.IntVarP(&f.httpPort, "http-port", "p", 0, "http port to serve on (default 7878)")
	fs.IntVarP(&f.wsPort, "ws-port", "w", 0, "web socket port used for live reload (default 3000)")
	fs.BoolVar(&f.noOpen, "no-open", false, "do not open a browser")
	fs.BoolVar(&f.debug, "debug", false, "log every watched change")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs, nil
}

// apply overrides cfg with the flags that were set explicitly.
func (f *serveFlags) apply(fs *flag.FlagSet, cfg *config.Config) {
	if fs.Changed("hostname") {
		cfg.Server.Hostname = f.hostname
	}
	if fs.Changed("http-port") {
		cfg.Server.HTTPPort = f.httpPort
	}
	if fs.Changed("ws-port") {
		cfg.Server.WSPort = f.wsPort
	}
	if f.noOpen {
		cfg.Server.OpenBrowser = false
	}
}

// serveConfig loads the project config and layers .env, the environment
// and explicit flags over it, in that order of precedence.
func serveConfig(f *serveFlags, fs *flag.FlagSet) (build.Paths, *config.Config, error) {
	paths, cfg, err := openProject(f.dir)
	if err != nil {
		return build.Paths{}, nil, err
	}
	if err := config.LoadEnv(paths.Root); err != nil {
		return build.Paths{}, nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return build.Paths{}, nil, err
	}
	f.apply(fs, cfg)
	if err := cfg.Validate(); err != nil {
		return build.Paths{}, nil, err
	}
	return paths, cfg, nil
}

// ServeCommand implements the serve command.
// It builds the presentation, serves public/ and rebuilds on change until
// interrupted.
func ServeCommand(args []string) error {
	f, fs, err := parseServeFlags(args)
	if err != nil {
		return err
	}

	paths, cfg, err := serveConfig(f, fs)
	if err != nil {
		return err
	}

	sass := style.NewSass(style.SassOptions{Fallback: style.Passthrough})
	defer sass.Close()
	compiled := cache.NewMemory[string](compileCacheSize, compileTTL)

	srv := server.New(build.New(paths, style.Cached(sass, compiled)), server.Options{
		Hostname:    cfg.Server.Hostname,
		HTTPPort:    cfg.Server.HTTPPort,
		WSPort:      cfg.Server.WSPort,
		OpenBrowser: cfg.Server.OpenBrowser,
		Debounce:    cfg.Build.GetDebounce(),
		Debug:       f.debug,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}
