// Package server implements the development server: static files, the
// reload socket and the change watcher.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/browser"
	"golang.org/x/sync/errgroup"

	"github.com/unveil/unveil/internal/build"
)

// Options configures a Server.
type Options struct {
	Hostname    string
	HTTPPort    int // 0 picks a free port
	WSPort      int // 0 picks a free port
	OpenBrowser bool
	Debounce    time.Duration
	Debug       bool
}

// Server serves the output directory and rebuilds on change.
type Server struct {
	builder *build.Builder
	opts    Options
	hub     *Hub

	// Overridable in tests.
	newBackend func() (Backend, error)
	openURL    func(string) error

	ready     chan struct{}
	httpAddr  string
	wsAddr    string
	socketURL string
}

// New creates a Server driving builder. The builder's live-reload settings
// are filled in by Run.
func New(builder *build.Builder, opts Options) *Server {
	if opts.Hostname == "" {
		opts.Hostname = "localhost"
	}
	return &Server{
		builder:    builder,
		opts:       opts,
		hub:        NewHub(),
		newBackend: NewFSNotifyBackend,
		openURL:    browser.OpenURL,
		ready:      make(chan struct{}),
	}
}

// Hub returns the reload broadcaster.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Ready is closed once both listeners are bound and the watcher is armed.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// URL returns the address of the static server. Valid after Ready.
func (s *Server) URL() string {
	return "http://" + s.httpAddr + "/"
}

// WSAddr returns the host:port of the reload socket. Valid after Ready.
func (s *Server) WSAddr() string {
	return s.wsAddr
}

// SocketURL returns the reload socket URL as dialed by livereload.js.
// Valid after Ready.
func (s *Server) SocketURL() string {
	return s.socketURL
}

// Handler returns the static file handler for the output directory.
func (s *Server) Handler() http.Handler {
	// The page dials the configured hostname; the resolved address is
	// allowed too for clients that reach the socket by IP.
	connect := []string{s.socketURL}
	if resolved := "ws://" + s.wsAddr; resolved != s.socketURL {
		connect = append(connect, resolved)
	}
	fileServer := http.FileServer(http.Dir(s.builder.Paths.Output))
	return Chain(fileServer,
		NoCache,
		SecurityHeaders(connect...),
		Compression,
	)
}

// Rebuild runs one build and, on success, tells every observer to reload.
// A failed build keeps the previous output and sends nothing.
func (s *Server) Rebuild(ctx context.Context, changed []string) bool {
	if len(changed) > 0 {
		log.Printf("[Server] %d file(s) changed, rebuilding", len(changed))
	}
	if _, err := s.builder.Build(ctx); err != nil {
		log.Printf("[Server] Keeping previous build")
		return false
	}
	s.hub.Broadcast(ReloadMessage)
	return true
}

// Run binds both listeners, builds once and serves until ctx is done.
// Bind and watch failures are returned immediately; build failures are
// only logged.
func (s *Server) Run(ctx context.Context) error {
	httpLn, err := net.Listen("tcp", net.JoinHostPort(s.opts.Hostname, strconv.Itoa(s.opts.HTTPPort)))
	if err != nil {
		return fmt.Errorf("failed to bind http server: %w", err)
	}
	defer httpLn.Close()

	wsLn, err := net.Listen("tcp", net.JoinHostPort(s.opts.Hostname, strconv.Itoa(s.opts.WSPort)))
	if err != nil {
		return fmt.Errorf("failed to bind reload socket: %w", err)
	}
	defer wsLn.Close()

	s.httpAddr = httpLn.Addr().String()
	s.wsAddr = wsLn.Addr().String()

	wsPort := wsLn.Addr().(*net.TCPAddr).Port
	s.socketURL = "ws://" + net.JoinHostPort(s.opts.Hostname, strconv.Itoa(wsPort))

	s.builder.LiveReload = true
	s.builder.SocketHost = s.opts.Hostname
	s.builder.SocketPort = wsPort

	// Content must exist before the first request; a failure is not fatal
	if _, err := s.builder.Build(ctx); err != nil {
		log.Printf("[Server] Initial build failed, fix the error and save to retry")
	}

	backend, err := s.newBackend()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	paths := s.builder.Paths
	watcher, err := NewWatcher(backend, paths.Slides, []string{paths.BaseStyle(), paths.Config},
		func(ctx context.Context, changed []string) { s.Rebuild(ctx, changed) },
		WatcherOptions{Debounce: s.opts.Debounce, Debug: s.opts.Debug})
	if err != nil {
		backend.Close()
		return err
	}

	httpSrv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	wsSrv := &http.Server{Handler: s.hub, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.hub.Run(gctx)
	})
	g.Go(func() error {
		return serve(httpSrv, httpLn)
	})
	g.Go(func() error {
		return serve(wsSrv, wsLn)
	})
	g.Go(func() error {
		return watcher.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
		wsSrv.Shutdown(shutdownCtx)
		return watcher.Close()
	})

	log.Printf("[Server] Serving %s at %s", paths.Output, s.URL())
	log.Printf("[Server] Reload socket at ws://%s", s.wsAddr)

	if s.opts.OpenBrowser {
		if err := s.openURL(s.URL()); err != nil {
			log.Printf("[Server] Could not open browser: %v", err)
		}
	}
	close(s.ready)

	return g.Wait()
}

func serve(srv *http.Server, ln net.Listener) error {
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
