package server

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/unveil/unveil"
)

// Backend delivers raw filesystem events for registered paths.
type Backend interface {
	Add(path string) error
	Events() <-chan fsnotify.Event
	Errors() <-chan error
	Close() error
}

type fsnotifyBackend struct {
	w *fsnotify.Watcher
}

// NewFSNotifyBackend creates a Backend on top of fsnotify.
func NewFSNotifyBackend() (Backend, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &fsnotifyBackend{w: w}, nil
}

func (b *fsnotifyBackend) Add(path string) error         { return b.w.Add(path) }
func (b *fsnotifyBackend) Events() <-chan fsnotify.Event { return b.w.Events }
func (b *fsnotifyBackend) Errors() <-chan error          { return b.w.Errors }
func (b *fsnotifyBackend) Close() error                  { return b.w.Close() }

// WatchTarget is a watched path. Backends may silently drop the
// registration of a path that is removed or renamed, so a target tracks
// whether it is armed and is re-armed by its owner.
type WatchTarget struct {
	Path      string
	Recursive bool

	armed bool
}

// Arm registers the target with the backend. Recursive targets register
// every directory below Path, skipping hidden ones.
func (t *WatchTarget) Arm(b Backend) error {
	if !t.Recursive {
		if err := b.Add(t.Path); err != nil {
			return err
		}
		t.armed = true
		return nil
	}

	if err := addRecursive(b, t.Path); err != nil {
		return err
	}
	t.armed = true
	return nil
}

// Armed reports whether the registration is believed to be live.
func (t *WatchTarget) Armed() bool {
	return t.armed
}

func addRecursive(b Backend, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return b.Add(path)
	})
}

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	// Debounce is the quiescence window after the last event before a
	// batch is handed to the callback.
	Debounce time.Duration
	Debug    bool
}

// ChangeFunc receives one batch of changed paths, sorted.
type ChangeFunc func(ctx context.Context, paths []string)

// Watcher watches a directory tree and singleton files, coalescing bursts
// of events into one callback per batch.
type Watcher struct {
	backend  Backend
	dir      *WatchTarget
	files    []*WatchTarget
	onChange ChangeFunc
	debug    bool

	debounced func(func())
	ready     chan struct{}

	mu      sync.Mutex
	pending map[string]struct{}

	errLimit *rate.Limiter
}

// NewWatcher arms a recursive target for dir and a non-recursive target
// for each singleton. A registration failure is returned wrapping
// unveil.ErrWatch. A singleton that does not exist yet is left unarmed and
// retried after every batch.
func NewWatcher(backend Backend, dir string, singletons []string, onChange ChangeFunc, opts WatcherOptions) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = 50 * time.Millisecond
	}

	w := &Watcher{
		backend:   backend,
		dir:       &WatchTarget{Path: filepath.Clean(dir), Recursive: true},
		onChange:  onChange,
		debug:     opts.Debug,
		debounced: debounce.New(opts.Debounce),
		ready:     make(chan struct{}, 1),
		pending:   make(map[string]struct{}),
		errLimit:  rate.NewLimiter(rate.Every(10*time.Second), 3),
	}

	if err := w.dir.Arm(backend); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", unveil.ErrWatch, dir, err)
	}

	for _, p := range singletons {
		t := &WatchTarget{Path: filepath.Clean(p)}
		if err := t.Arm(backend); err != nil {
			if _, statErr := os.Stat(p); !os.IsNotExist(statErr) {
				return nil, fmt.Errorf("%w: %s: %v", unveil.ErrWatch, p, err)
			}
			log.Printf("[Watch] %s does not exist yet, will watch once created", p)
		}
		w.files = append(w.files, t)
	}

	return w, nil
}

// Targets returns the watch targets, the directory first.
func (w *Watcher) Targets() []*WatchTarget {
	return append([]*WatchTarget{w.dir}, w.files...)
}

// Run processes events until ctx is done or the backend is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.backend.Events():
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.backend.Errors():
			if !ok {
				return nil
			}
			if w.errLimit.Allow() {
				log.Printf("[Watch] Error: %v", err)
			}

		case <-w.ready:
			batch := w.drain()
			w.rearm()
			if len(batch) == 0 {
				continue
			}
			if w.debug {
				log.Printf("[Watch] Changed: %s", strings.Join(batch, ", "))
			}
			w.onChange(ctx, batch)
			w.rearm()
		}
	}
}

// Close releases the backend.
func (w *Watcher) Close() error {
	return w.backend.Close()
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	path := filepath.Clean(event.Name)
	if t := w.singleton(path); t != nil {
		if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
			t.armed = false
			// Atomic saves replace the file; it usually exists again already
			if err := t.Arm(w.backend); err != nil && w.debug {
				log.Printf("[Watch] Re-arm of %s deferred: %v", t.Path, err)
			}
		}
	} else if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := addRecursive(w.backend, path); err != nil {
				log.Printf("[Watch] Failed to watch %s: %v", path, err)
			}
		}
	}

	w.record(path)
}

func (w *Watcher) singleton(path string) *WatchTarget {
	for _, t := range w.files {
		if t.Path == path {
			return t
		}
	}
	return nil
}

func (w *Watcher) record(path string) {
	w.mu.Lock()
	w.pending[path] = struct{}{}
	w.mu.Unlock()

	w.debounced(w.signal)
}

func (w *Watcher) signal() {
	select {
	case w.ready <- struct{}{}:
	default:
	}
}

func (w *Watcher) drain() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) == 0 {
		return nil
	}
	batch := make([]string, 0, len(w.pending))
	for p := range w.pending {
		batch = append(batch, p)
	}
	w.pending = make(map[string]struct{})
	sort.Strings(batch)
	return batch
}

func (w *Watcher) rearm() {
	for _, t := range w.files {
		if t.armed {
			continue
		}
		if err := t.Arm(w.backend); err == nil {
			log.Printf("[Watch] Watching %s again", t.Path)
		}
	}
}
