package catalog

import (
	"crypto/sha256"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Watcher monitors the catalog file for external edits (the CLI, a text
// editor) and reloads the [Store] when the content changes. It polls rather
// than using inotify-style APIs to stay portable and dependency-free; a
// launcher catalog changes at human speed, so a short interval is plenty.
type Watcher struct {
	store    *Store
	interval time.Duration
	onReload func(*Snapshot)

	mu        sync.Mutex
	lastMtime time.Time
	lastHash  [sha256.Size]byte

	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

// WatcherOption configures a [Watcher].
type WatcherOption func(*Watcher)

// WithInterval sets the polling interval. The default is 2 seconds.
func WithInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithOnReload sets a callback invoked with the new snapshot after each
// successful reload.
func WithOnReload(fn func(*Snapshot)) WatcherOption {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// NewWatcher records the file's current state so edits made before polling
// begins are still detected. The watcher is inert until [Watcher.Start].
func NewWatcher(store *Store, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		store:    store,
		interval: 2 * time.Second,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if hash, mtime, err := w.hashFile(); err == nil {
		w.lastHash = hash
		w.lastMtime = mtime
	}
	return w
}

// Start launches the polling goroutine. Safe to call more than once; only
// the first call has an effect. Call [Watcher.Stop] to end it.
func (w *Watcher) Start() {
	w.startOnce.Do(func() {
		go w.poll()
	})
}

// Stop ends the polling goroutine. Safe to call more than once, and before
// Start.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
	})
}

func (w *Watcher) poll() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

// check stats the file first so unchanged files are not re-hashed, then
// reloads the store when the content hash differs.
func (w *Watcher) check() {
	info, err := os.Stat(w.store.Path())
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("catalog watcher: cannot stat file", "path", w.store.Path(), "err", err)
		}
		return
	}

	w.mu.Lock()
	mtime := w.lastMtime
	w.mu.Unlock()

	if info.ModTime().Equal(mtime) {
		return
	}

	hash, newMtime, err := w.hashFile()
	if err != nil {
		slog.Warn("catalog watcher: cannot read file", "path", w.store.Path(), "err", err)
		return
	}

	w.mu.Lock()
	if hash == w.lastHash {
		// Touched but identical content.
		w.lastMtime = newMtime
		w.mu.Unlock()
		return
	}
	w.lastHash = hash
	w.lastMtime = newMtime
	w.mu.Unlock()

	if err := w.store.Reload(); err != nil {
		slog.Warn("catalog watcher: reload failed, keeping previous catalog", "path", w.store.Path(), "err", err)
		return
	}

	snap := w.store.Snapshot()
	slog.Info("catalog watcher: catalog reloaded",
		"path", w.store.Path(),
		"commands", len(snap.CommandNames),
		"groups", len(snap.GroupNames),
	)

	if w.onReload != nil {
		w.onReload(snap)
	}
}

// hashFile returns the catalog file's SHA-256 hash and modification time.
func (w *Watcher) hashFile() ([sha256.Size]byte, time.Time, error) {
	var zero [sha256.Size]byte

	f, err := os.Open(w.store.Path())
	if err != nil {
		return zero, time.Time{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return zero, time.Time{}, err
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return zero, time.Time{}, err
	}

	var sum [sha256.Size]byte
	copy(sum[:], h.Sum(nil))
	return sum, info.ModTime(), nil
}
