package catalog_test

import (
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmorales/fastaccess/internal/catalog"
)

func TestWatcher_ReloadsOnExternalEdit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "commands.json")
	s, err := catalog.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	var reloads atomic.Int32
	w := catalog.NewWatcher(s,
		catalog.WithInterval(10*time.Millisecond),
		catalog.WithOnReload(func(*catalog.Snapshot) { reloads.Add(1) }),
	)
	w.Start()
	defer w.Stop()

	// Simulate an external editor rewriting the file.
	edited := &catalog.Catalog{
		Commands: []catalog.Command{{Name: "Discord", Kind: catalog.KindApp, Action: "/usr/bin/discord"}},
	}
	if err := catalog.SaveFile(path, edited); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		if _, ok := s.Snapshot().Command("Discord"); ok {
			break
		}
		select {
		case <-deadline:
			t.Fatal("watcher did not reload the edited catalog within 2s")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if reloads.Load() == 0 {
		t.Error("onReload callback was never invoked")
	}
}

func TestWatcher_IgnoresIdenticalRewrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "commands.json")
	s, err := catalog.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	var reloads atomic.Int32
	w := catalog.NewWatcher(s,
		catalog.WithInterval(10*time.Millisecond),
		catalog.WithOnReload(func(*catalog.Snapshot) { reloads.Add(1) }),
	)
	w.Start()
	defer w.Stop()

	// Rewrite the identical (empty) document; the content hash is unchanged
	// so no reload should fire.
	if err := catalog.SaveFile(path, &catalog.Catalog{}); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if n := reloads.Load(); n != 0 {
		t.Errorf("reloads = %d after identical rewrite, want 0", n)
	}
}

func TestWatcher_DoesNotPollBeforeStart(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "commands.json")
	s, err := catalog.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	var reloads atomic.Int32
	w := catalog.NewWatcher(s,
		catalog.WithInterval(10*time.Millisecond),
		catalog.WithOnReload(func(*catalog.Snapshot) { reloads.Add(1) }),
	)
	defer w.Stop()

	edited := &catalog.Catalog{
		Commands: []catalog.Command{{Name: "Spotify", Kind: catalog.KindWeb, Action: "https://open.spotify.com"}},
	}
	if err := catalog.SaveFile(path, edited); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if n := reloads.Load(); n != 0 {
		t.Fatalf("reloads = %d before Start, want 0", n)
	}

	// Starting picks up the pending edit; a second Start must not spawn a
	// second poller.
	w.Start()
	w.Start()

	deadline := time.After(2 * time.Second)
	for reloads.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("watcher did not reload after Start within 2s")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "commands.json")
	s, err := catalog.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	w := catalog.NewWatcher(s, catalog.WithInterval(10*time.Millisecond))
	w.Stop()
	w.Stop()
}
