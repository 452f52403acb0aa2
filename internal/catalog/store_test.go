package catalog_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/dmorales/fastaccess/internal/catalog"
)

func newStore(t *testing.T) *catalog.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "commands.json")
	s, err := catalog.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestOpen_CreatesMissingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "commands.json")
	s, err := catalog.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("catalog file was not created: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.CommandNames) != 0 || len(snap.GroupNames) != 0 {
		t.Errorf("new catalog is not empty: commands=%v groups=%v", snap.CommandNames, snap.GroupNames)
	}
}

func TestStore_AddCommand_AutoSuffix(t *testing.T) {
	t.Parallel()

	s := newStore(t)

	first, err := s.AddCommand(catalog.Command{Name: "Spotify", Kind: catalog.KindApp, Action: "/usr/bin/spotify"})
	if err != nil {
		t.Fatalf("AddCommand: %v", err)
	}
	if first.Name != "Spotify" {
		t.Errorf("first name = %q, want %q", first.Name, "Spotify")
	}

	second, err := s.AddCommand(catalog.Command{Name: "Spotify", Kind: catalog.KindWeb, Action: "https://open.spotify.com"})
	if err != nil {
		t.Fatalf("AddCommand: %v", err)
	}
	if second.Name != "Spotify (2)" {
		t.Errorf("second name = %q, want %q", second.Name, "Spotify (2)")
	}

	third, err := s.AddCommand(catalog.Command{Name: "Spotify", Kind: catalog.KindWeb, Action: "https://spotify.com"})
	if err != nil {
		t.Fatalf("AddCommand: %v", err)
	}
	if third.Name != "Spotify (3)" {
		t.Errorf("third name = %q, want %q", third.Name, "Spotify (3)")
	}
}

func TestStore_AddCommand_Validation(t *testing.T) {
	t.Parallel()

	s := newStore(t)

	if _, err := s.AddCommand(catalog.Command{Name: "  ", Kind: catalog.KindApp, Action: "x"}); !errors.Is(err, catalog.ErrEmptyName) {
		t.Errorf("blank name: err = %v, want ErrEmptyName", err)
	}
	if _, err := s.AddCommand(catalog.Command{Name: "X", Kind: "desktop", Action: "x"}); err == nil || !strings.Contains(err.Error(), "kind") {
		t.Errorf("invalid kind: err = %v, want kind error", err)
	}
}

func TestStore_RemoveCommand(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	if _, err := s.AddCommand(catalog.Command{Name: "Spotify", Kind: catalog.KindApp, Action: "/usr/bin/spotify"}); err != nil {
		t.Fatalf("AddCommand: %v", err)
	}

	if err := s.RemoveCommand("Spotify"); err != nil {
		t.Fatalf("RemoveCommand: %v", err)
	}
	if err := s.RemoveCommand("Spotify"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("second RemoveCommand: err = %v, want ErrNotFound", err)
	}
	if names := s.Snapshot().CommandNames; len(names) != 0 {
		t.Errorf("CommandNames after removal = %v, want empty", names)
	}
}

func TestStore_SnapshotIsImmutable(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	if _, err := s.AddCommand(catalog.Command{Name: "Spotify", Kind: catalog.KindApp, Action: "/usr/bin/spotify"}); err != nil {
		t.Fatalf("AddCommand: %v", err)
	}

	before := s.Snapshot()

	if _, err := s.AddCommand(catalog.Command{Name: "Discord", Kind: catalog.KindApp, Action: "/usr/bin/discord"}); err != nil {
		t.Fatalf("AddCommand: %v", err)
	}

	if got := before.CommandNames; !slices.Equal(got, []string{"Spotify"}) {
		t.Errorf("old snapshot changed after mutation: %v", got)
	}
	if got := s.Snapshot().CommandNames; !slices.Equal(got, []string{"Spotify", "Discord"}) {
		t.Errorf("new snapshot = %v, want [Spotify Discord]", got)
	}
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "commands.json")
	s, err := catalog.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := s.AddCommand(catalog.Command{Name: "Spotify", Kind: catalog.KindWeb, Action: "https://open.spotify.com"}); err != nil {
		t.Fatalf("AddCommand: %v", err)
	}
	if _, err := s.AddGroup(catalog.Group{Name: "Music", Items: []string{"Spotify", "https://lastfm.com"}}); err != nil {
		t.Fatalf("AddGroup: %v", err)
	}

	reopened, err := catalog.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	snap := reopened.Snapshot()

	cmd, ok := snap.Command("Spotify")
	if !ok {
		t.Fatal("Spotify missing after reopen")
	}
	if cmd.Kind != catalog.KindWeb || cmd.Action != "https://open.spotify.com" {
		t.Errorf("reopened command = %+v", cmd)
	}

	g, ok := snap.Group("Music")
	if !ok {
		t.Fatal("Music group missing after reopen")
	}
	if !slices.Equal(g.Items, []string{"Spotify", "https://lastfm.com"}) {
		t.Errorf("reopened group items = %v", g.Items)
	}
}

func TestStore_RemoveGroup(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	if _, err := s.AddGroup(catalog.Group{Name: "Work", Items: []string{"Slack"}}); err != nil {
		t.Fatalf("AddGroup: %v", err)
	}

	if err := s.RemoveGroup("Work"); err != nil {
		t.Fatalf("RemoveGroup: %v", err)
	}
	if err := s.RemoveGroup("Work"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("second RemoveGroup: err = %v, want ErrNotFound", err)
	}
}
