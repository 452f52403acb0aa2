package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrNotFound is returned by removal operations when no entry has the
// requested name.
var ErrNotFound = errors.New("catalog: name not found")

// ErrEmptyName is returned when an entry is created with a blank name.
var ErrEmptyName = errors.New("catalog: name must not be empty")

// Store is the single writer for a catalog file. Every mutation rewrites the
// file and publishes a fresh immutable [Snapshot]; [Store.Snapshot] is a
// lock-free atomic read, safe to call from any goroutine at any rate.
type Store struct {
	path string

	mu      sync.Mutex
	catalog *Catalog

	snap atomic.Pointer[Snapshot]
}

// Open loads the catalog file at path (creating an empty one when missing)
// and returns a ready Store.
func Open(path string) (*Store, error) {
	c, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	s := &Store{path: path, catalog: c}
	s.snap.Store(newSnapshot(c))
	return s, nil
}

// Path returns the catalog file path the store persists to.
func (s *Store) Path() string { return s.path }

// Snapshot returns the most recently published immutable catalog view.
func (s *Store) Snapshot() *Snapshot {
	return s.snap.Load()
}

// Reload re-reads the catalog file and republishes the snapshot. Used by the
// file watcher when an external editor rewrote the file.
func (s *Store) Reload() error {
	c, err := LoadFile(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = c
	s.snap.Store(newSnapshot(c))
	return nil
}

// AddCommand appends a command, resolving name collisions by auto-suffixing
// ("Spotify" → "Spotify (2)"). The returned command carries the final name.
func (s *Store) AddCommand(cmd Command) (Command, error) {
	cmd.Name = strings.TrimSpace(cmd.Name)
	if cmd.Name == "" {
		return Command{}, ErrEmptyName
	}
	if !cmd.Kind.IsValid() {
		return Command{}, fmt.Errorf("catalog: invalid command kind %q; valid values: app, web", cmd.Kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	taken := make(map[string]bool, len(s.catalog.Commands))
	for _, c := range s.catalog.Commands {
		taken[c.Name] = true
	}
	cmd.Name = uniqueName(cmd.Name, taken)

	next := s.cloneLocked()
	next.Commands = append(next.Commands, cmd)
	if err := s.commitLocked(next); err != nil {
		return Command{}, err
	}
	return cmd, nil
}

// RemoveCommand deletes the command with the given exact name.
// Returns [ErrNotFound] when no such command exists.
func (s *Store) RemoveCommand(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.catalog.Commands, func(c Command) bool { return c.Name == name })
	if i < 0 {
		return ErrNotFound
	}

	next := s.cloneLocked()
	next.Commands = slices.Delete(next.Commands, i, i+1)
	return s.commitLocked(next)
}

// AddGroup appends a group, auto-suffixing the name on collision. Items are
// stored as given; they are validated lazily at execution time.
func (s *Store) AddGroup(g Group) (Group, error) {
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		return Group{}, ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	taken := make(map[string]bool, len(s.catalog.Groups))
	for _, existing := range s.catalog.Groups {
		taken[existing.Name] = true
	}
	g.Name = uniqueName(g.Name, taken)

	next := s.cloneLocked()
	next.Groups = append(next.Groups, g)
	if err := s.commitLocked(next); err != nil {
		return Group{}, err
	}
	return g, nil
}

// RemoveGroup deletes the group with the given exact name.
// Returns [ErrNotFound] when no such group exists.
func (s *Store) RemoveGroup(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.catalog.Groups, func(g Group) bool { return g.Name == name })
	if i < 0 {
		return ErrNotFound
	}

	next := s.cloneLocked()
	next.Groups = slices.Delete(next.Groups, i, i+1)
	return s.commitLocked(next)
}

// cloneLocked deep-copies the current catalog. Caller holds mu.
func (s *Store) cloneLocked() *Catalog {
	next := &Catalog{
		Commands: slices.Clone(s.catalog.Commands),
		Groups:   make([]Group, 0, len(s.catalog.Groups)),
	}
	for _, g := range s.catalog.Groups {
		g.Items = slices.Clone(g.Items)
		next.Groups = append(next.Groups, g)
	}
	return next
}

// commitLocked persists next to disk and, only on success, swaps it in and
// republishes the snapshot. Caller holds mu.
func (s *Store) commitLocked(next *Catalog) error {
	if err := SaveFile(s.path, next); err != nil {
		return err
	}
	s.catalog = next
	s.snap.Store(newSnapshot(next))
	return nil
}

// uniqueName returns base unchanged when free, otherwise the first
// "base (n)" with n ≥ 2 that is not taken.
func uniqueName(base string, taken map[string]bool) string {
	if !taken[base] {
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", base, n)
		if !taken[candidate] {
			return candidate
		}
	}
}
