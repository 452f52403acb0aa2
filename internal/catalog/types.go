// Package catalog owns the launcher's command and group definitions: the JSON
// file codec, a thread-safe Store that is the single writer for the file, and
// a polling watcher that picks up external edits.
//
// Readers never touch the mutable state directly. The Store publishes an
// immutable [Snapshot] through an atomic pointer after every mutation and
// reload; the voice listener takes the latest snapshot at the top of each
// iteration, so a match is never attempted against a half-applied edit.
package catalog

import (
	"encoding/json"
	"fmt"
)

// Kind classifies a command's target.
type Kind string

const (
	// KindApp is a local application or file path.
	KindApp Kind = "app"

	// KindWeb is a URL opened in the default browser.
	KindWeb Kind = "web"
)

// IsValid reports whether k is a recognised command kind.
func (k Kind) IsValid() bool {
	return k == KindApp || k == KindWeb
}

// Command is a named, directly-executable target.
type Command struct {
	// Name is unique among commands in the catalog.
	Name string `json:"name"`

	// Kind distinguishes local applications from web URLs.
	Kind Kind `json:"type"`

	// Action is the filesystem path or URL to open.
	Action string `json:"action"`
}

// Group is a named ordered bundle of item references. An item is either the
// name of a registered command, a raw URL, or a raw filesystem path. Items
// are resolved lazily at execution time, so a group may reference a command
// that was deleted or renamed after the group was created; such items are
// skipped when the group runs.
type Group struct {
	// Name is unique among groups in the catalog.
	Name string `json:"name"`

	// Items are resolved in order at execution time.
	Items []string `json:"items"`
}

// UnmarshalJSON accepts both the plain-string item form and the legacy object
// form {"action": "...", ...} written by older catalog editors. Object items
// collapse to their action string.
func (g *Group) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name  string            `json:"name"`
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	g.Name = raw.Name
	g.Items = g.Items[:0]
	for i, item := range raw.Items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			g.Items = append(g.Items, s)
			continue
		}
		var obj struct {
			Action string `json:"action"`
		}
		if err := json.Unmarshal(item, &obj); err != nil || obj.Action == "" {
			return fmt.Errorf("catalog: group %q item %d: unsupported item form", raw.Name, i)
		}
		g.Items = append(g.Items, obj.Action)
	}
	return nil
}

// Catalog is the aggregate persisted as a single JSON document. Slice order
// is preserved from the file and defines candidate order for voice matching.
type Catalog struct {
	Commands []Command `json:"apps"`
	Groups   []Group   `json:"groups"`
}

// Snapshot is an immutable view of the catalog published by the [Store].
// Name slices keep the file order; maps provide lookup by exact name.
// A Snapshot must never be mutated after publication.
type Snapshot struct {
	// CommandNames lists command names in catalog order.
	CommandNames []string

	// GroupNames lists group names in catalog order.
	GroupNames []string

	commands map[string]Command
	groups   map[string]Group
}

// Command looks up a command by exact name.
func (s *Snapshot) Command(name string) (Command, bool) {
	c, ok := s.commands[name]
	return c, ok
}

// Group looks up a group by exact name.
func (s *Snapshot) Group(name string) (Group, bool) {
	g, ok := s.groups[name]
	return g, ok
}

// newSnapshot builds a Snapshot from a catalog value, deep-copying everything
// it retains.
func newSnapshot(c *Catalog) *Snapshot {
	s := &Snapshot{
		CommandNames: make([]string, 0, len(c.Commands)),
		GroupNames:   make([]string, 0, len(c.Groups)),
		commands:     make(map[string]Command, len(c.Commands)),
		groups:       make(map[string]Group, len(c.Groups)),
	}
	for _, cmd := range c.Commands {
		s.CommandNames = append(s.CommandNames, cmd.Name)
		s.commands[cmd.Name] = cmd
	}
	for _, g := range c.Groups {
		items := make([]string, len(g.Items))
		copy(items, g.Items)
		g.Items = items
		s.GroupNames = append(s.GroupNames, g.Name)
		s.groups[g.Name] = g
	}
	return s
}
