package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LoadFile reads the catalog JSON document at path. A missing file is not an
// error: an empty catalog document is written there first, matching the
// behaviour users expect on first start. Missing "apps"/"groups" keys decode
// to empty slices.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		c := &Catalog{}
		if err := SaveFile(path, c); err != nil {
			return nil, fmt.Errorf("catalog: create %q: %w", path, err)
		}
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: read %q: %w", path, err)
	}

	c := &Catalog{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("catalog: parse %q: %w", path, err)
	}
	return c, nil
}

// SaveFile rewrites the whole catalog document at path. The write goes to a
// temporary file in the same directory followed by a rename, so concurrent
// readers (and the polling watcher) never observe a partially written file.
func SaveFile(path string, c *Catalog) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("catalog: encode: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".catalog-*.json")
	if err != nil {
		return fmt.Errorf("catalog: create temp file in %q: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("catalog: write %q: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("catalog: close %q: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("catalog: rename to %q: %w", path, err)
	}
	return nil
}
