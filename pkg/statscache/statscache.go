// Package statscache persists the last-observed (ctime, size) of every
// source file tracked by a collection. Entries live in a collection-private
// area under the SFS metadata directory, one small TOML file per tracked
// path, mirroring the collection's relative-path structure. Removing one
// entry file invalidates exactly that path's stats.
package statscache

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rhino2rhonda/sfs/pkg/errors"
	"github.com/rhino2rhonda/sfs/pkg/filesystem"
	"github.com/rhino2rhonda/sfs/pkg/types"
)

// entry is the serialized form of one observation.
type entry struct {
	Ctime int64 `toml:"ctime"`
	Size  int64 `toml:"size"`
}

// Cache is a collection's persisted stats area.
type Cache struct {
	fs   types.FS
	base string
}

// New creates a Cache rooted at base. The base directory is created lazily
// on the first Put.
func New(fsys types.FS, base string) *Cache {
	return &Cache{fs: fsys, base: base}
}

// Base returns the root of the stats area.
func (c *Cache) Base() string {
	return c.base
}

func (c *Cache) entryPath(rel string) string {
	return filepath.Join(c.base, rel)
}

// Get returns the cached stats for a relative source path. The second
// return value is false when no entry exists.
func (c *Cache) Get(rel string) (types.LinkStats, bool, error) {
	data, err := c.fs.ReadFile(c.entryPath(rel))
	if err != nil {
		if os.IsNotExist(err) {
			return types.LinkStats{}, false, nil
		}
		return types.LinkStats{}, false, errors.WrapInternalf(err, errors.ErrStatsAccess,
			"cannot read stats entry for %q", rel)
	}

	var e entry
	if err := toml.Unmarshal(data, &e); err != nil {
		return types.LinkStats{}, false, errors.WrapInternalf(err, errors.ErrStatsAccess,
			"corrupt stats entry for %q", rel)
	}
	return types.LinkStats{Ctime: time.Unix(0, e.Ctime), Size: e.Size}, true, nil
}

// Put records the stats for a relative source path, replacing any previous
// observation.
func (c *Cache) Put(rel string, stats types.LinkStats) error {
	path := c.entryPath(rel)
	if err := c.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WrapInternalf(err, errors.ErrStatsAccess,
			"cannot create stats area for %q", rel)
	}

	data, err := toml.Marshal(entry{Ctime: stats.Ctime.UnixNano(), Size: stats.Size})
	if err != nil {
		return errors.WrapInternalf(err, errors.ErrStatsAccess,
			"cannot encode stats entry for %q", rel)
	}
	if err := c.fs.WriteFile(path, data, 0644); err != nil {
		return errors.WrapInternalf(err, errors.ErrStatsAccess,
			"cannot write stats entry for %q", rel)
	}
	return nil
}

// Delete removes the entry for a relative source path. Deleting a missing
// entry is not an error.
func (c *Cache) Delete(rel string) error {
	if err := c.fs.Remove(c.entryPath(rel)); err != nil && !os.IsNotExist(err) {
		return errors.WrapInternalf(err, errors.ErrStatsAccess,
			"cannot remove stats entry for %q", rel)
	}
	c.pruneEmptyParents(rel)
	return nil
}

// pruneEmptyParents removes directories left empty by a Delete, up to the
// cache base. Failures are ignored; a leftover empty directory is harmless.
func (c *Cache) pruneEmptyParents(rel string) {
	for dir := filepath.Dir(rel); dir != "." && dir != string(filepath.Separator); dir = filepath.Dir(dir) {
		if err := c.fs.Remove(filepath.Join(c.base, dir)); err != nil {
			return
		}
	}
}

// Entries returns the relative paths of all cached observations in lexical
// order. A cache that was never written to has no entries.
func (c *Cache) Entries() ([]string, error) {
	if _, err := c.fs.Stat(c.base); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapInternal(err, errors.ErrStatsAccess, "cannot read stats area")
	}

	var rels []string
	err := filesystem.Walk(c.fs, c.base, func(path, rel string, d fs.DirEntry) error {
		if !d.IsDir() {
			rels = append(rels, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WrapInternal(err, errors.ErrStatsAccess, "cannot walk stats area")
	}
	return rels, nil
}

// Clear removes the whole stats area.
func (c *Cache) Clear() error {
	if err := c.fs.RemoveAll(c.base); err != nil {
		return errors.WrapInternal(err, errors.ErrStatsAccess, "cannot clear stats area")
	}
	return nil
}
