package core

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rhino2rhonda/sfs/pkg/errors"
	"github.com/rhino2rhonda/sfs/pkg/filesystem"
	"github.com/rhino2rhonda/sfs/pkg/logging"
	"github.com/rhino2rhonda/sfs/pkg/statscache"
	"github.com/rhino2rhonda/sfs/pkg/types"
	"github.com/rs/zerolog"
)

// Collection is a named binding between a real source directory and its
// mirror subtree inside the SFS root. Directories are mirrored as real
// directories, regular files as symbolic links to the absolute source path.
type Collection struct {
	fs     types.FS
	name   string
	root   string
	mirror string
	cache  *statscache.Cache
	logger zerolog.Logger
}

func newCollection(s *SFS, name, root string) *Collection {
	return &Collection{
		fs:     s.fs,
		name:   name,
		root:   filepath.Clean(root),
		mirror: s.layout.MirrorPath(name),
		cache:  statscache.New(s.fs, s.layout.StatsBase(name)),
		logger: s.logger.With().Str("collection", name).Logger(),
	}
}

// Name returns the collection's registered name.
func (c *Collection) Name() string {
	return c.name
}

// Root returns the absolute path of the real source directory.
func (c *Collection) Root() string {
	return c.root
}

// MirrorPath returns the root of the collection's link tree.
func (c *Collection) MirrorPath() string {
	return c.mirror
}

// Cache returns the collection's stats cache.
func (c *Collection) Cache() *statscache.Cache {
	return c.cache
}

// SourcePath maps a mirror-relative path back to the real source path.
func (c *Collection) SourcePath(rel string) string {
	return filepath.Join(c.root, rel)
}

// sourceFile is one regular file found by the source walk.
type sourceFile struct {
	path  string
	rel   string
	stats types.LinkStats
}

// Update synchronizes the mirror subtree with the source tree. It walks the
// source once, removes every link and cache entry whose source is gone, then
// applies the minimal mutation set: missing links are created and links
// whose cached (ctime, size) differ from the source are refreshed in the
// cache. Stale entries go first so that a path whose type changed between
// file and directory never leaves a link standing where the new entry (or
// its mirror walk) would resolve through it. Running Update twice with no
// intervening filesystem change yields a zero summary.
func (c *Collection) Update() (types.SfsUpdates, error) {
	defer logging.LogDuration(time.Now(), "sync "+c.name)

	var updates types.SfsUpdates

	if err := c.fs.MkdirAll(c.mirror, 0755); err != nil {
		return updates, errors.WrapInternalf(err, errors.ErrLinkCreate,
			"cannot create mirror directory for %q", c.name)
	}

	var dirs []string
	var files []sourceFile
	err := filesystem.Walk(c.fs, c.root, func(path, rel string, d fs.DirEntry) error {
		if d.IsDir() {
			dirs = append(dirs, rel)
			return nil
		}
		if !d.Type().IsRegular() {
			// Links and special files in the source are not tracked
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return errors.WrapInternalf(err, errors.ErrWalk, "cannot stat source %q", rel)
		}
		files = append(files, sourceFile{
			path:  path,
			rel:   rel,
			stats: types.LinkStats{Ctime: info.ModTime(), Size: info.Size()},
		})
		return nil
	})
	if err != nil {
		return updates, walkError(err)
	}

	seen := make(map[string]bool, len(files))
	for _, f := range files {
		seen[f.rel] = true
	}
	deleted, err := c.removeStale(seen)
	updates.Deleted += deleted
	if err != nil {
		return updates, err
	}

	// Walk order puts parents before children, so every mirror slot has a
	// real directory chain above it by the time its link is created.
	for _, rel := range dirs {
		if err := c.mirrorDir(rel); err != nil {
			return updates, err
		}
	}
	for _, f := range files {
		if err := c.syncFile(f.path, f.rel, f.stats, &updates); err != nil {
			return updates, err
		}
	}

	c.pruneStaleDirs()

	c.logger.Debug().
		Int("added", updates.Added).
		Int("updated", updates.Updated).
		Int("deleted", updates.Deleted).
		Msg("Synchronized collection")
	return updates, nil
}

// mirrorDir ensures the mirror slot for a source directory is a real
// directory. A stale link or file occupying the slot is removed first;
// letting a link stand as an intermediate path component would make later
// mirror writes resolve through it into the source tree.
func (c *Collection) mirrorDir(rel string) error {
	slot := filepath.Join(c.mirror, rel)

	if info, err := c.fs.Lstat(slot); err == nil && !info.IsDir() {
		if err := c.fs.Remove(slot); err != nil {
			return errors.WrapInternalf(err, errors.ErrLinkCreate,
				"cannot replace %q with a directory", rel)
		}
	}
	if err := c.fs.MkdirAll(slot, 0755); err != nil {
		return errors.WrapInternalf(err, errors.ErrLinkCreate,
			"cannot mirror directory %q", rel)
	}
	return nil
}

// syncFile reconciles a single source file against its mirror link and
// cache entry.
func (c *Collection) syncFile(source, rel string, current types.LinkStats, updates *types.SfsUpdates) error {
	linkPath := filepath.Join(c.mirror, rel)

	info, err := c.fs.Lstat(linkPath)
	linkExists := err == nil && info.Mode()&fs.ModeSymlink != 0

	if !linkExists {
		if err == nil {
			// Something that is not a link occupies the slot. A directory
			// holds stale child links, so it goes wholesale.
			rm := c.fs.Remove
			if info.IsDir() {
				rm = c.fs.RemoveAll
			}
			if rmErr := rm(linkPath); rmErr != nil {
				return errors.WrapInternalf(rmErr, errors.ErrLinkCreate,
					"cannot replace %q with a link", rel)
			}
		}
		if err := c.fs.MkdirAll(filepath.Dir(linkPath), 0755); err != nil {
			return errors.WrapInternalf(err, errors.ErrLinkCreate,
				"cannot create mirror directory for %q", rel)
		}
		if err := c.fs.Symlink(source, linkPath); err != nil {
			return errors.WrapInternalf(err, errors.ErrLinkCreate, "cannot create link %q", rel)
		}
		if err := c.cache.Put(rel, current); err != nil {
			return err
		}
		updates.Added++
		return nil
	}

	cached, ok, err := c.cache.Get(rel)
	if err != nil {
		return err
	}
	if !ok || !cached.Equal(current) {
		// The link already points at the right path; a replaced or touched
		// source only needs its cached observation refreshed.
		if err := c.cache.Put(rel, current); err != nil {
			return err
		}
		updates.Updated++
	}
	return nil
}

// removeStale drops every cache entry whose source file no longer exists,
// together with its mirror link.
func (c *Collection) removeStale(seen map[string]bool) (int, error) {
	entries, err := c.cache.Entries()
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, rel := range entries {
		if seen[rel] {
			continue
		}
		// Remove the slot only while it still holds a link; whatever else
		// occupies it is not ours. The cache record is stale either way.
		linkPath := filepath.Join(c.mirror, rel)
		if info, err := c.fs.Lstat(linkPath); err == nil && info.Mode()&fs.ModeSymlink != 0 {
			if err := c.fs.Remove(linkPath); err != nil && !os.IsNotExist(err) {
				return deleted, errors.WrapInternalf(err, errors.ErrLinkRemove,
					"cannot remove stale link %q", rel)
			}
		}
		if err := c.cache.Delete(rel); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// pruneStaleDirs removes mirror directories whose source directory is gone.
// Only empty directories are removed, deepest first; anything a user left
// behind inside the mirror keeps its parents alive. Failures are ignored,
// the next Update converges.
func (c *Collection) pruneStaleDirs() {
	var stale []string
	_ = filesystem.Walk(c.fs, c.mirror, func(path, rel string, d fs.DirEntry) error {
		if !d.IsDir() {
			return nil
		}
		if info, err := c.fs.Stat(c.SourcePath(rel)); err != nil || !info.IsDir() {
			stale = append(stale, path)
		}
		return nil
	})

	sort.Sort(sort.Reverse(sort.StringSlice(stale)))
	for _, dir := range stale {
		_ = c.fs.Remove(dir)
	}
}

// walkError keeps already-classified errors intact and wraps raw I/O
// failures from the walk itself.
func walkError(err error) error {
	var sfsErr *errors.SfsError
	if stderrors.As(err, &sfsErr) {
		return err
	}
	return errors.WrapInternal(err, errors.ErrWalk, "directory walk failed")
}
