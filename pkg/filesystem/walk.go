package filesystem

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/rhino2rhonda/sfs/pkg/types"
)

// SkipDir can be returned by a WalkFunc to skip a directory's contents.
var SkipDir = fs.SkipDir

// WalkFunc is called once per entry found under the walk root. path is the
// full path of the entry, rel its path relative to the root. The entry for
// the root itself is not reported.
type WalkFunc func(path string, rel string, d fs.DirEntry) error

// Walk traverses the tree rooted at root depth-first in lexical order.
// Symbolic links are reported but never followed, so dangling links are
// safe to encounter. Directories are descended into after their own entry
// is reported.
func Walk(fsys types.FS, root string, fn WalkFunc) error {
	return walkDir(fsys, root, root, fn)
}

func walkDir(fsys types.FS, root, dir string, fn WalkFunc) error {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if err := fn(path, rel, entry); err != nil {
			if errors.Is(err, SkipDir) {
				continue
			}
			return err
		}

		// DirEntry reflects lstat semantics: a symlink to a directory is
		// not a directory here and is never descended into.
		if entry.IsDir() {
			if err := walkDir(fsys, root, path, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// IsSymlink reports whether a directory entry is a symbolic link.
func IsSymlink(d fs.DirEntry) bool {
	return d.Type()&fs.ModeSymlink != 0
}
