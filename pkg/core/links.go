package core

import (
	"io/fs"
	"path/filepath"

	"github.com/rhino2rhonda/sfs/pkg/errors"
	"github.com/rhino2rhonda/sfs/pkg/filesystem"
	"github.com/rhino2rhonda/sfs/pkg/types"
)

// ClassifyLink classifies a symbolic link found under the SFS root.
//
// A link inside a registered collection's mirror subtree is tracked: it is
// active when its stats-cache entry exists and its target still resolves,
// orphan otherwise. A link outside every mirror subtree is foreign, which
// also covers links left behind by a deleted collection. Classification is
// derived on demand and never persisted.
func (s *SFS) ClassifyLink(path string) (types.LinkClass, error) {
	col, ok := s.CollectionByPath(path)
	if !ok {
		return types.ClassForeign, nil
	}

	rel, err := filepath.Rel(col.MirrorPath(), filepath.Clean(path))
	if err != nil {
		return types.ClassOrphan, errors.WrapInternal(err, errors.ErrInternal, "cannot resolve link path")
	}

	_, tracked, err := col.Cache().Get(rel)
	if err != nil {
		return types.ClassOrphan, err
	}
	if !tracked {
		return types.ClassOrphan, nil
	}

	// Stat follows the link; failure means the target is gone
	if _, err := s.fs.Stat(path); err != nil {
		return types.ClassOrphan, nil
	}
	return types.ClassActive, nil
}

// DelOrphans removes every orphan link in the whole SFS tree. Stats-cache
// entries are left untouched; only the collection-scoped variant drops
// them.
func (s *SFS) DelOrphans() (types.SfsUpdates, error) {
	return s.reclaim(s.Root(), nil)
}

// DelOrphansIn removes every orphan link inside the mirror subtree of the
// collection whose source root equals colRoot, dropping the corresponding
// stats-cache entries as well.
func (s *SFS) DelOrphansIn(colRoot string) (types.SfsUpdates, error) {
	col, ok := s.CollectionByRoot(colRoot)
	if !ok {
		return types.SfsUpdates{}, errors.NewValidationf(errors.ErrUnknownCollection,
			"no collection with root %q", colRoot)
	}
	return s.reclaim(col.MirrorPath(), col)
}

// reclaim walks scope and removes orphan links. When scoped to a
// collection, the matching cache entries are dropped too.
func (s *SFS) reclaim(scope string, scoped *Collection) (types.SfsUpdates, error) {
	var updates types.SfsUpdates

	if _, err := s.fs.Stat(scope); err != nil {
		// A collection whose mirror is already gone has nothing to reclaim
		return updates, nil
	}

	err := filesystem.Walk(s.fs, scope, func(path, rel string, d fs.DirEntry) error {
		if d.IsDir() {
			if path == s.layout.MetaDir() {
				return filesystem.SkipDir
			}
			return nil
		}
		if !filesystem.IsSymlink(d) {
			return nil
		}

		class, err := s.ClassifyLink(path)
		if err != nil {
			return err
		}
		if class != types.ClassOrphan {
			return nil
		}

		if err := s.fs.Remove(path); err != nil {
			return errors.WrapInternalf(err, errors.ErrLinkRemove,
				"cannot remove orphan link %q", path)
		}
		if scoped != nil {
			if err := scoped.Cache().Delete(rel); err != nil {
				return err
			}
		}
		updates.Deleted++

		s.logger.Debug().Str("link", path).Msg("Removed orphan link")
		return nil
	})
	if err != nil {
		return updates, walkError(err)
	}
	return updates, nil
}
