package core

import (
	"io/fs"
	"path/filepath"

	"github.com/rhino2rhonda/sfs/pkg/errors"
	"github.com/rhino2rhonda/sfs/pkg/filesystem"
	"github.com/rhino2rhonda/sfs/pkg/paths"
	"github.com/rhino2rhonda/sfs/pkg/types"
)

// QueryResult is the answer to a single query: exactly one of Link and Dir
// is set, depending on what the queried path resolved to.
type QueryResult struct {
	Link *types.LinkInfo
	Dir  *types.DirectoryStats
}

// Query resolves path to either link information or aggregated directory
// statistics. Paths that are neither a symbolic link nor a directory are
// rejected.
func (s *SFS) Query(path string) (QueryResult, error) {
	path = filepath.Clean(path)

	info, err := s.fs.Lstat(path)
	if err != nil {
		return QueryResult{}, errors.NewValidationf(errors.ErrNotLinkOrDir,
			"%q is not a link or directory", path)
	}

	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		link, err := s.QueryLink(path)
		if err != nil {
			return QueryResult{}, err
		}
		return QueryResult{Link: &link}, nil
	case info.IsDir():
		stats, err := s.DirectoryStats(path)
		if err != nil {
			return QueryResult{}, err
		}
		return QueryResult{Dir: &stats}, nil
	default:
		return QueryResult{}, errors.NewValidationf(errors.ErrNotLinkOrDir,
			"%q is not a link or directory", path)
	}
}

// QueryLink resolves a single link to its owning collection, source path
// and cached stats. The returned ctime and size reflect the last
// synchronized observation, not necessarily the live source.
func (s *SFS) QueryLink(path string) (types.LinkInfo, error) {
	var none types.LinkInfo
	path = filepath.Clean(path)

	col, ok := s.CollectionByPath(path)
	if !ok {
		return none, errors.NewValidation(errors.ErrCollectionNotFound,
			"link does not belong to any collection")
	}

	rel, err := filepath.Rel(col.MirrorPath(), path)
	if err != nil {
		return none, errors.WrapInternal(err, errors.ErrInternal, "cannot resolve link path")
	}

	stats, ok, err := col.Cache().Get(rel)
	if err != nil {
		return none, err
	}
	if !ok {
		return none, errors.NewValidationf(errors.ErrStatsNotFound,
			"no cached stats for %q", rel)
	}

	return types.LinkInfo{
		Collection: col.Name(),
		SourcePath: col.SourcePath(rel),
		Stats:      stats,
	}, nil
}

// DirectoryStats recursively aggregates the subtree rooted at path, which
// must be a directory inside the SFS. Links contribute the resolved source
// file's size when resolvable; the ctime is the directory's own, not
// aggregated from children.
func (s *SFS) DirectoryStats(path string) (types.DirectoryStats, error) {
	var stats types.DirectoryStats
	path = filepath.Clean(path)

	if !paths.IsWithinOrEqual(s.Root(), path) {
		return stats, errors.NewValidationf(errors.ErrNotInSFS,
			"%q is outside the SFS at %q", path, s.Root())
	}
	info, err := s.fs.Lstat(path)
	if err != nil || !info.IsDir() {
		return stats, errors.NewValidationf(errors.ErrNotLinkOrDir,
			"%q is not a directory", path)
	}
	stats.Ctime = info.ModTime()

	err = filesystem.Walk(s.fs, path, func(entryPath, rel string, d fs.DirEntry) error {
		if d.IsDir() {
			if entryPath == s.layout.MetaDir() {
				return filesystem.SkipDir
			}
			stats.SubDirectories++
			return nil
		}

		if filesystem.IsSymlink(d) {
			class, err := s.ClassifyLink(entryPath)
			if err != nil {
				return err
			}
			switch class {
			case types.ClassActive:
				stats.ActiveLinks++
			case types.ClassOrphan:
				stats.OrphanLinks++
			case types.ClassForeign:
				stats.ForeignLinks++
			}
			// Size of the resolved target, when it resolves
			if target, err := s.fs.Stat(entryPath); err == nil && !target.IsDir() {
				stats.Size += target.Size()
			}
			return nil
		}

		if d.Type().IsRegular() {
			stats.Files++
			if info, err := d.Info(); err == nil {
				stats.Size += info.Size()
			}
		}
		return nil
	})
	if err != nil {
		return stats, walkError(err)
	}
	return stats, nil
}
