package types

import (
	"time"
)

// SfsUpdates summarizes the effect of a mutating operation on the link tree.
// A zero value denotes a no-op run.
type SfsUpdates struct {
	Added   int
	Updated int
	Deleted int
}

// Combine returns the element-wise sum of two update summaries.
func (u SfsUpdates) Combine(other SfsUpdates) SfsUpdates {
	return SfsUpdates{
		Added:   u.Added + other.Added,
		Updated: u.Updated + other.Updated,
		Deleted: u.Deleted + other.Deleted,
	}
}

// Total returns the total number of mutations.
func (u SfsUpdates) Total() int {
	return u.Added + u.Updated + u.Deleted
}

// IsZero reports whether the run was a no-op.
func (u SfsUpdates) IsZero() bool {
	return u.Total() == 0
}

// LinkStats is the cached observation of a source file: the change time and
// size recorded at the last synchronization. Two observations are compared
// for equality to decide whether a source file changed; the file content is
// never read.
type LinkStats struct {
	Ctime time.Time
	Size  int64
}

// Equal reports whether two observations are indistinguishable.
func (s LinkStats) Equal(other LinkStats) bool {
	return s.Ctime.Equal(other.Ctime) && s.Size == other.Size
}

// LinkClass is the classification of a symbolic link found under an SFS root.
// It is derived on demand and never persisted.
type LinkClass int

const (
	// ClassActive marks a tracked link whose source still exists.
	ClassActive LinkClass = iota
	// ClassOrphan marks a tracked link whose source is gone, or whose
	// stats-cache entry is gone.
	ClassOrphan
	// ClassForeign marks a link outside every collection's mirror subtree.
	ClassForeign
)

func (c LinkClass) String() string {
	switch c {
	case ClassActive:
		return "active"
	case ClassOrphan:
		return "orphan"
	case ClassForeign:
		return "foreign"
	default:
		return "unknown"
	}
}

// LinkInfo is the result of resolving a single link: its owning collection,
// the real source path, and the stats recorded at the last synchronization.
type LinkInfo struct {
	Collection string
	SourcePath string
	Stats      LinkStats
}

// DirectoryStats aggregates a subtree of the SFS. Ctime is the directory's
// own change time, not aggregated from children.
type DirectoryStats struct {
	Size           int64
	Ctime          time.Time
	ActiveLinks    int
	OrphanLinks    int
	ForeignLinks   int
	Files          int
	SubDirectories int
}
