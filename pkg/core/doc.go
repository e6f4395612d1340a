// Package core implements the synthetic filesystem engine: SFS lifecycle
// and the collection registry, the collection synchronizer, the link
// classifier and orphan reclaimer, and the directory stats aggregator.
//
// An SFS is a directory containing one mirror subtree of symbolic links per
// registered collection, plus a metadata area (see pkg/paths). All state
// lives on disk; an SFS value is a handle loaded from the manifest and is
// threaded explicitly through every operation.
package core
