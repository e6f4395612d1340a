// Package filesystem provides filesystem implementations for sfs.
//
// This package contains implementations of the types.FS interface,
// including the standard OS filesystem and test filesystems, plus the
// symlink-aware walk used by the synchronization and query engines.
package filesystem
