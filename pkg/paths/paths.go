// Package paths provides centralized path handling for sfs. It defines the
// on-disk layout of an SFS root and the helpers used by the lifecycle
// validations.
package paths

import (
	"path/filepath"
	"strings"

	"github.com/rhino2rhonda/sfs/pkg/errors"
)

// On-disk layout of an SFS root.
// IMPORTANT: These constants define the SFS metadata structure and are NOT
// user-configurable. They must remain consistent across installations so
// that any sfs build can locate any SFS root.
const (
	// MetaDirName is the metadata directory whose presence marks a
	// directory as an SFS root.
	MetaDirName = ".sfs"

	// ManifestFileName is the ordered collection manifest inside MetaDirName.
	ManifestFileName = "sfs.toml"

	// StatsDirName is the subdirectory of MetaDirName holding per-collection
	// stats caches.
	StatsDirName = "stats"
)

// Paths resolves the layout of one SFS root.
type Paths interface {
	Root() string
	MetaDir() string
	ManifestPath() string
	// MirrorPath is the root of a collection's link tree.
	MirrorPath(collection string) string
	// StatsBase is the root of a collection's stats cache area.
	StatsBase(collection string) string
}

type paths struct {
	root string
}

// New creates a Paths for the given SFS root. The root is cleaned but not
// verified; lifecycle code checks for the metadata directory.
func New(root string) Paths {
	return &paths{root: filepath.Clean(root)}
}

func (p *paths) Root() string {
	return p.root
}

func (p *paths) MetaDir() string {
	return filepath.Join(p.root, MetaDirName)
}

func (p *paths) ManifestPath() string {
	return filepath.Join(p.MetaDir(), ManifestFileName)
}

func (p *paths) MirrorPath(collection string) string {
	return filepath.Join(p.root, collection)
}

func (p *paths) StatsBase(collection string) string {
	return filepath.Join(p.MetaDir(), StatsDirName, collection)
}

// ValidateCollectionName ensures a collection name is usable as a mirror
// directory name inside the SFS root.
func ValidateCollectionName(name string) error {
	if name == "" {
		return errors.NewValidation(errors.ErrInvalidName, "collection name cannot be empty")
	}
	if strings.ContainsAny(name, "/\\") {
		return errors.NewValidation(errors.ErrInvalidName, "collection name cannot contain path separators")
	}
	if name == "." || name == ".." || name == MetaDirName {
		return errors.NewValidationf(errors.ErrInvalidName, "collection name %q is reserved", name)
	}
	for _, r := range name {
		if r < 32 {
			return errors.NewValidation(errors.ErrInvalidName, "collection name contains control characters")
		}
	}
	return nil
}

// IsWithin reports whether child is inside parent. A path is not considered
// to be within itself.
func IsWithin(parent, child string) bool {
	rel, err := filepath.Rel(filepath.Clean(parent), filepath.Clean(child))
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// IsWithinOrEqual reports whether child is parent itself or inside it.
func IsWithinOrEqual(parent, child string) bool {
	return filepath.Clean(parent) == filepath.Clean(child) || IsWithin(parent, child)
}
