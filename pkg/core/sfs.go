package core

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/rhino2rhonda/sfs/pkg/errors"
	"github.com/rhino2rhonda/sfs/pkg/logging"
	"github.com/rhino2rhonda/sfs/pkg/paths"
	"github.com/rhino2rhonda/sfs/pkg/types"
	"github.com/rs/zerolog"
)

// SFS is a handle on one synthetic filesystem root. It owns the registered
// collections in insertion order.
type SFS struct {
	fs     types.FS
	layout paths.Paths
	order  []string
	byName map[string]*Collection
	logger zerolog.Logger
}

// manifest is the serialized collection registry. A TOML array preserves
// insertion order across reloads.
type manifest struct {
	Collections []manifestEntry `toml:"collections"`
}

type manifestEntry struct {
	Name string `toml:"name"`
	Root string `toml:"root"`
}

// Init initializes path as a new SFS root. The directory must exist, be
// empty, and not be nested inside an existing SFS.
func Init(fsys types.FS, path string) error {
	path = filepath.Clean(path)

	info, err := fsys.Stat(path)
	if err != nil || !info.IsDir() {
		return errors.NewValidationf(errors.ErrInvalidPath, "%q is not an existing directory", path)
	}

	entries, err := fsys.ReadDir(path)
	if err != nil {
		return errors.WrapInternalf(err, errors.ErrWalk, "cannot read %q", path)
	}
	if len(entries) > 0 {
		return errors.NewValidation(errors.ErrNonEmptyDir, "cannot initialize an SFS in a non-empty directory")
	}

	if existing, err := GetByPath(fsys, path); err != nil {
		return err
	} else if existing != nil {
		return errors.NewValidation(errors.ErrNestedSFS, "cannot initialize an SFS inside an SFS")
	}

	layout := paths.New(path)
	if err := fsys.MkdirAll(layout.MetaDir(), 0755); err != nil {
		return errors.WrapInternal(err, errors.ErrInternal, "cannot create SFS metadata directory")
	}
	if err := saveManifest(fsys, layout, manifest{}); err != nil {
		return err
	}

	logger := logging.GetLogger("core")
	logger.Info().Str("root", path).Msg("Initialized SFS")
	return nil
}

// GetByPath returns the SFS whose root is the nearest ancestor of path
// (inclusive) carrying SFS metadata, or nil if path is outside every SFS.
func GetByPath(fsys types.FS, path string) (*SFS, error) {
	cur := filepath.Clean(path)
	for {
		info, err := fsys.Stat(filepath.Join(cur, paths.MetaDirName))
		if err == nil && info.IsDir() {
			return load(fsys, cur)
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, nil
		}
		cur = parent
	}
}

// load builds an SFS handle from the manifest at root.
func load(fsys types.FS, root string) (*SFS, error) {
	layout := paths.New(root)

	data, err := fsys.ReadFile(layout.ManifestPath())
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.WrapInternal(err, errors.ErrInternal, "cannot read SFS manifest")
	}

	var m manifest
	if len(data) > 0 {
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, errors.WrapInternal(err, errors.ErrInternal, "corrupt SFS manifest")
		}
	}

	s := &SFS{
		fs:     fsys,
		layout: layout,
		byName: make(map[string]*Collection, len(m.Collections)),
		logger: logging.GetLogger("core").With().Str("sfs", root).Logger(),
	}
	for _, entry := range m.Collections {
		s.register(newCollection(s, entry.Name, entry.Root))
	}
	return s, nil
}

// Root returns the SFS root directory.
func (s *SFS) Root() string {
	return s.layout.Root()
}

func (s *SFS) register(col *Collection) {
	s.order = append(s.order, col.Name())
	s.byName[col.Name()] = col
}

func (s *SFS) saveManifest() error {
	m := manifest{Collections: make([]manifestEntry, 0, len(s.order))}
	for _, col := range s.Collections() {
		m.Collections = append(m.Collections, manifestEntry{Name: col.Name(), Root: col.Root()})
	}
	return saveManifest(s.fs, s.layout, m)
}

func saveManifest(fsys types.FS, layout paths.Paths, m manifest) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return errors.WrapInternal(err, errors.ErrInternal, "cannot encode SFS manifest")
	}
	if err := fsys.WriteFile(layout.ManifestPath(), data, 0644); err != nil {
		return errors.WrapInternal(err, errors.ErrInternal, "cannot write SFS manifest")
	}
	return nil
}

// AddCollection validates and registers a new collection, then performs the
// initial synchronization that builds its mirror subtree. No state is
// mutated when a validation fails.
func (s *SFS) AddCollection(name, root string) (types.SfsUpdates, error) {
	var none types.SfsUpdates

	root = filepath.Clean(root)
	info, err := s.fs.Stat(root)
	if err != nil || !info.IsDir() {
		return none, errors.NewValidationf(errors.ErrInvalidPath,
			"collection root %q is not an existing directory", root)
	}

	// A root inside any SFS is refused, not just inside this one
	if enclosing, err := GetByPath(s.fs, root); err != nil {
		return none, err
	} else if enclosing != nil {
		return none, errors.NewValidation(errors.ErrNestedSFS,
			"collection root cannot overlap an SFS")
	}
	if paths.IsWithin(root, s.Root()) {
		return none, errors.NewValidation(errors.ErrNestedSFS,
			"collection root cannot overlap an SFS")
	}

	for _, other := range s.Collections() {
		if paths.IsWithinOrEqual(other.Root(), root) {
			return none, errors.NewValidationf(errors.ErrNestedCollection,
				"collection root %q is inside collection %q", root, other.Name())
		}
	}

	if err := paths.ValidateCollectionName(name); err != nil {
		return none, err
	}
	if _, exists := s.byName[name]; exists {
		return none, errors.NewValidationf(errors.ErrNameExists,
			"a collection named %q already exists", name)
	}

	col := newCollection(s, name, root)
	updates, err := col.Update()
	if err != nil {
		return none, err
	}

	s.register(col)
	if err := s.saveManifest(); err != nil {
		return none, err
	}

	s.logger.Info().
		Str("collection", name).
		Str("root", root).
		Int("added", updates.Added).
		Msg("Added collection")
	return updates, nil
}

// DelCollection removes a collection's registration, its mirror subtree and
// its stats cache. Dangling links elsewhere in the SFS tree are left for
// the orphan reclaimer.
func (s *SFS) DelCollection(name string) error {
	col, ok := s.CollectionByName(name)
	if !ok {
		return errors.NewValidationf(errors.ErrUnknownCollection, "no collection named %q", name)
	}

	if err := s.fs.RemoveAll(col.MirrorPath()); err != nil {
		return errors.WrapInternalf(err, errors.ErrLinkRemove,
			"cannot remove mirror subtree of %q", name)
	}
	if err := col.Cache().Clear(); err != nil {
		return err
	}

	delete(s.byName, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if err := s.saveManifest(); err != nil {
		return err
	}

	s.logger.Info().Str("collection", name).Msg("Deleted collection")
	return nil
}

// CollectionByName looks up a collection by its registered name.
func (s *SFS) CollectionByName(name string) (*Collection, bool) {
	col, ok := s.byName[name]
	return col, ok
}

// CollectionByPath returns the collection whose mirror subtree contains
// path. Paths nested arbitrarily deep inside the mirror resolve to the same
// collection.
func (s *SFS) CollectionByPath(path string) (*Collection, bool) {
	path = filepath.Clean(path)
	for _, col := range s.Collections() {
		if paths.IsWithinOrEqual(col.MirrorPath(), path) {
			return col, true
		}
	}
	return nil, false
}

// CollectionByRoot returns the collection whose source root equals root.
func (s *SFS) CollectionByRoot(root string) (*Collection, bool) {
	root = filepath.Clean(root)
	for _, col := range s.Collections() {
		if col.Root() == root {
			return col, true
		}
	}
	return nil, false
}

// Collections returns all collections in the order they were added.
func (s *SFS) Collections() []*Collection {
	cols := make([]*Collection, 0, len(s.order))
	for _, name := range s.order {
		cols = append(cols, s.byName[name])
	}
	return cols
}
