// pkg/core/sfs_test.go
// Lifecycle and registry tests run against the real filesystem: symlink
// semantics are the subject under test.

package core_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rhino2rhonda/sfs/pkg/core"
	"github.com/rhino2rhonda/sfs/pkg/errors"
	"github.com/rhino2rhonda/sfs/pkg/filesystem"
	"github.com/rhino2rhonda/sfs/pkg/paths"
	"github.com/rhino2rhonda/sfs/pkg/testutil"
	"github.com/rhino2rhonda/sfs/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var osfs = filesystem.NewOS()

// newTestSFS initializes an SFS in a fresh directory and returns a handle.
func newTestSFS(t *testing.T) (*core.SFS, string) {
	t.Helper()

	sfsRoot := filepath.Join(t.TempDir(), "sfs_root")
	require.NoError(t, os.Mkdir(sfsRoot, 0755))
	require.NoError(t, core.Init(osfs, sfsRoot))

	s, err := core.GetByPath(osfs, sfsRoot)
	require.NoError(t, err)
	require.NotNil(t, s)
	return s, sfsRoot
}

// newSourceDir creates a collection source directory next to (never inside)
// any SFS root.
func newSourceDir(t *testing.T, doc string) string {
	t.Helper()

	src := filepath.Join(t.TempDir(), "col")
	testutil.CreateTree(t, src, doc)
	return src
}

func TestInit(t *testing.T) {
	sfsRoot := filepath.Join(t.TempDir(), "sfs_root")
	require.NoError(t, os.Mkdir(sfsRoot, 0755))

	require.NoError(t, core.Init(osfs, sfsRoot))

	info, err := os.Stat(filepath.Join(sfsRoot, paths.MetaDirName))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestInitNonEmptyDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "occupied"), 0755))

	err := core.Init(osfs, dir)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNonEmptyDir))
	assert.True(t, errors.IsValidation(err))
}

func TestInitNestedSFS(t *testing.T) {
	_, sfsRoot := newTestSFS(t)

	nested := filepath.Join(sfsRoot, "nested")
	require.NoError(t, os.Mkdir(nested, 0755))

	err := core.Init(osfs, nested)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNestedSFS))
}

func TestInitMissingDir(t *testing.T) {
	err := core.Init(osfs, filepath.Join(t.TempDir(), "missing"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidPath))
}

func TestGetByPath(t *testing.T) {
	_, sfsRoot := newTestSFS(t)

	tests := []struct {
		name string
		path string
	}{
		{"root itself", sfsRoot},
		{"existing child", filepath.Join(sfsRoot, paths.MetaDirName)},
		{"nonexistent descendant", filepath.Join(sfsRoot, "a", "b", "c")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := core.GetByPath(osfs, tt.path)
			require.NoError(t, err)
			require.NotNil(t, s)
			assert.Equal(t, sfsRoot, s.Root())
		})
	}
}

func TestGetByPathOutsideSFS(t *testing.T) {
	s, err := core.GetByPath(osfs, t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestAddCollection(t *testing.T) {
	s, sfsRoot := newTestSFS(t)
	src := newSourceDir(t, `
files:
  - name: file_a
    size: 100
  - name: file_b
dirs:
  dir_a:
    files:
      - name: file_aa
`)

	updates, err := s.AddCollection("col", src)
	require.NoError(t, err)
	assert.Equal(t, types.SfsUpdates{Added: 3}, updates)

	// Mirror holds real directories and links to the absolute source paths
	mirror := filepath.Join(sfsRoot, "col")
	target, err := os.Readlink(filepath.Join(mirror, "file_a"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(src, "file_a"), target)

	info, err := os.Lstat(filepath.Join(mirror, "dir_a"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = os.Readlink(filepath.Join(mirror, "dir_a", "file_aa"))
	require.NoError(t, err)

	col, ok := s.CollectionByName("col")
	require.True(t, ok)
	assert.Equal(t, src, col.Root())
	assert.Equal(t, mirror, col.MirrorPath())
}

func TestAddCollectionValidations(t *testing.T) {
	s, sfsRoot := newTestSFS(t)
	src := newSourceDir(t, `files: [{name: file_a}]`)
	_, err := s.AddCollection("col", src)
	require.NoError(t, err)

	insideSFS := filepath.Join(sfsRoot, "inner")
	require.NoError(t, os.Mkdir(insideSFS, 0755))
	insideCol := filepath.Join(src, "sub")
	require.NoError(t, os.Mkdir(insideCol, 0755))
	fresh := filepath.Join(t.TempDir(), "fresh")
	require.NoError(t, os.Mkdir(fresh, 0755))

	otherSfsRoot := filepath.Join(t.TempDir(), "other_sfs")
	require.NoError(t, os.Mkdir(otherSfsRoot, 0755))
	require.NoError(t, core.Init(osfs, otherSfsRoot))
	insideOther := filepath.Join(otherSfsRoot, "inner")
	require.NoError(t, os.Mkdir(insideOther, 0755))

	tests := []struct {
		name     string
		colName  string
		colRoot  string
		wantCode errors.ErrorCode
	}{
		{"missing path", "x", filepath.Join(t.TempDir(), "nope"), errors.ErrInvalidPath},
		{"root inside SFS", "x", insideSFS, errors.ErrNestedSFS},
		{"root is SFS root", "x", sfsRoot, errors.ErrNestedSFS},
		{"root inside another SFS", "x", insideOther, errors.ErrNestedSFS},
		{"root inside existing collection", "x", insideCol, errors.ErrNestedCollection},
		{"root equals existing collection", "x", src, errors.ErrNestedCollection},
		{"duplicate name", "col", fresh, errors.ErrNameExists},
		{"empty name", "", fresh, errors.ErrInvalidName},
		{"reserved name", paths.MetaDirName, fresh, errors.ErrInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddCollection(tt.colName, tt.colRoot)
			assert.True(t, errors.IsErrorCode(err, tt.wantCode),
				"want %s, got %v", tt.wantCode, err)
			assert.True(t, errors.IsValidation(err))
		})
	}

	// Failed validations register nothing
	assert.Len(t, s.Collections(), 1)
}

func TestDelCollection(t *testing.T) {
	s, sfsRoot := newTestSFS(t)
	src := newSourceDir(t, `files: [{name: file_a}]`)
	_, err := s.AddCollection("col", src)
	require.NoError(t, err)

	require.NoError(t, s.DelCollection("col"))

	_, err = os.Lstat(filepath.Join(sfsRoot, "col"))
	assert.True(t, os.IsNotExist(err))
	_, ok := s.CollectionByName("col")
	assert.False(t, ok)

	// Deregistration is persisted
	reloaded, err := core.GetByPath(osfs, sfsRoot)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Collections())
}

func TestDelCollectionUnknown(t *testing.T) {
	s, _ := newTestSFS(t)
	err := s.DelCollection("ghost")
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownCollection))
}

func TestCollectionByPath(t *testing.T) {
	s, sfsRoot := newTestSFS(t)
	src := newSourceDir(t, `files: [{name: file_a}]`)
	_, err := s.AddCollection("col", src)
	require.NoError(t, err)

	mirror := filepath.Join(sfsRoot, "col")
	for _, path := range []string{mirror, filepath.Join(mirror, "deep", "nested", "path")} {
		col, ok := s.CollectionByPath(path)
		require.True(t, ok, path)
		assert.Equal(t, "col", col.Name())
	}

	_, ok := s.CollectionByPath(sfsRoot)
	assert.False(t, ok)
	_, ok = s.CollectionByPath(filepath.Join(sfsRoot, "elsewhere"))
	assert.False(t, ok)
}

func TestCollectionOrdering(t *testing.T) {
	s, sfsRoot := newTestSFS(t)

	// Names deliberately out of lexical order
	for _, name := range []string{"zebra", "alpha", "monkey"} {
		src := newSourceDir(t, `files: [{name: f}]`)
		_, err := s.AddCollection(name, src)
		require.NoError(t, err)
	}

	names := func(s *core.SFS) []string {
		var out []string
		for _, col := range s.Collections() {
			out = append(out, col.Name())
		}
		return out
	}

	want := []string{"zebra", "alpha", "monkey"}
	assert.Equal(t, want, names(s))

	// Order survives a manifest reload
	reloaded, err := core.GetByPath(osfs, sfsRoot)
	require.NoError(t, err)
	assert.Equal(t, want, names(reloaded))
}
