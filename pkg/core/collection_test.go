package core_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rhino2rhonda/sfs/pkg/testutil"
	"github.com/rhino2rhonda/sfs/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateIdempotence(t *testing.T) {
	s, _ := newTestSFS(t)
	src := newSourceDir(t, `
files:
  - name: file_a
  - name: file_b
dirs:
  dir_a:
    files:
      - name: file_aa
`)
	_, err := s.AddCollection("col", src)
	require.NoError(t, err)
	col, _ := s.CollectionByName("col")

	updates, err := col.Update()
	require.NoError(t, err)
	assert.True(t, updates.IsZero(), "second update should be a no-op, got %+v", updates)
}

func TestUpdateDiff(t *testing.T) {
	s, _ := newTestSFS(t)
	src := newSourceDir(t, `files: [{name: file_a, size: 10}]`)
	_, err := s.AddCollection("col", src)
	require.NoError(t, err)
	col, _ := s.CollectionByName("col")

	// New source file -> added
	testutil.WriteFileSized(t, filepath.Join(src, "file_b"), 5)
	updates, err := col.Update()
	require.NoError(t, err)
	assert.Equal(t, types.SfsUpdates{Added: 1}, updates)

	// Size change -> updated
	testutil.WriteFileSized(t, filepath.Join(src, "file_a"), 20)
	updates, err = col.Update()
	require.NoError(t, err)
	assert.Equal(t, types.SfsUpdates{Updated: 1}, updates)

	// Touch without content change -> still updated
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(src, "file_a"), future, future))
	updates, err = col.Update()
	require.NoError(t, err)
	assert.Equal(t, types.SfsUpdates{Updated: 1}, updates)

	// Source file removed -> deleted, link and cache entry dropped
	require.NoError(t, os.Remove(filepath.Join(src, "file_b")))
	updates, err = col.Update()
	require.NoError(t, err)
	assert.Equal(t, types.SfsUpdates{Deleted: 1}, updates)

	_, err = os.Lstat(filepath.Join(col.MirrorPath(), "file_b"))
	assert.True(t, os.IsNotExist(err))
	_, ok, err := col.Cache().Get("file_b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateLeavesLinkTargetAlone(t *testing.T) {
	s, _ := newTestSFS(t)
	src := newSourceDir(t, `files: [{name: file_a, size: 10}]`)
	_, err := s.AddCollection("col", src)
	require.NoError(t, err)
	col, _ := s.CollectionByName("col")

	linkPath := filepath.Join(col.MirrorPath(), "file_a")
	before, err := os.Readlink(linkPath)
	require.NoError(t, err)

	// Replace the source file content entirely
	testutil.WriteFileSized(t, filepath.Join(src, "file_a"), 99)
	_, err = col.Update()
	require.NoError(t, err)

	after, err := os.Readlink(linkPath)
	require.NoError(t, err)
	assert.Equal(t, before, after, "link target path must not change on update")

	// The refreshed cache reflects the new observation
	stats, ok, err := col.Cache().Get("file_a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 99, stats.Size)
}

func TestUpdateSkipsSourceLinks(t *testing.T) {
	s, _ := newTestSFS(t)
	src := newSourceDir(t, `
files:
  - name: file_a
links:
  - name: link_a
`)

	updates, err := s.AddCollection("col", src)
	require.NoError(t, err)
	assert.Equal(t, types.SfsUpdates{Added: 1}, updates)

	col, _ := s.CollectionByName("col")
	_, err = os.Lstat(filepath.Join(col.MirrorPath(), "link_a"))
	assert.True(t, os.IsNotExist(err))
}

func TestUpdateReplacesOccupiedSlot(t *testing.T) {
	s, _ := newTestSFS(t)
	src := newSourceDir(t, `files: [{name: file_a}]`)
	_, err := s.AddCollection("col", src)
	require.NoError(t, err)
	col, _ := s.CollectionByName("col")

	// A plain file squats on the mirror slot
	linkPath := filepath.Join(col.MirrorPath(), "file_a")
	require.NoError(t, os.Remove(linkPath))
	testutil.WriteFileSized(t, linkPath, 3)

	updates, err := col.Update()
	require.NoError(t, err)
	assert.Equal(t, 1, updates.Added)

	info, err := os.Lstat(linkPath)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)
}

func TestUpdateRemovesStaleDirs(t *testing.T) {
	s, _ := newTestSFS(t)
	src := newSourceDir(t, `
dirs:
  dir_a:
    files:
      - name: file_aa
      - name: file_ab
`)
	_, err := s.AddCollection("col", src)
	require.NoError(t, err)
	col, _ := s.CollectionByName("col")

	require.NoError(t, os.RemoveAll(filepath.Join(src, "dir_a")))
	updates, err := col.Update()
	require.NoError(t, err)
	assert.Equal(t, types.SfsUpdates{Deleted: 2}, updates)

	_, err = os.Lstat(filepath.Join(col.MirrorPath(), "dir_a"))
	assert.True(t, os.IsNotExist(err))
}

func TestUpdateSourceFileBecomesDir(t *testing.T) {
	s, _ := newTestSFS(t)
	src := newSourceDir(t, `files: [{name: thing, size: 10}]`)
	_, err := s.AddCollection("col", src)
	require.NoError(t, err)
	col, _ := s.CollectionByName("col")

	// The tracked file turns into a directory of the same name
	require.NoError(t, os.Remove(filepath.Join(src, "thing")))
	require.NoError(t, os.Mkdir(filepath.Join(src, "thing"), 0755))
	testutil.WriteFileSized(t, filepath.Join(src, "thing", "inner"), 7)

	updates, err := col.Update()
	require.NoError(t, err)
	assert.Equal(t, types.SfsUpdates{Added: 1, Deleted: 1}, updates)

	// The source tree is untouched
	info, err := os.Lstat(filepath.Join(src, "thing", "inner"))
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular())
	assert.EqualValues(t, 7, info.Size())

	// The mirror slot is a real directory holding a fresh link
	info, err = os.Lstat(filepath.Join(col.MirrorPath(), "thing"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	resolved, err := os.Stat(filepath.Join(col.MirrorPath(), "thing", "inner"))
	require.NoError(t, err)
	assert.EqualValues(t, 7, resolved.Size())

	updates, err = col.Update()
	require.NoError(t, err)
	assert.True(t, updates.IsZero())
}

func TestUpdateSourceDirBecomesFile(t *testing.T) {
	s, _ := newTestSFS(t)
	src := newSourceDir(t, `
dirs:
  dir_a:
    files:
      - name: file_aa
`)
	_, err := s.AddCollection("col", src)
	require.NoError(t, err)
	col, _ := s.CollectionByName("col")

	// The tracked directory turns into a file of the same name
	require.NoError(t, os.RemoveAll(filepath.Join(src, "dir_a")))
	testutil.WriteFileSized(t, filepath.Join(src, "dir_a"), 4)

	updates, err := col.Update()
	require.NoError(t, err)
	assert.Equal(t, types.SfsUpdates{Added: 1, Deleted: 1}, updates)

	info, err := os.Lstat(filepath.Join(col.MirrorPath(), "dir_a"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)

	_, ok, err := col.Cache().Get("dir_a")
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = col.Cache().Get(filepath.Join("dir_a", "file_aa"))
	require.NoError(t, err)
	assert.False(t, ok)

	updates, err = col.Update()
	require.NoError(t, err)
	assert.True(t, updates.IsZero())
}

func TestUpdateConvergesAfterManualDamage(t *testing.T) {
	s, _ := newTestSFS(t)
	src := newSourceDir(t, `files: [{name: file_a}, {name: file_b}]`)
	_, err := s.AddCollection("col", src)
	require.NoError(t, err)
	col, _ := s.CollectionByName("col")

	// Someone removed a mirror link by hand; the next update restores it
	require.NoError(t, os.Remove(filepath.Join(col.MirrorPath(), "file_a")))
	updates, err := col.Update()
	require.NoError(t, err)
	assert.Equal(t, types.SfsUpdates{Added: 1}, updates)

	updates, err = col.Update()
	require.NoError(t, err)
	assert.True(t, updates.IsZero())
}
