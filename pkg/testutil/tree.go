package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// TreeSpec describes a directory tree. It is usually written as a YAML
// literal in the test:
//
//	files:
//	  - name: file_a
//	    size: 100
//	  - name: file_b
//	links:
//	  - name: link_a
//	dirs:
//	  dir_a:
//	    files:
//	      - name: file_aa
//
// Links without an explicit target are created dangling.
type TreeSpec struct {
	Files []FileSpec          `yaml:"files"`
	Links []LinkSpec          `yaml:"links"`
	Dirs  map[string]TreeSpec `yaml:"dirs"`
}

// FileSpec describes one regular file. Size defaults to zero bytes.
type FileSpec struct {
	Name string `yaml:"name"`
	Size int64  `yaml:"size"`
}

// LinkSpec describes one symbolic link.
type LinkSpec struct {
	Name   string `yaml:"name"`
	Target string `yaml:"target"`
}

// CreateTree builds the tree described by the YAML document under base.
func CreateTree(t *testing.T, base, doc string) {
	t.Helper()

	var spec TreeSpec
	if err := yaml.Unmarshal([]byte(doc), &spec); err != nil {
		t.Fatalf("invalid tree spec: %v", err)
	}
	createSpec(t, base, spec)
}

func createSpec(t *testing.T, base string, spec TreeSpec) {
	t.Helper()

	if err := os.MkdirAll(base, 0755); err != nil {
		t.Fatalf("cannot create %s: %v", base, err)
	}
	for _, f := range spec.Files {
		WriteFileSized(t, filepath.Join(base, f.Name), f.Size)
	}
	for _, l := range spec.Links {
		target := l.Target
		if target == "" {
			target = filepath.Join(base, "missing-"+l.Name)
		}
		if err := os.Symlink(target, filepath.Join(base, l.Name)); err != nil {
			t.Fatalf("cannot create link %s: %v", l.Name, err)
		}
	}
	for name, sub := range spec.Dirs {
		createSpec(t, filepath.Join(base, name), sub)
	}
}

// WriteFileSized creates a regular file of exactly size bytes.
func WriteFileSized(t *testing.T, path string, size int64) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("cannot create parent of %s: %v", path, err)
	}
	content := strings.Repeat("x", int(size))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("cannot write %s: %v", path, err)
	}
}

// DanglingLink creates a symbolic link pointing at a path that does not
// exist.
func DanglingLink(t *testing.T, path string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("cannot create parent of %s: %v", path, err)
	}
	if err := os.Symlink(path+".missing-target", path); err != nil {
		t.Fatalf("cannot create dangling link %s: %v", path, err)
	}
}
