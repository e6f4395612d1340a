// Package testutil provides test helpers for the sfs packages: declarative
// filesystem trees described in YAML, sized dummy files, and dangling
// links. Helpers operate on the real filesystem under t.TempDir; doubles
// for pure metadata logic come from pkg/filesystem's afero adapter.
package testutil
