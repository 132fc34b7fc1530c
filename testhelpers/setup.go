// Package testhelpers provides shared utilities for testing lgrep
package testhelpers

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// CreateTree writes files below a fresh temp directory and returns its path.
// Keys are slash-separated relative paths; a key ending in "/" creates an
// empty directory.
// Usage:
//
//	root := testhelpers.CreateTree(t, map[string]string{
//	    "haystack.txt":       "bla\n",
//	    "a/b/haystack.txt":   "zxc\n",
//	    "empty/":             "",
//	})
func CreateTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			if err := os.MkdirAll(path, 0755); err != nil {
				t.Fatalf("create dir %s: %v", rel, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("create dir for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return root
}

// RelPaths converts absolute walk results to sorted slash paths relative to root
func RelPaths(t *testing.T, root string, paths []string) []string {
	t.Helper()

	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatalf("rel %s: %v", p, err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out
}

// Chmod changes a fixture's mode and restores it at cleanup so t.TempDir
// can remove it.
func Chmod(t *testing.T, path string, mode os.FileMode) {
	t.Helper()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	if err := os.Chmod(path, mode); err != nil {
		t.Fatalf("chmod %s: %v", path, err)
	}
	t.Cleanup(func() {
		os.Chmod(path, info.Mode().Perm())
	})
}

// SkipIfRoot skips tests that rely on permission checks
func SkipIfRoot(t *testing.T) {
	t.Helper()
	if os.Geteuid() == 0 {
		t.Skip("Skipping: permission checks do not apply to root")
	}
}
