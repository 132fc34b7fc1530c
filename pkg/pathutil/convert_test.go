package pathutil

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestToRelative(t *testing.T) {
	tests := []struct {
		name     string
		absPath  string
		rootDir  string
		expected string
	}{
		{
			name:     "simple relative path",
			absPath:  "/home/user/project/src/haystack.txt",
			rootDir:  "/home/user/project",
			expected: "src/haystack.txt",
		},
		{
			name:     "nested relative path",
			absPath:  "/home/user/project/a/b/c/haystack.txt",
			rootDir:  "/home/user/project",
			expected: "a/b/c/haystack.txt",
		},
		{
			name:     "root level file",
			absPath:  "/home/user/project/README.md",
			rootDir:  "/home/user/project",
			expected: "README.md",
		},
		{
			name:     "same directory",
			absPath:  "/home/user/project",
			rootDir:  "/home/user/project",
			expected: ".",
		},
		{
			name:     "already relative path",
			absPath:  "src/haystack.txt",
			rootDir:  "/home/user/project",
			expected: "src/haystack.txt", // Should return as-is if already relative
		},
		{
			name:     "path outside root - fallback to absolute",
			absPath:  "/other/location/file.go",
			rootDir:  "/home/user/project",
			expected: "/other/location/file.go", // Should return absolute if outside root
		},
		{
			name:     "empty root directory",
			absPath:  "/home/user/project/file.go",
			rootDir:  "",
			expected: "/home/user/project/file.go", // Fallback to absolute
		},
		{
			name:     "empty absolute path",
			absPath:  "",
			rootDir:  "/home/user/project",
			expected: "", // Empty stays empty
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToRelative(tt.absPath, tt.rootDir)

			// Normalize separators for cross-platform testing
			if runtime.GOOS == "windows" {
				result = filepath.ToSlash(result)
				expected := filepath.ToSlash(tt.expected)
				if result != expected {
					t.Errorf("ToRelative() = %v, want %v", result, expected)
				}
			} else {
				if result != tt.expected {
					t.Errorf("ToRelative() = %v, want %v", result, tt.expected)
				}
			}
		})
	}
}

func TestToRelativeDotDotPrefixedName(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix paths")
	}
	if got := ToRelative("/root/..data/x.txt", "/root"); got != "..data/x.txt" {
		t.Errorf("ToRelative() = %v, want ..data/x.txt", got)
	}
}

func TestDisplayPath(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		name     string
		path     string
		root     string
		expected string
	}{
		{"absolute under root", filepath.Join(root, "a", "haystack.txt"), root, "a/haystack.txt"},
		{"relative walk", filepath.Join("a", "b", "haystack.txt"), "a", "a/b/haystack.txt"},
		{"no root", filepath.Join("a", "haystack.txt"), "", "a/haystack.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayPath(tt.path, tt.root); got != tt.expected {
				t.Errorf("DisplayPath() = %v, want %v", got, tt.expected)
			}
		})
	}
}
