// Package pathutil converts the absolute paths a walk produces into the
// relative form shown to users.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or path is already relative.
//
// Examples:
//   - ToRelative("/home/user/project/src/haystack.txt", "/home/user/project") → "src/haystack.txt"
//   - ToRelative("/other/location/file.txt", "/home/user/project") → "/other/location/file.txt" (outside root)
//   - ToRelative("src/haystack.txt", "/home/user/project") → "src/haystack.txt" (already relative)
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}

	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		// e.g. different drives on Windows
		return absPath
	}

	// Outside the root the absolute path is clearer
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return absPath
	}

	return relPath
}

// DisplayPath renders a walked path for output: relative to root when it is
// an absolute path inside root, as given otherwise, always with forward slashes.
func DisplayPath(path, root string) string {
	return filepath.ToSlash(ToRelative(path, root))
}
