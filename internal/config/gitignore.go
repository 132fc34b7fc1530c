package config

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GitignoreParser handles parsing and matching the root .gitignore file.
// Nested .gitignore files are not consulted.
type GitignoreParser struct {
	patterns []GitignorePattern
}

type GitignorePattern struct {
	Pattern   string
	Negate    bool
	Directory bool // trailing slash: matches directories and everything below them
	Anchored  bool // leading slash or inner slash: matches from the root only
}

// NewGitignoreParser creates a new gitignore parser
func NewGitignoreParser() *GitignoreParser {
	return &GitignoreParser{
		patterns: make([]GitignorePattern, 0),
	}
}

// LoadGitignore loads patterns from rootPath/.gitignore. A missing file is not an error.
func (gp *GitignoreParser) LoadGitignore(rootPath string) error {
	file, err := os.Open(filepath.Join(rootPath, ".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	return gp.Parse(file)
}

// Parse reads gitignore lines from r
func (gp *GitignoreParser) Parse(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		gp.AddPattern(scanner.Text())
	}
	return scanner.Err()
}

// AddPattern adds a single gitignore line; blanks and comments are ignored
func (gp *GitignoreParser) AddPattern(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	var p GitignorePattern
	if strings.HasPrefix(line, "!") {
		p.Negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.Directory = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.Anchored = true
		line = line[1:]
	} else if strings.Contains(line, "/") && !strings.HasPrefix(line, "**/") {
		p.Anchored = true
	}
	if line == "" {
		return
	}

	p.Pattern = line
	gp.patterns = append(gp.patterns, p)
}

// Patterns returns the parsed patterns in file order
func (gp *GitignoreParser) Patterns() []GitignorePattern {
	return gp.patterns
}

// ShouldIgnore checks a slash-separated path relative to the root.
// The last matching pattern wins, so a later negation re-includes a path.
func (gp *GitignoreParser) ShouldIgnore(path string, isDir bool) bool {
	path = filepath.ToSlash(path)

	ignored := false
	for _, pattern := range gp.patterns {
		if pattern.matches(path, isDir) {
			ignored = !pattern.Negate
		}
	}
	return ignored
}

func (p GitignorePattern) matches(path string, isDir bool) bool {
	parts := strings.Split(path, "/")

	// A directory pattern also covers every path below a matching directory
	if p.Directory {
		limit := len(parts) - 1
		if isDir {
			limit = len(parts)
		}
		for i := 1; i <= limit; i++ {
			if p.matchPath(strings.Join(parts[:i], "/")) {
				return true
			}
		}
		return false
	}

	// File patterns match the path itself or any directory containing it
	for i := 1; i <= len(parts); i++ {
		if p.matchPath(strings.Join(parts[:i], "/")) {
			return true
		}
	}
	return false
}

// matchPath matches one candidate prefix of the path
func (p GitignorePattern) matchPath(candidate string) bool {
	if p.Anchored {
		matched, _ := doublestar.Match(p.Pattern, candidate)
		return matched
	}
	// Unanchored patterns match at any depth
	name := candidate
	if i := strings.LastIndex(candidate, "/"); i >= 0 {
		name = candidate[i+1:]
	}
	if matched, _ := doublestar.Match(p.Pattern, name); matched {
		return true
	}
	matched, _ := doublestar.Match("**/"+p.Pattern, candidate)
	return matched
}
