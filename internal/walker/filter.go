package walker

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/lgrep/internal/config"
	"github.com/standardbeagle/lgrep/internal/debug"
)

// Filter decides which paths a walk skips. Paths are slash-separated and
// relative to the walk root. A nil *Filter keeps everything.
type Filter struct {
	include   []string // doublestar patterns; empty means include everything
	exclude   []string // doublestar patterns
	gitignore *config.GitignoreParser
}

// NewFilter validates the glob patterns and, when respectGitignore is set,
// loads the root's .gitignore.
func NewFilter(root string, include, exclude []string, respectGitignore bool) (*Filter, error) {
	for _, pattern := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern %q", pattern)
		}
	}

	f := &Filter{
		include: append([]string{}, include...),
		exclude: append([]string{}, exclude...),
	}

	if respectGitignore {
		f.gitignore = config.NewGitignoreParser()
		if err := f.gitignore.LoadGitignore(root); err != nil {
			debug.LogWalk("failed to load .gitignore from %s: %v", root, err)
		}
	}
	return f, nil
}

// FilterFromConfig builds the filter described by the walk section of cfg.
// It returns nil when nothing would be filtered.
func FilterFromConfig(root string, cfg *config.Config) (*Filter, error) {
	w := cfg.Walk
	if len(w.Include) == 0 && len(w.Exclude) == 0 && !w.RespectGitignore {
		return nil, nil
	}
	return NewFilter(root, w.Include, w.Exclude, w.RespectGitignore)
}

// SkipDir reports whether a directory should not be descended into
func (f *Filter) SkipDir(rel string) bool {
	if f == nil {
		return false
	}
	// Check with trailing slash for directory patterns
	if f.excluded(rel) || f.excluded(rel+"/") {
		debug.LogWalk("pruned directory %s", rel)
		return true
	}
	if f.gitignore != nil && f.gitignore.ShouldIgnore(rel, true) {
		debug.LogWalk("pruned ignored directory %s", rel)
		return true
	}
	return false
}

// SkipFile reports whether a file should be left out of the walk
func (f *Filter) SkipFile(rel string) bool {
	if f == nil {
		return false
	}
	if f.excluded(rel) || !f.included(rel) {
		return true
	}
	return f.gitignore != nil && f.gitignore.ShouldIgnore(rel, false)
}

func (f *Filter) excluded(rel string) bool {
	for _, pattern := range f.exclude {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

func (f *Filter) included(rel string) bool {
	// If no inclusion patterns, include everything
	if len(f.include) == 0 {
		return true
	}
	for _, pattern := range f.include {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}
