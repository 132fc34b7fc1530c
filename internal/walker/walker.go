// Package walker enumerates every non-directory entry below a root without
// recursion. Pending subdirectories live on an owned LIFO stack; a directory's
// listing is read lazily in batches and drained completely before the most
// recently discovered subdirectory is opened.
package walker

import (
	"errors"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/standardbeagle/lgrep/internal/debug"
	lgerrors "github.com/standardbeagle/lgrep/internal/errors"
)

// DefaultBatchSize is the number of directory entries read per ReadDir call
const DefaultBatchSize = 256

// Entry is one item of a walk: either a file path or a traversal error.
// Directories are never yielded.
type Entry struct {
	Path string
	Err  error
}

// Stats counts what a walk has produced so far
type Stats struct {
	Files       int
	Directories int // directories opened, root included
	Errors      int
	Pruned      int // directories and files dropped by the filter
}

// Option configures a Walker
type Option func(*Walker)

// WithBatchSize sets how many entries are read from a listing at once
func WithBatchSize(n int) Option {
	return func(w *Walker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

// WithFilter prunes directories and drops files rejected by f
func WithFilter(f *Filter) Option {
	return func(w *Walker) {
		w.filter = f
	}
}

// Walker is a one-shot, lazy sequence of file paths below a root.
// Once exhausted it stays exhausted; construct a new Walker to walk again.
// A Walker is not safe for concurrent use.
type Walker struct {
	root      string
	batchSize int
	filter    *Filter

	dir      fs.ReadDirFile // listing currently being drained
	dirPath  string         // path of dir
	batch    []fs.DirEntry  // entries read and not yet handled
	batchDir string         // directory batch was read from; outlives dir
	pending  []string       // subdirectories waiting to be opened, LIFO
	done     bool
	stats    Stats
}

// New opens the listing of root. It fails when root does not exist, cannot be
// read, or is not a directory.
func New(root string, opts ...Option) (*Walker, error) {
	w := &Walker{
		root:      root,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(w)
	}

	dir, err := openDir(root)
	if err != nil {
		return nil, err
	}
	w.dir = dir
	w.dirPath = root
	w.stats.Directories++
	debug.LogWalk("walking %s", root)
	return w, nil
}

// Root returns the path the walk started from
func (w *Walker) Root() string {
	return w.root
}

// Stats returns counters for the walk so far
func (w *Walker) Stats() Stats {
	return w.stats
}

// Next returns the next entry. The boolean is false once the current listing
// and the pending stack are both exhausted.
func (w *Walker) Next() (Entry, bool) {
	for !w.done {
		if len(w.batch) > 0 {
			de := w.batch[0]
			w.batch = w.batch[1:]
			if path, ok := w.handle(de); ok {
				w.stats.Files++
				return Entry{Path: path}, true
			}
			continue
		}

		if w.dir != nil {
			if err := w.readBatch(); err != nil {
				w.stats.Errors++
				return Entry{Err: err}, true
			}
			continue
		}

		if n := len(w.pending); n > 0 {
			next := w.pending[n-1]
			w.pending = w.pending[:n-1]
			dir, err := openDir(next)
			if err != nil {
				debug.LogWalk("cannot open %s: %v", next, err)
				w.stats.Errors++
				return Entry{Err: err}, true
			}
			w.dir = dir
			w.dirPath = next
			w.stats.Directories++
			continue
		}

		w.done = true
	}
	return Entry{}, false
}

// All adapts the walker to a range-over-func sequence. Breaking out of the
// loop closes the walker.
func (w *Walker) All() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		defer w.Close()
		for {
			e, ok := w.Next()
			if !ok || !yield(e.Path, e.Err) {
				return
			}
		}
	}
}

// Close releases the open listing and abandons the rest of the walk
func (w *Walker) Close() error {
	w.done = true
	w.batch = nil
	w.pending = nil
	return w.closeDir()
}

// readBatch pulls the next batch from the open listing. At the end of the
// listing, or on a read failure, the listing is closed; the failure is
// returned so it surfaces as a single error entry. Entries read alongside a
// failure are still handled.
func (w *Walker) readBatch() error {
	entries, err := w.dir.ReadDir(w.batchSize)
	w.batch = entries
	w.batchDir = w.dirPath

	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		w.closeDir()
		return nil
	default:
		path := w.dirPath
		w.closeDir()
		debug.LogWalk("listing %s failed after %d entries: %v", path, len(entries), err)
		return lgerrors.NewFileError("read directory", path, err)
	}
}

// handle classifies one listing entry: directories are pushed, files returned
func (w *Walker) handle(de fs.DirEntry) (string, bool) {
	path := filepath.Join(w.batchDir, de.Name())

	if isDir(path, de) {
		if w.filter != nil && w.filter.SkipDir(w.rel(path)) {
			w.stats.Pruned++
			return "", false
		}
		w.pending = append(w.pending, path)
		return "", false
	}

	if w.filter != nil && w.filter.SkipFile(w.rel(path)) {
		w.stats.Pruned++
		return "", false
	}
	return path, true
}

func (w *Walker) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}

func (w *Walker) closeDir() error {
	if w.dir == nil {
		return nil
	}
	err := w.dir.Close()
	w.dir = nil
	w.dirPath = ""
	return err
}

// isDir follows symlinks the way a plain stat does; a dangling link is a file
func isDir(path string, de fs.DirEntry) bool {
	if de.Type()&os.ModeSymlink == 0 {
		return de.IsDir()
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func openDir(path string) (fs.ReadDirFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, lgerrors.NewFileError("open directory", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, lgerrors.NewFileError("stat directory", path, err)
	}
	if !info.IsDir() {
		f.Close()
		return nil, lgerrors.NewFileError("open directory", path, errors.New("not a directory")).
			WithType(lgerrors.ErrorTypeNotDirectory)
	}
	return f, nil
}
