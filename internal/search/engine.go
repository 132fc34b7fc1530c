// Package search finds the first occurrence of a needle on each line of a
// text source and reports it by 1-based line number.
package search

import (
	"errors"
	"io"
	"iter"
	"os"

	"github.com/standardbeagle/lgrep/internal/debug"
	lgerrors "github.com/standardbeagle/lgrep/internal/errors"
	"github.com/standardbeagle/lgrep/internal/matcher"
)

// MatchRecord is one matching line
type MatchRecord struct {
	Line int
	Span matcher.Span
}

// errStop ends a Stream early without reporting an error
var errStop = errors.New("stop")

// SearchLines returns one record per line containing needle, in line order.
// Lines carrying a decode error are skipped; their numbers are not reused.
func SearchLines(lines iter.Seq[Line], needle string) []MatchRecord {
	var records []MatchRecord
	for line := range lines {
		if rec, ok := matchOne(line, needle); ok {
			records = append(records, rec)
		}
	}
	return records
}

// SearchStrings numbers lines 1..n and searches them
func SearchStrings(lines []string, needle string) []MatchRecord {
	return SearchLines(func(yield func(Line) bool) {
		for i, text := range lines {
			if !yield(Line{Number: i + 1, Text: text}) {
				return
			}
		}
	}, needle)
}

// SearchReader reads r to the end and returns every match. Only read and
// encoding errors are returned; undecodable lines are not errors.
func SearchReader(r io.Reader, needle string, opts Options) ([]MatchRecord, error) {
	var records []MatchRecord
	err := Stream(r, needle, opts, func(rec MatchRecord) error {
		records = append(records, rec)
		return nil
	})
	return records, err
}

// Stream calls fn for each match as soon as its line is read. An error from fn
// stops the scan and is returned as is.
func Stream(r io.Reader, needle string, opts Options, fn func(MatchRecord) error) error {
	lr, err := NewLineReader(r, opts)
	if err != nil {
		return err
	}
	for line := range lr.Lines() {
		rec, ok := matchOne(line, needle)
		if !ok {
			continue
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return lr.Err()
}

// SearchFile opens path and searches it. Failures are *errors.FileError.
func SearchFile(path, needle string, opts Options) ([]MatchRecord, error) {
	var records []MatchRecord
	err := StreamFile(path, needle, opts, func(rec MatchRecord) error {
		records = append(records, rec)
		return nil
	})
	return records, err
}

// StreamFile is Stream over a named file. The file is closed before it returns.
func StreamFile(path, needle string, opts Options, fn func(MatchRecord) error) error {
	debug.LogSearch("searching %s for %q", path, needle)

	f, err := os.Open(path)
	if err != nil {
		return lgerrors.NewFileError("open", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return lgerrors.NewFileError("stat", path, err)
	}
	if info.IsDir() {
		return lgerrors.NewFileError("open", path, errors.New("is a directory")).
			WithType(lgerrors.ErrorTypeIsDirectory)
	}

	var fnErr error
	err = Stream(f, needle, opts, func(rec MatchRecord) error {
		if err := fn(rec); err != nil {
			fnErr = err
			return errStop
		}
		return nil
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return lgerrors.NewFileError("read", path, err)
	}
	return nil
}

func matchOne(line Line, needle string) (MatchRecord, bool) {
	if line.Err != nil {
		return MatchRecord{}, false
	}
	span, ok := matcher.MatchLine(line.Text, needle)
	if !ok {
		return MatchRecord{}, false
	}
	return MatchRecord{Line: line.Number, Span: span}, true
}
