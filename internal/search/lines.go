package search

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/standardbeagle/lgrep/internal/debug"
	lgerrors "github.com/standardbeagle/lgrep/internal/errors"
)

const (
	// DefaultEncoding is assumed when Options.Encoding is empty
	DefaultEncoding = "utf-8"

	// DefaultMaxLineBytes bounds a single line when Options.MaxLineBytes is zero
	DefaultMaxLineBytes = 64 * 1024 * 1024

	initialLineBuffer = 64 * 1024
	byteOrderMark     = "\uFEFF"
)

// Line is one line of a text source. Number is its 1-based position in the
// raw stream. Err is set when the line could not be decoded; such a line has
// no Text but still occupies its number.
type Line struct {
	Number int
	Text   string
	Err    error
}

// Options controls how a byte stream is turned into lines
type Options struct {
	Encoding     string // IANA/WHATWG encoding name; "" means utf-8
	MaxLineBytes int    // longest accepted line; 0 means DefaultMaxLineBytes
}

// LookupEncoding resolves an encoding name. UTF-8 returns a nil encoding:
// it is validated per line instead of transcoded.
func LookupEncoding(name string) (encoding.Encoding, error) {
	if isUTF8(name) {
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	return enc, nil
}

func isUTF8(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}

// LineReader splits a stream on universal newlines (\n, \r\n or a lone \r).
// A final line without a terminator is still a line. A byte order mark at the
// start of line 1 is dropped, so spans on that line count from the first
// character after it.
//
// In UTF-8 mode each line is validated and invalid lines are reported with a
// DecodeError. Other encodings are transcoded to UTF-8 as the stream is read,
// with undecodable sequences replaced by U+FFFD.
type LineReader struct {
	scanner  *bufio.Scanner
	encoding string
	validate bool
	number   int
}

// NewLineReader wraps r. It fails only for an unknown encoding.
func NewLineReader(r io.Reader, opts Options) (*LineReader, error) {
	name := opts.Encoding
	if name == "" {
		name = DefaultEncoding
	}
	enc, err := LookupEncoding(name)
	if err != nil {
		return nil, err
	}

	src := r
	if enc != nil {
		src = transform.NewReader(r, enc.NewDecoder())
	}

	maxLine := opts.MaxLineBytes
	if maxLine <= 0 {
		maxLine = DefaultMaxLineBytes
	}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, min(initialLineBuffer, maxLine)), maxLine)
	scanner.Split(ScanUniversalLines)

	return &LineReader{
		scanner:  scanner,
		encoding: name,
		validate: enc == nil,
	}, nil
}

// Next returns the next line, or false at the end of the stream or on a read
// error (see Err).
func (lr *LineReader) Next() (Line, bool) {
	if !lr.scanner.Scan() {
		return Line{}, false
	}
	lr.number++
	raw := lr.scanner.Bytes()

	if lr.validate {
		if bad := firstInvalid(raw); bad >= 0 {
			debug.LogSearch("skipping line %d: invalid %s at byte %d", lr.number, lr.encoding, bad)
			return Line{Number: lr.number, Err: lgerrors.NewDecodeError(lr.number, lr.encoding, bad)}, true
		}
	}

	text := string(raw)
	if lr.number == 1 {
		text = strings.TrimPrefix(text, byteOrderMark)
	}
	return Line{Number: lr.number, Text: text}, true
}

// Err returns the first read error, if any. Reaching the end is not an error.
func (lr *LineReader) Err() error {
	return lr.scanner.Err()
}

// Lines adapts the reader to a range-over-func sequence
func (lr *LineReader) Lines() iter.Seq[Line] {
	return func(yield func(Line) bool) {
		for {
			line, ok := lr.Next()
			if !ok || !yield(line) {
				return
			}
		}
	}
}

// ScanUniversalLines is a bufio.SplitFunc that ends lines at \n, \r\n or a
// lone \r and drops the terminator.
func ScanUniversalLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i, b := range data {
		switch b {
		case '\n':
			return i + 1, data[:i], nil
		case '\r':
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			if !atEOF {
				// need one more byte to tell \r from \r\n
				return 0, nil, nil
			}
			return i + 1, data[:i], nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// firstInvalid returns the offset of the first invalid UTF-8 sequence, or -1
func firstInvalid(b []byte) int {
	if utf8.Valid(b) {
		return -1
	}
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}
