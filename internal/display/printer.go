// Package display renders match records and diagnostics for the terminal
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/standardbeagle/lgrep/internal/search"
	"github.com/standardbeagle/lgrep/pkg/pathutil"
)

// Color modes accepted by Options.Color
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Options controls how matches are printed
type Options struct {
	Color        string // auto, always or never
	WithFilename bool   // prefix each line with "<path>:"
	Spans        bool   // append byte and char spans
	JSON         bool   // one JSON object per line instead of text
	Root         string // paths under Root are printed relative to it
}

// Record is the JSON form of one match
type Record struct {
	Path      string `json:"path"`
	Line      int    `json:"line"`
	ByteStart int    `json:"byte_start"`
	ByteEnd   int    `json:"byte_end"`
	CharStart int    `json:"char_start"`
	CharEnd   int    `json:"char_end"`
}

// colorScheme holds the colours used for text output
type colorScheme struct {
	needle *color.Color
	path   *color.Color
	line   *color.Color
	span   *color.Color
}

func newColorScheme(enabled bool) *colorScheme {
	scheme := &colorScheme{
		needle: color.New(color.FgRed, color.Bold),
		path:   color.New(color.FgMagenta),
		line:   color.New(color.FgGreen),
		span:   color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{scheme.needle, scheme.path, scheme.line, scheme.span} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return scheme
}

// Printer writes match records to out. It is not safe for concurrent use.
type Printer struct {
	out     io.Writer
	needle  string
	opts    Options
	colors  *colorScheme
	encoder *json.Encoder
	count   int
}

// NewPrinter creates a printer for matches of needle
func NewPrinter(out io.Writer, needle string, opts Options) *Printer {
	p := &Printer{
		out:    out,
		needle: needle,
		opts:   opts,
		colors: newColorScheme(!opts.JSON && ColorEnabled(opts.Color, out)),
	}
	if opts.JSON {
		p.encoder = json.NewEncoder(out)
	}
	return p
}

// Match prints one record found in path
func (p *Printer) Match(path string, rec search.MatchRecord) error {
	p.count++
	shown := pathutil.DisplayPath(path, p.opts.Root)

	if p.encoder != nil {
		return p.encoder.Encode(Record{
			Path:      shown,
			Line:      rec.Line,
			ByteStart: rec.Span.ByteStart,
			ByteEnd:   rec.Span.ByteEnd,
			CharStart: rec.Span.CharStart,
			CharEnd:   rec.Span.CharEnd,
		})
	}

	var sb strings.Builder
	if p.opts.WithFilename {
		sb.WriteString(p.colors.path.Sprint(shown))
		sb.WriteString(":")
	}
	fmt.Fprintf(&sb, "%s found @ line %s",
		p.colors.needle.Sprint(p.needle),
		p.colors.line.Sprint(rec.Line))
	if p.opts.Spans {
		sb.WriteString(" ")
		sb.WriteString(p.colors.span.Sprintf("(%s)", rec.Span))
	}
	sb.WriteString("\n")

	_, err := io.WriteString(p.out, sb.String())
	return err
}

// Count returns how many records have been printed
func (p *Printer) Count() int {
	return p.count
}

// ColorEnabled resolves a colour mode for w. Auto enables colour only for a
// terminal and honours NO_COLOR.
func ColorEnabled(mode string, w io.Writer) bool {
	switch strings.ToLower(mode) {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
