package display

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	lgerrors "github.com/standardbeagle/lgrep/internal/errors"
)

// Reporter writes diagnostics, one per line, prefixed with the program name
type Reporter struct {
	out    io.Writer
	prefix string
	warn   *color.Color
	fail   *color.Color
	count  int
}

// NewReporter creates a reporter writing to out
func NewReporter(out io.Writer, prefix, colorMode string) *Reporter {
	r := &Reporter{
		out:    out,
		prefix: prefix,
		warn:   color.New(color.FgYellow),
		fail:   color.New(color.FgRed, color.Bold),
	}
	if ColorEnabled(colorMode, out) {
		r.warn.EnableColor()
		r.fail.EnableColor()
	} else {
		r.warn.DisableColor()
		r.fail.DisableColor()
	}
	return r
}

// Warn reports a non-fatal error such as an unreadable directory
func (r *Reporter) Warn(err error) {
	r.count++
	fmt.Fprintf(r.out, "%s: %s %v\n", r.prefix, r.warn.Sprintf("[%s]", lgerrors.KindOf(err)), err)
}

// Fail reports the error that ends the run
func (r *Reporter) Fail(err error) {
	r.count++
	fmt.Fprintf(r.out, "%s: %s\n", r.prefix, r.fail.Sprint(err))
}

// Count returns how many diagnostics were written
func (r *Reporter) Count() int {
	return r.count
}

// Banner prints the search banner
func (r *Reporter) Banner(needle, haystack string) {
	fmt.Fprintf(r.out, "Searching a needle '%s' in a haystack '%s'\n", needle, haystack)
}
