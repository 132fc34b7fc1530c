// Package matcher locates a plain-substring needle inside a single line and
// reports where it sits both as byte offsets and as codepoint offsets.
//
// The two units differ as soon as the line contains multi-byte UTF-8: the
// byte span indexes the raw encoded line, the character span indexes its
// sequence of runes. Only the first occurrence is reported.
package matcher

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Span delimits a match within a line. Start is inclusive, End exclusive.
type Span struct {
	ByteStart int
	ByteEnd   int
	CharStart int
	CharEnd   int
}

// ByteLen is the width of the match in bytes
func (s Span) ByteLen() int { return s.ByteEnd - s.ByteStart }

// CharLen is the width of the match in codepoints
func (s Span) CharLen() int { return s.CharEnd - s.CharStart }

// String renders the span as "bytes a..b chars c..d"
func (s Span) String() string {
	return fmt.Sprintf("bytes %d..%d chars %d..%d", s.ByteStart, s.ByteEnd, s.CharStart, s.CharEnd)
}

// MatchLine returns the span of the first occurrence of needle in line.
//
// An empty needle matches at the start of every line with a zero-width span.
func MatchLine(line, needle string) (Span, bool) {
	byteStart := strings.Index(line, needle)
	if byteStart < 0 {
		return Span{}, false
	}
	byteEnd := byteStart + len(needle)

	span := Span{ByteStart: byteStart, ByteEnd: byteEnd}
	span.CharStart, span.CharEnd = charOffsets(line, byteStart, byteEnd)
	return span, true
}

// charOffsets walks line once, pairing each rune's byte index with its
// codepoint index, and records the codepoint index at byteStart and byteEnd.
// byteEnd == len(line) is never reached inside the loop, so it falls back to
// the total rune count.
func charOffsets(line string, byteStart, byteEnd int) (start, end int) {
	start, end = -1, -1
	chars := 0
	for i := range line {
		if i == byteStart {
			start = chars
		}
		if i == byteEnd {
			end = chars
			break
		}
		chars++
	}
	if start < 0 {
		// empty line: the loop never ran
		start = utf8.RuneCountInString(line)
	}
	if end < 0 {
		end = chars
	}
	return start, end
}
