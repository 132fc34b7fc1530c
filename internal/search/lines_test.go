package search

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"

	lgerrors "github.com/standardbeagle/lgrep/internal/errors"
	"github.com/standardbeagle/lgrep/internal/matcher"
)

func readAll(t *testing.T, input []byte, opts Options) []Line {
	t.Helper()
	lr, err := NewLineReader(bytes.NewReader(input), opts)
	require.NoError(t, err)

	var lines []Line
	for line := range lr.Lines() {
		lines = append(lines, line)
	}
	require.NoError(t, lr.Err())
	return lines
}

func texts(lines []Line) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Text)
	}
	return out
}

func TestLineReader_Newlines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"lf", "a\nb\nc\n", []string{"a", "b", "c"}},
		{"crlf", "a\r\nb\r\nc\r\n", []string{"a", "b", "c"}},
		{"cr", "a\rb\rc\r", []string{"a", "b", "c"}},
		{"unterminated", "a\nb", []string{"a", "b"}},
		{"empty lines", "\n\r\n\r", []string{"", "", ""}},
		{"cr then lf is one break", "a\r\n\nb", []string{"a", "", "b"}},
		{"lf then cr is two breaks", "a\n\rb", []string{"a", "", "b"}},
		{"empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := readAll(t, []byte(tt.input), Options{})
			assert.Equal(t, tt.want, texts(lines))
			for i, l := range lines {
				assert.Equal(t, i+1, l.Number)
			}
		})
	}
}

// A \r\n pair split across reads must still be a single terminator
func TestScanUniversalLines_CRLFAcrossBuffers(t *testing.T) {
	advance, token, err := ScanUniversalLines([]byte("abc\r"), false)
	require.NoError(t, err)
	assert.Zero(t, advance)
	assert.Nil(t, token)

	advance, token, err = ScanUniversalLines([]byte("abc\r\nx"), false)
	require.NoError(t, err)
	assert.Equal(t, 5, advance)
	assert.Equal(t, []byte("abc"), token)

	advance, token, err = ScanUniversalLines([]byte("abc\r"), true)
	require.NoError(t, err)
	assert.Equal(t, 4, advance)
	assert.Equal(t, []byte("abc"), token)
}

func TestLineReader_SmallReads(t *testing.T) {
	input := "one\r\ntwo\rthree\nfour"
	lr, err := NewLineReader(&oneByteReader{data: []byte(input)}, Options{})
	require.NoError(t, err)

	var got []string
	for line := range lr.Lines() {
		got = append(got, line.Text)
	}
	assert.Equal(t, []string{"one", "two", "three", "four"}, got)
}

func TestLineReader_InvalidUTF8(t *testing.T) {
	lines := readAll(t, []byte("ok\nab\xc3\x28cd\nfine\n"), Options{})
	require.Len(t, lines, 3)

	assert.NoError(t, lines[0].Err)
	assert.Equal(t, "fine", lines[2].Text)
	assert.Equal(t, 3, lines[2].Number)

	var decodeErr *lgerrors.DecodeError
	require.True(t, errors.As(lines[1].Err, &decodeErr))
	assert.Equal(t, 2, decodeErr.Line)
	assert.Equal(t, 2, decodeErr.Offset)
	assert.Empty(t, lines[1].Text)
}

func TestLineReader_StripsUTF8BOM(t *testing.T) {
	lines := readAll(t, []byte("\xef\xbb\xbfbla\n\xef\xbb\xbfbla\n"), Options{})
	require.Len(t, lines, 2)
	assert.Equal(t, "bla", lines[0].Text)
	assert.Equal(t, "\uFEFFbla", lines[1].Text, "only the leading mark is removed")
}

func TestSearchReader_SpansAfterBOM(t *testing.T) {
	recs, err := SearchReader(strings.NewReader("\uFEFFbla\n\uFEFFbla\n"), "bla", Options{})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, matcher.Span{ByteStart: 0, ByteEnd: 3, CharStart: 0, CharEnd: 3}, recs[0].Span)
	assert.Equal(t, matcher.Span{ByteStart: 3, ByteEnd: 6, CharStart: 1, CharEnd: 4}, recs[1].Span)
}

func TestLineReader_Encodings(t *testing.T) {
	utf16le, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String("йцу\r\nфыв\n")
	require.NoError(t, err)
	utf16be, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder().String("йцу\nфыв")
	require.NoError(t, err)
	latin1, err := charmap.ISO8859_1.NewEncoder().String("café\nnaïve\n")
	require.NoError(t, err)
	sjis, err := japanese.ShiftJIS.NewEncoder().String("日本\n語\n")
	require.NoError(t, err)

	tests := []struct {
		name     string
		encoding string
		input    string
		want     []string
	}{
		{"utf-16le with bom", "utf-16le", utf16le, []string{"йцу", "фыв"}},
		{"utf-16be", "utf-16be", utf16be, []string{"йцу", "фыв"}},
		{"latin1", "latin1", latin1, []string{"café", "naïve"}},
		{"shift_jis", "shift_jis", sjis, []string{"日本", "語"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := readAll(t, []byte(tt.input), Options{Encoding: tt.encoding})
			assert.Equal(t, tt.want, texts(lines))
		})
	}
}

func TestSearchReader_SpansAreUTF8OffsetsAfterDecoding(t *testing.T) {
	input, err := charmap.ISO8859_1.NewEncoder().String("xx\ncafé au lait\n")
	require.NoError(t, err)

	got, err := SearchReader(strings.NewReader(input), "au", Options{Encoding: "latin1"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, 2, got[0].Line)
	assert.Equal(t, 6, got[0].Span.ByteStart)
	assert.Equal(t, 5, got[0].Span.CharStart)
}

func TestLookupEncoding(t *testing.T) {
	for _, name := range []string{"", "utf-8", "UTF8", " utf-8 "} {
		enc, err := LookupEncoding(name)
		require.NoError(t, err, name)
		assert.Nil(t, enc, name)
	}

	enc, err := LookupEncoding("windows-1252")
	require.NoError(t, err)
	assert.NotNil(t, enc)

	_, err = LookupEncoding("klingon-8")
	assert.Error(t, err)
}

func TestLineReader_TooLong(t *testing.T) {
	lr, err := NewLineReader(strings.NewReader(strings.Repeat("x", 64)+"\n"), Options{MaxLineBytes: 8})
	require.NoError(t, err)

	_, ok := lr.Next()
	assert.False(t, ok)
	assert.ErrorIs(t, lr.Err(), bufio.ErrTooLong)
}

func TestLineReader_StopsWhenYieldReturnsFalse(t *testing.T) {
	lr, err := NewLineReader(strings.NewReader("a\nb\nc\n"), Options{})
	require.NoError(t, err)

	for line := range lr.Lines() {
		assert.Equal(t, "a", line.Text)
		break
	}

	line, ok := lr.Next()
	require.True(t, ok)
	assert.Equal(t, 2, line.Number)
}

type oneByteReader struct {
	data []byte
}

func (r *oneByteReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	p[0] = r.data[0]
	r.data = r.data[1:]
	return 1, nil
}
