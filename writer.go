package jsonwire

import (
	"strings"
)

// Writer is the push-based counterpart of Reader: it emits raw JSON tokens
// into a growing buffer. Everything a Writer produces is re-readable by a
// Reader, using the same escape rule set.
//
// Like the Reader, the Writer maintains a stack of sinks. BeginEncrypt pushes
// a plaintext buffer on top; EndEncrypt pops it, encrypts the buffered text
// and emits the ciphertext as a single string token into the sink below.
//
// A Writer owns all of its mutable state and must not be shared between
// concurrent operations.
type Writer struct {
	stack []*strings.Builder
}

// NewWriter creates an empty Writer.
func NewWriter() *Writer {
	return &Writer{stack: []*strings.Builder{{}}}
}

// String returns the JSON text emitted into the primary sink so far.
func (w *Writer) String() string {
	return w.stack[0].String()
}

func (w *Writer) sink() *strings.Builder {
	return w.stack[len(w.stack)-1]
}

// WriteOpenObject emits "{".
func (w *Writer) WriteOpenObject() { w.sink().WriteByte('{') }

// WriteCloseObject emits "}".
func (w *Writer) WriteCloseObject() { w.sink().WriteByte('}') }

// WriteOpenArray emits "[".
func (w *Writer) WriteOpenArray() { w.sink().WriteByte('[') }

// WriteCloseArray emits "]".
func (w *Writer) WriteCloseArray() { w.sink().WriteByte(']') }

// WriteNameSeparator emits ":".
func (w *Writer) WriteNameSeparator() { w.sink().WriteByte(':') }

// WriteItemSeparator emits ",".
func (w *Writer) WriteItemSeparator() { w.sink().WriteByte(',') }

// WriteNull emits the null literal.
func (w *Writer) WriteNull() { w.sink().WriteString("null") }

// WriteBool emits a boolean literal.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.sink().WriteString("true")
	} else {
		w.sink().WriteString("false")
	}
}

// WriteNumber emits a numeric literal verbatim. The literal is the caller's
// responsibility; it is written without conversion so representation is
// preserved byte for byte.
func (w *Writer) WriteNumber(literal string) {
	w.sink().WriteString(literal)
}

// WriteString emits a quoted, escaped string token.
func (w *Writer) WriteString(v string) {
	b := w.sink()
	b.WriteByte('"')
	from := 0
	for i := 0; i < len(v); i++ {
		esc := escapeByte(v[i])
		if esc == "" {
			continue
		}
		b.WriteString(v[from:i])
		b.WriteString(esc)
		from = i + 1
	}
	b.WriteString(v[from:])
	b.WriteByte('"')
}

// WriteName emits a member name followed by the name/value separator.
func (w *Writer) WriteName(name string) {
	w.WriteString(name)
	w.WriteNameSeparator()
}

// WriteRaw emits text verbatim into the active sink.
func (w *Writer) WriteRaw(raw string) {
	w.sink().WriteString(raw)
}

// escapeByte returns the escape sequence for c, or "" if c needs no escaping.
// The set matches the Reader's decoder: " \ and the named control escapes.
func escapeByte(c byte) string {
	switch c {
	case '"':
		return `\"`
	case '\\':
		return `\\`
	case '\b':
		return `\b`
	case '\f':
		return `\f`
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	default:
		return ""
	}
}
