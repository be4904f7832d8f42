package jsonwire

import (
	"strings"
)

// Reader is a pull-based JSON token scanner. It exposes exactly one active
// token at a time via Kind, Value and Bool, and is advanced explicitly by the
// caller. Whitespace runs are surfaced as their own token kind so the scanner
// never loses information about the raw input.
//
// Internally the reader maintains a stack of character sources; BeginDecrypt
// pushes a decrypted plaintext source on top and EndDecrypt pops it, so the
// rest of the traversal reads nested encrypted content with no special
// handling. Only the top source is ever scanned.
//
// A Reader owns all of its mutable state and must not be shared between
// concurrent operations.
type Reader struct {
	frames []readerFrame
	crypto []bool // per BeginDecrypt activation: whether a source was pushed

	kind  TokenKind
	str   string // decoded string value, or raw numeric literal, or whitespace run
	truth bool
}

type readerFrame struct {
	src string
	pos int
}

// NewReader creates a Reader over the given JSON text.
func NewReader(src string) *Reader {
	return &Reader{frames: []readerFrame{{src: src}}}
}

// Kind returns the kind of the current token.
func (r *Reader) Kind() TokenKind { return r.kind }

// Value returns the current token's textual value: the decoded string for
// String tokens, the verbatim literal for Number tokens, and the raw run for
// Whitespace tokens.
func (r *Reader) Value() string { return r.str }

// Bool returns the current Boolean token's value.
func (r *Reader) Bool() bool { return r.truth }

func (r *Reader) top() *readerFrame {
	return &r.frames[len(r.frames)-1]
}

// offset reports the scan position within the active source, for error context.
func (r *Reader) offset() int {
	return r.top().pos
}

// Advance reads exactly one token, including whitespace runs. It returns
// false at end of input and an error for malformed input.
func (r *Reader) Advance() (bool, error) {
	f := r.top()
	if f.pos >= len(f.src) {
		r.kind = KindNone
		r.str = ""
		return false, nil
	}

	c := f.src[f.pos]
	switch {
	case isWhitespaceByte(c):
		start := f.pos
		for f.pos < len(f.src) && isWhitespaceByte(f.src[f.pos]) {
			f.pos++
		}
		r.setToken(KindWhitespace, f.src[start:f.pos])
	case c == '{':
		f.pos++
		r.setToken(KindOpenObject, "")
	case c == '}':
		f.pos++
		r.setToken(KindCloseObject, "")
	case c == '[':
		f.pos++
		r.setToken(KindOpenArray, "")
	case c == ']':
		f.pos++
		r.setToken(KindCloseArray, "")
	case c == ':':
		f.pos++
		r.setToken(KindNameSeparator, "")
	case c == ',':
		f.pos++
		r.setToken(KindItemSeparator, "")
	case c == '"':
		s, err := r.scanString(f)
		if err != nil {
			return false, err
		}
		r.setToken(KindString, s)
	case c == 't':
		if err := r.scanKeyword(f, "true"); err != nil {
			return false, err
		}
		r.setToken(KindBoolean, "")
		r.truth = true
	case c == 'f':
		if err := r.scanKeyword(f, "false"); err != nil {
			return false, err
		}
		r.setToken(KindBoolean, "")
		r.truth = false
	case c == 'n':
		if err := r.scanKeyword(f, "null"); err != nil {
			return false, err
		}
		r.setToken(KindNull, "")
	case isNumberByte(c):
		start := f.pos
		for f.pos < len(f.src) && isNumberByte(f.src[f.pos]) {
			f.pos++
		}
		// The raw literal is kept verbatim; no float conversion happens here.
		r.setToken(KindNumber, f.src[start:f.pos])
	default:
		return false, newParseError("advance", f.pos, "unrecognized character %q", c)
	}
	return true, nil
}

func (r *Reader) setToken(kind TokenKind, value string) {
	r.kind = kind
	r.str = value
	r.truth = false
}

// AdvanceSkippingWhitespace advances until a non-whitespace token or end of
// input. It returns false only at genuine end of input.
func (r *Reader) AdvanceSkippingWhitespace() (bool, error) {
	for {
		ok, err := r.Advance()
		if err != nil || !ok {
			return ok, err
		}
		if r.kind != KindWhitespace {
			return true, nil
		}
	}
}

// PeekNextKind classifies the next non-whitespace character into a token kind
// without consuming it. Whitespace carries no semantic value and is discarded
// during the peek. Returns KindNone at end of input.
func (r *Reader) PeekNextKind() (TokenKind, error) {
	f := r.top()
	for f.pos < len(f.src) && isWhitespaceByte(f.src[f.pos]) {
		f.pos++
	}
	if f.pos >= len(f.src) {
		return KindNone, nil
	}
	kind, ok := classifyByte(f.src[f.pos])
	if !ok {
		return KindNone, newParseError("peek", f.pos, "unrecognized character %q", f.src[f.pos])
	}
	return kind, nil
}

// DiscardValue skips exactly one JSON value. The current token must be the
// value's first token. Containers are skipped by tracking nesting depth with
// an explicit counter, so skip depth is unbounded without growing the call
// stack; scalars need no further reads.
func (r *Reader) DiscardValue() error {
	switch r.kind {
	case KindOpenObject, KindOpenArray:
	default:
		return nil
	}
	depth := 1
	for depth > 0 {
		ok, err := r.AdvanceSkippingWhitespace()
		if err != nil {
			return err
		}
		if !ok {
			return newEOFError("discard", r.offset(), "end of container")
		}
		switch r.kind {
		case KindOpenObject, KindOpenArray:
			depth++
		case KindCloseObject, KindCloseArray:
			depth--
		}
	}
	return nil
}

// scanString consumes a quoted string starting at the opening quote and
// returns the decoded value. Escape sequences for " \ / b f n r t are
// decoded; \u hexadecimal escapes are recognized but unsupported.
func (r *Reader) scanString(f *readerFrame) (string, error) {
	f.pos++ // opening quote
	var b strings.Builder
	plainFrom := f.pos
	for {
		if f.pos >= len(f.src) {
			return "", newEOFError("scan_string", f.pos, "closing quote")
		}
		c := f.src[f.pos]
		switch c {
		case '"':
			if b.Len() == 0 {
				s := f.src[plainFrom:f.pos]
				f.pos++
				return s, nil
			}
			b.WriteString(f.src[plainFrom:f.pos])
			f.pos++
			return b.String(), nil
		case '\\':
			b.WriteString(f.src[plainFrom:f.pos])
			f.pos++
			if f.pos >= len(f.src) {
				return "", newEOFError("scan_string", f.pos, "escape character")
			}
			esc := f.src[f.pos]
			switch esc {
			case '"', '\\', '/':
				b.WriteByte(esc)
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'u':
				return "", &CodecError{
					Op:      "scan_string",
					Offset:  f.pos,
					Message: "\\u hexadecimal escape sequence",
					Err:     ErrUnicodeEscape,
				}
			default:
				return "", newParseError("scan_string", f.pos, "invalid escape character %q", esc)
			}
			f.pos++
			plainFrom = f.pos
		default:
			f.pos++
		}
	}
}

func (r *Reader) scanKeyword(f *readerFrame, keyword string) error {
	if f.pos+len(keyword) > len(f.src) {
		return newEOFError("scan_keyword", f.pos, keyword)
	}
	if f.src[f.pos:f.pos+len(keyword)] != keyword {
		return newParseError("scan_keyword", f.pos, "expected %q, found %q",
			keyword, f.src[f.pos:f.pos+len(keyword)])
	}
	f.pos += len(keyword)
	return nil
}

// PropertyNames returns a lazy, one-shot cursor over the member names of the
// JSON object the reader is positioned on. The current token must be
// OpenObject before the first Next call.
//
// After Next yields a name, the reader sits on the name/value separator, so
// the caller's next advance lands on the first token of that member's value.
// The caller must consume the value, either by recursively deserializing it
// or by advancing to it and calling DiscardValue, before calling Next again.
func (r *Reader) PropertyNames() *PropertyCursor {
	return &PropertyCursor{r: r}
}

// PropertyCursor iterates the member names of one JSON object. It is not
// restartable.
type PropertyCursor struct {
	r       *Reader
	started bool
	done    bool
}

// Next yields the next member name. It returns ok=false once the object's
// closing brace has been consumed.
func (c *PropertyCursor) Next() (name string, ok bool, err error) {
	if c.done {
		return "", false, nil
	}
	r := c.r
	first := !c.started
	if first {
		if r.kind != KindOpenObject {
			panic(&ContractError{
				Op:      "property_names",
				Message: "cursor requires the current token to be OpenObject, have " + r.kind.String(),
			})
		}
		c.started = true
	} else {
		// The previous member's value has been consumed; the object either
		// continues with ',' or terminates with '}'.
		advanced, err := r.AdvanceSkippingWhitespace()
		if err != nil {
			return "", false, err
		}
		if !advanced {
			return "", false, newEOFError("property_names", r.offset(), `"," or "}"`)
		}
		switch r.kind {
		case KindCloseObject:
			c.done = true
			return "", false, nil
		case KindItemSeparator:
		default:
			return "", false, newTokenError("property_names", r.offset(), `"," or "}"`, r.kind)
		}
	}

	advanced, err := r.AdvanceSkippingWhitespace()
	if err != nil {
		return "", false, err
	}
	if !advanced {
		return "", false, newEOFError("property_names", r.offset(), "property name")
	}
	if first && r.kind == KindCloseObject {
		c.done = true
		return "", false, nil
	}
	if r.kind != KindString {
		return "", false, newTokenError("property_names", r.offset(), "property name string", r.kind)
	}
	name = r.str

	advanced, err = r.AdvanceSkippingWhitespace()
	if err != nil {
		return "", false, err
	}
	if !advanced {
		return "", false, newEOFError("property_names", r.offset(), `":"`)
	}
	if r.kind != KindNameSeparator {
		return "", false, newTokenError("property_names", r.offset(), `":" after property name`, r.kind)
	}
	return name, true, nil
}
