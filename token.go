package jsonwire

// TokenKind identifies one lexical unit of the JSON grammar.
type TokenKind int

const (
	KindNone TokenKind = iota // no token read yet, or end of input
	KindNull
	KindString
	KindNumber
	KindBoolean
	KindOpenObject
	KindCloseObject
	KindOpenArray
	KindCloseArray
	KindNameSeparator
	KindItemSeparator
	KindWhitespace
)

var tokenKindNames = [...]string{
	KindNone:          "None",
	KindNull:          "Null",
	KindString:        "String",
	KindNumber:        "Number",
	KindBoolean:       "Boolean",
	KindOpenObject:    "OpenObject",
	KindCloseObject:   "CloseObject",
	KindOpenArray:     "OpenArray",
	KindCloseArray:    "CloseArray",
	KindNameSeparator: "NameSeparator",
	KindItemSeparator: "ItemSeparator",
	KindWhitespace:    "Whitespace",
}

func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKindNames) {
		return "Invalid"
	}
	return tokenKindNames[k]
}

func isWhitespaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// isNumberByte reports whether c can appear in a JSON numeric literal. The
// scanner consumes a maximal run of these bytes and keeps the raw text.
func isNumberByte(c byte) bool {
	return (c >= '0' && c <= '9') || c == '+' || c == '-' || c == '.' || c == 'e' || c == 'E'
}

// classifyByte maps the first byte of a token to its kind without consuming
// input. Used by the reader's non-destructive lookahead.
func classifyByte(c byte) (TokenKind, bool) {
	switch {
	case isWhitespaceByte(c):
		return KindWhitespace, true
	case c == '{':
		return KindOpenObject, true
	case c == '}':
		return KindCloseObject, true
	case c == '[':
		return KindOpenArray, true
	case c == ']':
		return KindCloseArray, true
	case c == ':':
		return KindNameSeparator, true
	case c == ',':
		return KindItemSeparator, true
	case c == '"':
		return KindString, true
	case c == 't', c == 'f':
		return KindBoolean, true
	case c == 'n':
		return KindNull, true
	case isNumberByte(c):
		return KindNumber, true
	default:
		return KindNone, false
	}
}
