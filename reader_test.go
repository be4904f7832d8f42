package jsonwire

import (
	"errors"
	"strings"
	"testing"
)

// TestAdvanceTokenSequence verifies the token stream for a small object.
func TestAdvanceTokenSequence(t *testing.T) {
	r := NewReader(`{"x":true,"y":null}`)

	expected := []struct {
		kind  TokenKind
		value string
		truth bool
	}{
		{kind: KindOpenObject},
		{kind: KindString, value: "x"},
		{kind: KindNameSeparator},
		{kind: KindBoolean, truth: true},
		{kind: KindItemSeparator},
		{kind: KindString, value: "y"},
		{kind: KindNameSeparator},
		{kind: KindNull},
		{kind: KindCloseObject},
	}
	for i, want := range expected {
		ok, err := r.AdvanceSkippingWhitespace()
		if err != nil {
			t.Fatalf("token %d: unexpected error: %v", i, err)
		}
		if !ok {
			t.Fatalf("token %d: premature end of input", i)
		}
		if r.Kind() != want.kind {
			t.Errorf("token %d: kind = %v; want %v", i, r.Kind(), want.kind)
		}
		if r.Value() != want.value {
			t.Errorf("token %d: value = %q; want %q", i, r.Value(), want.value)
		}
		if r.Bool() != want.truth {
			t.Errorf("token %d: bool = %t; want %t", i, r.Bool(), want.truth)
		}
	}
	ok, err := r.AdvanceSkippingWhitespace()
	if err != nil {
		t.Fatalf("unexpected error at end of input: %v", err)
	}
	if ok {
		t.Errorf("expected end of input, got %v token", r.Kind())
	}
}

// TestAdvanceWhitespaceToken verifies whitespace surfaces as its own token.
func TestAdvanceWhitespaceToken(t *testing.T) {
	r := NewReader(" \t\r\n{")

	ok, err := r.Advance()
	if err != nil || !ok {
		t.Fatalf("Advance() = %t, %v; want true, nil", ok, err)
	}
	if r.Kind() != KindWhitespace {
		t.Fatalf("kind = %v; want Whitespace", r.Kind())
	}
	if r.Value() != " \t\r\n" {
		t.Errorf("whitespace run = %q; want %q", r.Value(), " \t\r\n")
	}

	ok, err = r.Advance()
	if err != nil || !ok {
		t.Fatalf("Advance() = %t, %v; want true, nil", ok, err)
	}
	if r.Kind() != KindOpenObject {
		t.Errorf("kind = %v; want OpenObject", r.Kind())
	}
}

// TestAdvanceUnknownCharacter verifies the parse error names the bad byte.
func TestAdvanceUnknownCharacter(t *testing.T) {
	r := NewReader(`{@`)

	if ok, err := r.AdvanceSkippingWhitespace(); err != nil || !ok {
		t.Fatalf("first advance = %t, %v; want true, nil", ok, err)
	}
	_, err := r.AdvanceSkippingWhitespace()
	if err == nil {
		t.Fatal("expected a parse error for '@'")
	}
	if !errors.Is(err, ErrParse) {
		t.Errorf("error = %v; want ErrParse in chain", err)
	}
	if !strings.Contains(err.Error(), "@") {
		t.Errorf("error %q does not identify the unknown character '@'", err)
	}
}

func TestScanStringEscapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: `"hello"`, want: "hello"},
		{name: "empty", input: `""`, want: ""},
		{name: "quote", input: `"a\"b"`, want: `a"b`},
		{name: "backslash", input: `"a\\b"`, want: `a\b`},
		{name: "slash", input: `"a\/b"`, want: "a/b"},
		{name: "controls", input: `"\b\f\n\r\t"`, want: "\b\f\n\r\t"},
		{name: "mixed", input: `"line1\nline2\t\"end\""`, want: "line1\nline2\t\"end\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.input)
			ok, err := r.Advance()
			if err != nil || !ok {
				t.Fatalf("Advance() = %t, %v; want true, nil", ok, err)
			}
			if r.Kind() != KindString {
				t.Fatalf("kind = %v; want String", r.Kind())
			}
			if r.Value() != tt.want {
				t.Errorf("decoded = %q; want %q", r.Value(), tt.want)
			}
		})
	}
}

func TestScanStringErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		sentinel error
	}{
		{name: "unicode escape unsupported", input: `"\u0041"`, sentinel: ErrUnicodeEscape},
		{name: "invalid escape", input: `"\x"`, sentinel: ErrParse},
		{name: "unterminated", input: `"abc`, sentinel: ErrUnexpectedEOF},
		{name: "eof after backslash", input: `"abc\`, sentinel: ErrUnexpectedEOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.input)
			_, err := r.Advance()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("error = %v; want %v in chain", err, tt.sentinel)
			}
		})
	}
}

// TestScanNumberLiteral verifies the raw literal is kept verbatim.
func TestScanNumberLiteral(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "1.50", want: "1.50"},
		{input: "-0.5", want: "-0.5"},
		{input: "1e+10", want: "1e+10"},
		{input: "3.14E-2", want: "3.14E-2"},
		{input: "42,", want: "42"},
		{input: "007", want: "007"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r := NewReader(tt.input)
			ok, err := r.Advance()
			if err != nil || !ok {
				t.Fatalf("Advance() = %t, %v; want true, nil", ok, err)
			}
			if r.Kind() != KindNumber {
				t.Fatalf("kind = %v; want Number", r.Kind())
			}
			if r.Value() != tt.want {
				t.Errorf("literal = %q; want %q", r.Value(), tt.want)
			}
		})
	}
}

func TestScanKeywords(t *testing.T) {
	tests := []struct {
		input   string
		kind    TokenKind
		truth   bool
		wantErr bool
	}{
		{input: "null", kind: KindNull},
		{input: "true", kind: KindBoolean, truth: true},
		{input: "false", kind: KindBoolean},
		{input: "nul", wantErr: true},
		{input: "tru", wantErr: true},
		{input: "falze", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r := NewReader(tt.input)
			ok, err := r.Advance()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil || !ok {
				t.Fatalf("Advance() = %t, %v; want true, nil", ok, err)
			}
			if r.Kind() != tt.kind {
				t.Errorf("kind = %v; want %v", r.Kind(), tt.kind)
			}
			if r.Bool() != tt.truth {
				t.Errorf("bool = %t; want %t", r.Bool(), tt.truth)
			}
		})
	}
}

func TestPeekNextKind(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TokenKind
		wantErr bool
	}{
		{name: "boolean with leading whitespace", input: "  true", want: KindBoolean},
		{name: "object", input: "{", want: KindOpenObject},
		{name: "string", input: `"x"`, want: KindString},
		{name: "number", input: "-1", want: KindNumber},
		{name: "null", input: "null", want: KindNull},
		{name: "end of input", input: "   ", want: KindNone},
		{name: "junk", input: "@", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.input)
			kind, err := r.PeekNextKind()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if kind != tt.want {
				t.Errorf("PeekNextKind() = %v; want %v", kind, tt.want)
			}
		})
	}
}

// TestPeekDoesNotConsume verifies the peeked token is still readable.
func TestPeekDoesNotConsume(t *testing.T) {
	r := NewReader("  42")
	if kind, err := r.PeekNextKind(); err != nil || kind != KindNumber {
		t.Fatalf("PeekNextKind() = %v, %v; want Number, nil", kind, err)
	}
	ok, err := r.AdvanceSkippingWhitespace()
	if err != nil || !ok {
		t.Fatalf("Advance after peek = %t, %v; want true, nil", ok, err)
	}
	if r.Kind() != KindNumber || r.Value() != "42" {
		t.Errorf("token after peek = %v %q; want Number \"42\"", r.Kind(), r.Value())
	}
}

// TestPropertyNames walks an object using both recursive-style consumption
// and DiscardValue between names.
func TestPropertyNames(t *testing.T) {
	r := NewReader(`{"a": 1, "b": {"c": 2}, "d": [1, 2]}`)
	if ok, err := r.AdvanceSkippingWhitespace(); err != nil || !ok || r.Kind() != KindOpenObject {
		t.Fatalf("setup: expected OpenObject, have %v (%v)", r.Kind(), err)
	}

	names := r.PropertyNames()
	var got []string
	for {
		name, ok, err := names.Next()
		if err != nil {
			t.Fatalf("Next() error: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, name)
		// Position on the value and skip it whole.
		if ok, err := r.AdvanceSkippingWhitespace(); err != nil || !ok {
			t.Fatalf("advance to value of %q = %t, %v", name, ok, err)
		}
		if err := r.DiscardValue(); err != nil {
			t.Fatalf("DiscardValue() for %q: %v", name, err)
		}
	}
	want := []string{"a", "b", "d"}
	if len(got) != len(want) {
		t.Fatalf("names = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("name %d = %q; want %q", i, got[i], want[i])
		}
	}
	// The cursor is exhausted and stays exhausted.
	if _, ok, err := names.Next(); ok || err != nil {
		t.Errorf("exhausted cursor Next() = %t, %v; want false, nil", ok, err)
	}
}

func TestPropertyNamesEmptyObject(t *testing.T) {
	r := NewReader(`{}`)
	if ok, err := r.AdvanceSkippingWhitespace(); err != nil || !ok {
		t.Fatalf("setup failed: %v", err)
	}
	names := r.PropertyNames()
	if _, ok, err := names.Next(); ok || err != nil {
		t.Errorf("Next() on empty object = %t, %v; want false, nil", ok, err)
	}
}

func TestPropertyNamesMalformed(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		sentinel error
	}{
		{name: "missing colon", input: `{"a" 1}`, sentinel: ErrUnexpectedToken},
		{name: "missing name", input: `{1:2}`, sentinel: ErrUnexpectedToken},
		{name: "eof after open", input: `{`, sentinel: ErrUnexpectedEOF},
		{name: "eof after name", input: `{"a"`, sentinel: ErrUnexpectedEOF},
		{name: "trailing comma", input: `{"a":1,}`, sentinel: ErrUnexpectedToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.input)
			if ok, err := r.AdvanceSkippingWhitespace(); err != nil || !ok {
				t.Fatalf("setup failed: %v", err)
			}
			names := r.PropertyNames()
			var err error
			for {
				var name string
				var ok bool
				name, ok, err = names.Next()
				if err != nil || !ok {
					break
				}
				_ = name
				if ok, aerr := r.AdvanceSkippingWhitespace(); aerr != nil || !ok {
					err = aerr
					break
				}
				if derr := r.DiscardValue(); derr != nil {
					err = derr
					break
				}
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("error = %v; want %v in chain", err, tt.sentinel)
			}
		})
	}
}

// TestPropertyNamesPrecondition verifies cursor misuse panics.
func TestPropertyNamesPrecondition(t *testing.T) {
	defer func() {
		recovered := recover()
		if recovered == nil {
			t.Fatal("expected a panic")
		}
		if _, ok := recovered.(*ContractError); !ok {
			t.Errorf("panic value = %T; want *ContractError", recovered)
		}
	}()
	r := NewReader(`"not an object"`)
	r.PropertyNames().Next()
}

// TestDiscardValue verifies one whole value is skipped and the reader lands
// immediately after it, for nested containers of any depth.
func TestDiscardValue(t *testing.T) {
	tests := []struct {
		name  string
		input string // value under test followed by the marker 99
	}{
		{name: "nested object", input: `{"a":{"b":[1,2,{"c":3}]}} 99`},
		{name: "nested array", input: `[[[[1],2],3],4] 99`},
		{name: "empty object", input: `{} 99`},
		{name: "empty array", input: `[] 99`},
		{name: "scalar", input: `"skip me" 99`},
		{name: "number", input: `1.5 99`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.input)
			if ok, err := r.AdvanceSkippingWhitespace(); err != nil || !ok {
				t.Fatalf("setup failed: %v", err)
			}
			if err := r.DiscardValue(); err != nil {
				t.Fatalf("DiscardValue() error: %v", err)
			}
			ok, err := r.AdvanceSkippingWhitespace()
			if err != nil || !ok {
				t.Fatalf("advance after discard = %t, %v; want true, nil", ok, err)
			}
			if r.Kind() != KindNumber || r.Value() != "99" {
				t.Errorf("token after discard = %v %q; want Number \"99\"", r.Kind(), r.Value())
			}
		})
	}
}

func TestDiscardValueUnterminated(t *testing.T) {
	r := NewReader(`[1, 2`)
	if ok, err := r.AdvanceSkippingWhitespace(); err != nil || !ok {
		t.Fatalf("setup failed: %v", err)
	}
	err := r.DiscardValue()
	if err == nil {
		t.Fatal("expected an error for unterminated container")
	}
	if !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("error = %v; want ErrUnexpectedEOF in chain", err)
	}
}

func BenchmarkAdvance(b *testing.B) {
	src := `{"users":[{"name":"John","age":30,"tags":["a","b"]},{"name":"Jane","age":25,"tags":[]}]}`
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		r := NewReader(src)
		for {
			ok, err := r.Advance()
			if err != nil {
				b.Fatal(err)
			}
			if !ok {
				break
			}
		}
	}
}
