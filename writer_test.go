package jsonwire

import (
	"testing"
)

func TestWriterTokens(t *testing.T) {
	w := NewWriter()
	w.WriteOpenObject()
	w.WriteName("a")
	w.WriteNumber("1.50")
	w.WriteItemSeparator()
	w.WriteName("b")
	w.WriteOpenArray()
	w.WriteBool(true)
	w.WriteItemSeparator()
	w.WriteNull()
	w.WriteCloseArray()
	w.WriteCloseObject()

	want := `{"a":1.50,"b":[true,null]}`
	if got := w.String(); got != want {
		t.Errorf("output = %q; want %q", got, want)
	}
}

func TestWriterEscaping(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "plain", value: "hello", want: `"hello"`},
		{name: "empty", value: "", want: `""`},
		{name: "quote", value: `a"b`, want: `"a\"b"`},
		{name: "backslash", value: `a\b`, want: `"a\\b"`},
		{name: "controls", value: "\b\f\n\r\t", want: `"\b\f\n\r\t"`},
		{name: "slash unescaped", value: "a/b", want: `"a/b"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWriter()
			w.WriteString(tt.value)
			if got := w.String(); got != tt.want {
				t.Errorf("WriteString(%q) = %q; want %q", tt.value, got, tt.want)
			}
		})
	}
}

// TestWriterReaderRoundTrip verifies the forward contract: everything the
// Writer emits is re-readable by the Reader.
func TestWriterReaderRoundTrip(t *testing.T) {
	values := []string{
		"plain",
		`quotes " and \ backslashes`,
		"tabs\tand\nnewlines\r",
		"",
	}
	for _, value := range values {
		w := NewWriter()
		w.WriteString(value)

		r := NewReader(w.String())
		ok, err := r.Advance()
		if err != nil || !ok {
			t.Fatalf("re-reading %q: Advance() = %t, %v", value, ok, err)
		}
		if r.Kind() != KindString {
			t.Fatalf("re-reading %q: kind = %v; want String", value, r.Kind())
		}
		if r.Value() != value {
			t.Errorf("round trip of %q produced %q", value, r.Value())
		}
	}
}

func TestWriteRaw(t *testing.T) {
	w := NewWriter()
	w.WriteOpenArray()
	w.WriteRaw(`{"pre":"rendered"}`)
	w.WriteCloseArray()
	want := `[{"pre":"rendered"}]`
	if got := w.String(); got != want {
		t.Errorf("output = %q; want %q", got, want)
	}
}
