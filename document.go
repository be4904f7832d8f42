package jsonwire

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Number is a literal-preserving JSON numeric value. The original source
// text is retained verbatim, so equality and formatting are defined on the
// literal and round-tripping never changes precision or representation:
// "1.50" stays "1.50", not "1.5". Conversion to a machine type happens only
// on explicit request.
type Number string

func (n Number) String() string { return string(n) }

// Int64 converts the literal to an int64.
func (n Number) Int64() (int64, error) {
	return strconv.ParseInt(string(n), 10, 64)
}

// Float64 converts the literal to a float64.
func (n Number) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// Decimal converts the literal to an exact fixed-point decimal.
func (n Number) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(string(n))
}

// Member is one name/value pair of an Object.
type Member struct {
	Name  string
	Value any
}

// Object is the dynamic document model's JSON object: an ordered list of
// members preserving insertion order. Duplicate names are retained; Get
// follows the JSON last-wins convention. An Object owns its children
// exclusively.
//
// Values are nil, bool, string, Number, *Object or *Array.
type Object struct {
	members []Member
}

// NewObject creates an empty Object.
func NewObject() *Object {
	return &Object{}
}

// Len returns the number of members, counting duplicates.
func (o *Object) Len() int { return len(o.members) }

// Get returns the value of the last member with the given name.
func (o *Object) Get(name string) (any, bool) {
	for i := len(o.members) - 1; i >= 0; i-- {
		if o.members[i].Name == name {
			return o.members[i].Value, true
		}
	}
	return nil, false
}

// Set replaces the last member with the given name, or appends a new member.
func (o *Object) Set(name string, value any) {
	for i := len(o.members) - 1; i >= 0; i-- {
		if o.members[i].Name == name {
			o.members[i].Value = value
			return
		}
	}
	o.Append(name, value)
}

// Append adds a member without replacing existing ones, allowing duplicate
// names.
func (o *Object) Append(name string, value any) {
	o.members = append(o.members, Member{Name: name, Value: value})
}

// Names returns the member names in insertion order, including duplicates.
func (o *Object) Names() []string {
	names := make([]string, len(o.members))
	for i, m := range o.members {
		names[i] = m.Name
	}
	return names
}

// Range calls fn for each member in insertion order until fn returns false.
func (o *Object) Range(fn func(name string, value any) bool) {
	for _, m := range o.members {
		if !fn(m.Name, m.Value) {
			return
		}
	}
}

// Equal reports structural equality, sensitive to member order.
func (o *Object) Equal(other *Object) bool {
	if o == nil || other == nil {
		return o == other
	}
	if len(o.members) != len(other.members) {
		return false
	}
	for i, m := range o.members {
		if m.Name != other.members[i].Name || !valueEqual(m.Value, other.members[i].Value) {
			return false
		}
	}
	return true
}

// serialize writes the object member by member, recursing into the
// dispatcher for each value.
func (o *Object) serialize(s *Serializer, w *Writer, ctx *OperationContext) error {
	w.WriteOpenObject()
	for i, m := range o.members {
		if i > 0 {
			w.WriteItemSeparator()
		}
		w.WriteName(m.Name)
		if err := s.serializeValue(w, m.Value, ctx); err != nil {
			return err
		}
	}
	w.WriteCloseObject()
	return nil
}

// Array is the dynamic document model's JSON array: an ordered sequence
// owning its children exclusively.
type Array struct {
	items []any
}

// NewArray creates an Array from the given items.
func NewArray(items ...any) *Array {
	return &Array{items: items}
}

// Len returns the number of items.
func (a *Array) Len() int { return len(a.items) }

// At returns the item at index i.
func (a *Array) At(i int) any { return a.items[i] }

// Append adds items to the end of the array.
func (a *Array) Append(items ...any) {
	a.items = append(a.items, items...)
}

// Items returns the backing slice in order. Callers must not modify it.
func (a *Array) Items() []any { return a.items }

// Equal reports structural equality, sensitive to element order.
func (a *Array) Equal(other *Array) bool {
	if a == nil || other == nil {
		return a == other
	}
	if len(a.items) != len(other.items) {
		return false
	}
	for i, v := range a.items {
		if !valueEqual(v, other.items[i]) {
			return false
		}
	}
	return true
}

// serialize writes the array element by element, recursing into the
// dispatcher for each value.
func (a *Array) serialize(s *Serializer, w *Writer, ctx *OperationContext) error {
	w.WriteOpenArray()
	for i, v := range a.items {
		if i > 0 {
			w.WriteItemSeparator()
		}
		if err := s.serializeValue(w, v, ctx); err != nil {
			return err
		}
	}
	w.WriteCloseArray()
	return nil
}

// valueEqual compares two dynamic document values structurally. Numbers
// compare by literal.
func valueEqual(a, b any) bool {
	switch av := a.(type) {
	case *Object:
		bv, ok := b.(*Object)
		return ok && av.Equal(bv)
	case *Array:
		bv, ok := b.(*Array)
		return ok && av.Equal(bv)
	default:
		return a == b
	}
}
