package jsonwire

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// FieldRule overrides how one struct field serializes.
type FieldRule struct {
	Name       string // wire name override; empty keeps the tag or field name
	Omit       bool   // never serialize the field
	OmitEmpty  bool   // skip the field when its value is empty
	Encrypted  bool   // route the field's value through the encryption layer
	Redacted   bool   // serialize as "[REDACTED]" when the context redacts
	TimeFormat string // per-field date/time layout override
}

// Mapping is the type-mapping configuration consumed by the custom-object
// strategy: per-type, per-field rules registered by example value.
//
// A Mapping must be fully built before it is handed to a serializer and not
// modified afterwards; serializer instances are memoized by the mapping's
// fingerprint.
type Mapping struct {
	rules map[reflect.Type]map[string]FieldRule
}

// NewMapping creates an empty Mapping.
func NewMapping() *Mapping {
	return &Mapping{rules: make(map[reflect.Type]map[string]FieldRule)}
}

// Field registers a rule for the named Go field of example's type. The
// example may be a value or a pointer to it. Field returns the mapping for
// chaining.
func (m *Mapping) Field(example any, field string, rule FieldRule) *Mapping {
	t := reflect.TypeOf(example)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		panic(&ContractError{
			Op:      "mapping",
			Message: fmt.Sprintf("field rules apply to struct types, have %v", reflect.TypeOf(example)),
		})
	}
	if _, ok := t.FieldByName(field); !ok {
		panic(&ContractError{
			Op:      "mapping",
			Message: fmt.Sprintf("type %v has no field %q", t, field),
		})
	}
	fields := m.rules[t]
	if fields == nil {
		fields = make(map[string]FieldRule)
		m.rules[t] = fields
	}
	fields[field] = rule
	return m
}

// rule looks up the rule for a field of t; the zero rule applies when none
// is registered.
func (m *Mapping) rule(t reflect.Type, field string) (FieldRule, bool) {
	if m == nil {
		return FieldRule{}, false
	}
	fields, ok := m.rules[t]
	if !ok {
		return FieldRule{}, false
	}
	r, ok := fields[field]
	return r, ok
}

// Fingerprint returns a deterministic hash of the rule set, used to key the
// process-wide serializer cache. Two mappings carrying identical rules share
// a fingerprint. The nil mapping fingerprints to zero.
func (m *Mapping) Fingerprint() uint64 {
	if m == nil || len(m.rules) == 0 {
		return 0
	}
	types := make([]reflect.Type, 0, len(m.rules))
	for t := range m.rules {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		return typeName(types[i]) < typeName(types[j])
	})

	digest := xxhash.New()
	for _, t := range types {
		digest.WriteString(typeName(t))
		digest.WriteString("\x00")
		fields := m.rules[t]
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			r := fields[name]
			fmt.Fprintf(digest, "%s=%s,%t,%t,%t,%t,%s\x00",
				name, r.Name, r.Omit, r.OmitEmpty, r.Encrypted, r.Redacted, r.TimeFormat)
		}
	}
	return digest.Sum64()
}

// typeName returns a package-qualified name for cache hashing.
func typeName(t reflect.Type) string {
	return t.PkgPath() + "." + t.String()
}
