package jsonwire

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	timeType      = reflect.TypeOf(time.Time{})
	uuidType      = reflect.TypeOf(uuid.UUID{})
	decimalType   = reflect.TypeOf(decimal.Decimal{})
	numberType    = reflect.TypeOf(Number(""))
	objectPtrType = reflect.TypeOf((*Object)(nil))
	arrayPtrType  = reflect.TypeOf((*Array)(nil))
)

type resolverEntry struct {
	match func(reflect.Type) bool
	build func(reflect.Type) Strategy
}

// resolutionOrder is evaluated first match wins. The order matters: some
// categories overlap (Number has string kind, custom types may be
// enumerable), so string-like and numeric primitives are claimed before the
// container categories, and the reflective custom-object strategy is the
// final fallback.
var resolutionOrder = []resolverEntry{
	{matchStringLike, func(t reflect.Type) Strategy { return &stringStrategy{t: t} }},
	{matchNumeric, func(t reflect.Type) Strategy { return &numericStrategy{t: t} }},
	{matchBoolean, func(t reflect.Type) Strategy { return &booleanStrategy{t: t} }},
	{matchObjectModel, func(reflect.Type) Strategy { return objectModelStrategy{} }},
	{matchArrayModel, func(reflect.Type) Strategy { return arrayModelStrategy{} }},
	{matchStringKeyedMap, func(t reflect.Type) Strategy { return &dictionaryStrategy{t: t} }},
	{matchSequence, func(t reflect.Type) Strategy { return &listStrategy{t: t} }},
}

func matchStringLike(t reflect.Type) bool {
	if t == numberType {
		return false
	}
	return t.Kind() == reflect.String || t == timeType || t == uuidType
}

func matchNumeric(t reflect.Type) bool {
	if t == numberType || t == decimalType {
		return true
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func matchBoolean(t reflect.Type) bool { return t.Kind() == reflect.Bool }

func matchObjectModel(t reflect.Type) bool { return t == objectPtrType }

func matchArrayModel(t reflect.Type) bool { return t == arrayPtrType }

func matchStringKeyedMap(t reflect.Type) bool {
	return t.Kind() == reflect.Map && t.Key().Kind() == reflect.String
}

func matchSequence(t reflect.Type) bool {
	return t.Kind() == reflect.Slice || t.Kind() == reflect.Array
}

// resolveStrategy walks the resolution table for t. Pointers other than the
// document model types unwrap to their element strategy; structs are the
// open-ended fallback.
func resolveStrategy(t reflect.Type) (Strategy, error) {
	if t.Kind() == reflect.Pointer && t != objectPtrType && t != arrayPtrType {
		return &pointerStrategy{t: t}, nil
	}
	for _, entry := range resolutionOrder {
		if entry.match(t) {
			return entry.build(t), nil
		}
	}
	if t.Kind() == reflect.Struct {
		return newStructStrategy(t), nil
	}
	return nil, &CodecError{
		Op:      "resolve",
		Offset:  -1,
		Message: fmt.Sprintf("no serialization strategy for type %v", t),
		Err:     ErrUnsupportedType,
	}
}

// pointerStrategy dereferences before re-dispatching. Nil pointers never
// reach it; the dispatcher writes Null for those directly.
type pointerStrategy struct {
	t reflect.Type
}

func (st *pointerStrategy) Serialize(s *Serializer, w *Writer, v any, ctx *OperationContext) error {
	return s.serializeValue(w, reflect.ValueOf(v).Elem().Interface(), ctx)
}

func (st *pointerStrategy) Deserialize(s *Serializer, r *Reader, ctx *OperationContext) (any, error) {
	if r.Kind() == KindNull {
		return reflect.Zero(st.t).Interface(), nil
	}
	elem, err := s.deserializeTokenAs(r, ctx, st.t.Elem())
	if err != nil {
		return nil, err
	}
	p := reflect.New(st.t.Elem())
	if elem != nil {
		ev, err := conformValue(elem, st.t.Elem())
		if err != nil {
			return nil, err
		}
		p.Elem().Set(ev)
	}
	return p.Interface(), nil
}

// stringStrategy serializes string-like literal types: strings, date/time
// values formatted via the context's time policy, and UUIDs.
type stringStrategy struct {
	t reflect.Type
}

func (st *stringStrategy) Serialize(s *Serializer, w *Writer, v any, ctx *OperationContext) error {
	switch st.t {
	case timeType:
		w.WriteString(v.(time.Time).Format(ctx.timeLayout()))
	case uuidType:
		w.WriteString(v.(uuid.UUID).String())
	default:
		w.WriteString(reflect.ValueOf(v).String())
	}
	return nil
}

func (st *stringStrategy) Deserialize(s *Serializer, r *Reader, ctx *OperationContext) (any, error) {
	switch r.Kind() {
	case KindNull:
		return reflect.Zero(st.t).Interface(), nil
	case KindString:
	default:
		return nil, newTokenError("deserialize", r.offset(), "String", r.Kind())
	}
	text := r.Value()
	switch st.t {
	case timeType:
		ts, err := time.Parse(ctx.timeLayout(), text)
		if err != nil {
			return nil, newParseError("deserialize", r.offset(), "invalid time literal %q: %v", text, err)
		}
		return ts, nil
	case uuidType:
		id, err := uuid.Parse(text)
		if err != nil {
			return nil, newParseError("deserialize", r.offset(), "invalid UUID literal %q: %v", text, err)
		}
		return id, nil
	default:
		rv := reflect.New(st.t).Elem()
		rv.SetString(text)
		return rv.Interface(), nil
	}
}

// numericStrategy serializes numeric primitives by emitting the value's
// literal text. Number and decimal values keep their exact representation.
type numericStrategy struct {
	t reflect.Type
}

func (st *numericStrategy) Serialize(s *Serializer, w *Writer, v any, ctx *OperationContext) error {
	switch st.t {
	case numberType:
		w.WriteNumber(string(v.(Number)))
		return nil
	case decimalType:
		w.WriteNumber(v.(decimal.Decimal).String())
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		w.WriteNumber(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		w.WriteNumber(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32:
		w.WriteNumber(strconv.FormatFloat(rv.Float(), 'g', -1, 32))
	default:
		w.WriteNumber(strconv.FormatFloat(rv.Float(), 'g', -1, 64))
	}
	return nil
}

func (st *numericStrategy) Deserialize(s *Serializer, r *Reader, ctx *OperationContext) (any, error) {
	switch r.Kind() {
	case KindNull:
		return reflect.Zero(st.t).Interface(), nil
	case KindNumber:
	default:
		return nil, newTokenError("deserialize", r.offset(), "Number", r.Kind())
	}
	literal := r.Value()
	switch st.t {
	case numberType:
		return Number(literal), nil
	case decimalType:
		d, err := decimal.NewFromString(literal)
		if err != nil {
			return nil, newParseError("deserialize", r.offset(), "invalid decimal literal %q", literal)
		}
		return d, nil
	}
	rv := reflect.New(st.t).Elem()
	switch st.t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(literal, 10, st.t.Bits())
		if err != nil {
			return nil, newParseError("deserialize", r.offset(), "invalid %v literal %q", st.t, literal)
		}
		rv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(literal, 10, st.t.Bits())
		if err != nil {
			return nil, newParseError("deserialize", r.offset(), "invalid %v literal %q", st.t, literal)
		}
		rv.SetUint(n)
	default:
		n, err := strconv.ParseFloat(literal, st.t.Bits())
		if err != nil {
			return nil, newParseError("deserialize", r.offset(), "invalid %v literal %q", st.t, literal)
		}
		rv.SetFloat(n)
	}
	return rv.Interface(), nil
}

type booleanStrategy struct {
	t reflect.Type
}

func (st *booleanStrategy) Serialize(s *Serializer, w *Writer, v any, ctx *OperationContext) error {
	w.WriteBool(reflect.ValueOf(v).Bool())
	return nil
}

func (st *booleanStrategy) Deserialize(s *Serializer, r *Reader, ctx *OperationContext) (any, error) {
	switch r.Kind() {
	case KindNull:
		return reflect.Zero(st.t).Interface(), nil
	case KindBoolean:
		rv := reflect.New(st.t).Elem()
		rv.SetBool(r.Bool())
		return rv.Interface(), nil
	default:
		return nil, newTokenError("deserialize", r.offset(), "Boolean", r.Kind())
	}
}

// objectModelStrategy delegates to the dynamic Object's own child-by-child
// serializer.
type objectModelStrategy struct{}

func (objectModelStrategy) Serialize(s *Serializer, w *Writer, v any, ctx *OperationContext) error {
	return v.(*Object).serialize(s, w, ctx)
}

func (objectModelStrategy) Deserialize(s *Serializer, r *Reader, ctx *OperationContext) (any, error) {
	switch r.Kind() {
	case KindNull:
		return (*Object)(nil), nil
	case KindOpenObject:
		return s.deserializeToken(r, ctx, 0)
	default:
		return nil, newTokenError("deserialize", r.offset(), "OpenObject", r.Kind())
	}
}

// arrayModelStrategy delegates to the dynamic Array's own element serializer.
type arrayModelStrategy struct{}

func (arrayModelStrategy) Serialize(s *Serializer, w *Writer, v any, ctx *OperationContext) error {
	return v.(*Array).serialize(s, w, ctx)
}

func (arrayModelStrategy) Deserialize(s *Serializer, r *Reader, ctx *OperationContext) (any, error) {
	switch r.Kind() {
	case KindNull:
		return (*Array)(nil), nil
	case KindOpenArray:
		return s.deserializeToken(r, ctx, 0)
	default:
		return nil, newTokenError("deserialize", r.offset(), "OpenArray", r.Kind())
	}
}

// dictionaryStrategy serializes string-keyed maps. Keys are emitted in
// sorted order so output is deterministic.
type dictionaryStrategy struct {
	t reflect.Type
}

func (st *dictionaryStrategy) Serialize(s *Serializer, w *Writer, v any, ctx *OperationContext) error {
	rv := reflect.ValueOf(v)
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	w.WriteOpenObject()
	for i, k := range keys {
		if i > 0 {
			w.WriteItemSeparator()
		}
		w.WriteName(k.String())
		if err := s.serializeValue(w, rv.MapIndex(k).Interface(), ctx); err != nil {
			return err
		}
	}
	w.WriteCloseObject()
	return nil
}

func (st *dictionaryStrategy) Deserialize(s *Serializer, r *Reader, ctx *OperationContext) (any, error) {
	switch r.Kind() {
	case KindNull:
		return reflect.Zero(st.t).Interface(), nil
	case KindOpenObject:
	default:
		return nil, newTokenError("deserialize", r.offset(), "OpenObject", r.Kind())
	}
	result := reflect.MakeMap(st.t)
	elemType := st.t.Elem()
	names := r.PropertyNames()
	for {
		name, ok, err := names.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return result.Interface(), nil
		}
		value, err := s.readValueAs(r, ctx, elemType)
		if err != nil {
			return nil, err
		}
		key := reflect.ValueOf(name)
		if key.Type() != st.t.Key() {
			key = key.Convert(st.t.Key())
		}
		if value == nil {
			result.SetMapIndex(key, reflect.Zero(elemType))
			continue
		}
		ev, err := conformValue(value, elemType)
		if err != nil {
			return nil, err
		}
		result.SetMapIndex(key, ev)
	}
}

// listStrategy serializes slices and fixed-size arrays element by element.
type listStrategy struct {
	t reflect.Type
}

func (st *listStrategy) Serialize(s *Serializer, w *Writer, v any, ctx *OperationContext) error {
	rv := reflect.ValueOf(v)
	w.WriteOpenArray()
	for i := 0; i < rv.Len(); i++ {
		if i > 0 {
			w.WriteItemSeparator()
		}
		if err := s.serializeValue(w, rv.Index(i).Interface(), ctx); err != nil {
			return err
		}
	}
	w.WriteCloseArray()
	return nil
}

func (st *listStrategy) Deserialize(s *Serializer, r *Reader, ctx *OperationContext) (any, error) {
	switch r.Kind() {
	case KindNull:
		return reflect.Zero(st.t).Interface(), nil
	case KindOpenArray:
	default:
		return nil, newTokenError("deserialize", r.offset(), "OpenArray", r.Kind())
	}
	elemType := st.t.Elem()
	var elems []reflect.Value

	next, err := r.PeekNextKind()
	if err != nil {
		return nil, err
	}
	if next == KindCloseArray {
		if _, err := r.AdvanceSkippingWhitespace(); err != nil {
			return nil, err
		}
		return st.collect(elems)
	}
	for {
		value, err := s.readValueAs(r, ctx, elemType)
		if err != nil {
			return nil, err
		}
		if value == nil {
			elems = append(elems, reflect.Zero(elemType))
		} else {
			ev, err := conformValue(value, elemType)
			if err != nil {
				return nil, err
			}
			elems = append(elems, ev)
		}

		advanced, err := r.AdvanceSkippingWhitespace()
		if err != nil {
			return nil, err
		}
		if !advanced {
			return nil, newEOFError("deserialize", r.offset(), `"," or "]"`)
		}
		switch r.Kind() {
		case KindItemSeparator:
		case KindCloseArray:
			return st.collect(elems)
		default:
			return nil, newTokenError("deserialize", r.offset(), `"," or "]"`, r.Kind())
		}
	}
}

func (st *listStrategy) collect(elems []reflect.Value) (any, error) {
	if st.t.Kind() == reflect.Array {
		if len(elems) > st.t.Len() {
			return nil, &CodecError{
				Op:      "deserialize",
				Offset:  -1,
				Message: fmt.Sprintf("%d elements exceed %v length", len(elems), st.t),
				Err:     ErrTypeMismatch,
			}
		}
		rv := reflect.New(st.t).Elem()
		for i, e := range elems {
			rv.Index(i).Set(e)
		}
		return rv.Interface(), nil
	}
	rv := reflect.MakeSlice(st.t, len(elems), len(elems))
	for i, e := range elems {
		rv.Index(i).Set(e)
	}
	return rv.Interface(), nil
}

// structStrategy is the reflective custom-object fallback, parameterized at
// call time by the dispatcher's Mapping.
type structStrategy struct {
	t      reflect.Type
	fields []fieldPlan
	index  sync.Map // mapping fingerprint -> map[wire name]*fieldPlan
}

type fieldPlan struct {
	idx       int
	goName    string
	wireName  string
	omit      bool
	omitEmpty bool
	typ       reflect.Type
}

func newStructStrategy(t reflect.Type) Strategy {
	st := &structStrategy{t: t}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		plan := fieldPlan{idx: i, goName: f.Name, wireName: f.Name, typ: f.Type}
		if tag, ok := f.Tag.Lookup("json"); ok {
			name, opts, _ := strings.Cut(tag, ",")
			switch name {
			case "-":
				plan.omit = true
			case "":
			default:
				plan.wireName = name
			}
			for opts != "" {
				var opt string
				opt, opts, _ = strings.Cut(opts, ",")
				if opt == "omitempty" {
					plan.omitEmpty = true
				}
			}
		}
		st.fields = append(st.fields, plan)
	}
	return st
}

func (st *structStrategy) Serialize(s *Serializer, w *Writer, v any, ctx *OperationContext) error {
	rv := reflect.ValueOf(v)
	w.WriteOpenObject()
	first := true
	for i := range st.fields {
		f := &st.fields[i]
		rule, _ := s.mapping.rule(st.t, f.goName)
		if f.omit || rule.Omit {
			continue
		}
		fv := rv.Field(f.idx)
		if (f.omitEmpty || rule.OmitEmpty) && isEmptyValue(fv) {
			continue
		}
		if !first {
			w.WriteItemSeparator()
		}
		first = false
		name := f.wireName
		if rule.Name != "" {
			name = rule.Name
		}
		w.WriteName(name)

		fctx := ctx.withTimeFormat(rule.TimeFormat)
		switch {
		case rule.Redacted && fctx != nil && fctx.Redact:
			w.WriteString(redactedLiteral)
		case rule.Encrypted:
			if err := SerializerFor(true, s.mapping).Serialize(w, fv.Interface(), fctx); err != nil {
				return err
			}
		default:
			if err := s.serializeValue(w, fv.Interface(), fctx); err != nil {
				return err
			}
		}
	}
	w.WriteCloseObject()
	return nil
}

func (st *structStrategy) Deserialize(s *Serializer, r *Reader, ctx *OperationContext) (any, error) {
	switch r.Kind() {
	case KindNull:
		return reflect.Zero(st.t).Interface(), nil
	case KindOpenObject:
	default:
		return nil, newTokenError("deserialize", r.offset(), "OpenObject", r.Kind())
	}
	rv := reflect.New(st.t).Elem()
	byWire := st.wireIndex(s.mapping)
	names := r.PropertyNames()
	for {
		name, ok, err := names.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return rv.Interface(), nil
		}
		f, known := byWire[name]
		if !known {
			// Unknown member: position on the value and skip it whole.
			advanced, err := r.AdvanceSkippingWhitespace()
			if err != nil {
				return nil, err
			}
			if !advanced {
				return nil, newEOFError("deserialize", r.offset(), "property value")
			}
			if err := r.DiscardValue(); err != nil {
				return nil, err
			}
			continue
		}
		rule, _ := s.mapping.rule(st.t, f.goName)
		fctx := ctx.withTimeFormat(rule.TimeFormat)
		var value any
		if rule.Encrypted {
			value, err = SerializerFor(true, s.mapping).deserializeAs(r, fctx, f.typ)
		} else {
			value, err = s.readValueAs(r, fctx, f.typ)
		}
		if err != nil {
			return nil, err
		}
		if value == nil {
			continue
		}
		fv, err := conformValue(value, f.typ)
		if err != nil {
			return nil, err
		}
		rv.Field(f.idx).Set(fv)
	}
}

// wireIndex maps wire names to field plans for one mapping configuration,
// memoized by the mapping's fingerprint.
func (st *structStrategy) wireIndex(m *Mapping) map[string]*fieldPlan {
	fp := m.Fingerprint()
	if cached, ok := st.index.Load(fp); ok {
		return cached.(map[string]*fieldPlan)
	}
	idx := make(map[string]*fieldPlan, len(st.fields))
	for i := range st.fields {
		f := &st.fields[i]
		rule, _ := m.rule(st.t, f.goName)
		if f.omit || rule.Omit {
			continue
		}
		name := f.wireName
		if rule.Name != "" {
			name = rule.Name
		}
		idx[name] = f
	}
	actual, _ := st.index.LoadOrStore(fp, idx)
	return actual.(map[string]*fieldPlan)
}

// conformValue adapts a deserialized value to the target static type.
func conformValue(v any, t reflect.Type) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Type() == t {
		return rv, nil
	}
	if rv.Type().ConvertibleTo(t) {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, &CodecError{
		Op:      "deserialize",
		Offset:  -1,
		Message: fmt.Sprintf("cannot assign %v to %v", rv.Type(), t),
		Err:     ErrTypeMismatch,
	}
}

// isEmptyValue mirrors the omitempty convention.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}
