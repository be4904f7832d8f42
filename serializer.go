package jsonwire

import (
	"log/slog"
	"reflect"
)

const defaultMaxDepth = 10000

// redactedLiteral replaces redacted field values on the wire.
const redactedLiteral = "[REDACTED]"

// Serializer is the type-directed dispatcher: it resolves the serialization
// strategy for each runtime type it encounters, memoizes the resolution
// process-wide, and drives the Reader/Writer and the encryption layer during
// recursive traversal.
//
// A Serializer is stateless apart from its configuration and safe for
// concurrent use.
type Serializer struct {
	encrypt  bool
	mapping  *Mapping
	logger   *slog.Logger
	maxDepth int
}

// Option configures a Serializer.
type Option func(*Serializer)

// WithEncryption makes the serializer wrap every top-level call in one
// encryption-layer activation cycle.
func WithEncryption() Option {
	return func(s *Serializer) { s.encrypt = true }
}

// WithMapping sets the type-mapping configuration for custom-object fields.
func WithMapping(m *Mapping) Option {
	return func(s *Serializer) { s.mapping = m }
}

// WithLogger enables structured error logging for top-level operations.
func WithLogger(l *slog.Logger) Option {
	return func(s *Serializer) { s.logger = l }
}

// WithMaxDepth bounds the nesting depth of the recursive read path.
func WithMaxDepth(n int) Option {
	return func(s *Serializer) { s.maxDepth = n }
}

// NewSerializer creates a serializer with the given options.
func NewSerializer(opts ...Option) *Serializer {
	s := &Serializer{maxDepth: defaultMaxDepth}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Strategy is a pluggable serializer for one category of runtime type.
// Strategy instances are stateless and shared process-wide; recursion into
// nested values re-enters the dispatcher passed in, never the strategy
// itself.
//
// Deserialize is invoked with the reader positioned on the value's first
// token and must leave the reader on the value's last token.
type Strategy interface {
	Serialize(s *Serializer, w *Writer, v any, ctx *OperationContext) error
	Deserialize(s *Serializer, r *Reader, ctx *OperationContext) (any, error)
}

// Serialize writes one value. A nil value writes the Null token directly;
// otherwise the strategy for the value's exact runtime type is resolved and,
// if the serializer is configured for encryption, the whole call is wrapped
// in a single encryption-layer cycle.
func (s *Serializer) Serialize(w *Writer, v any, ctx *OperationContext) error {
	if isNilValue(v) {
		w.WriteNull()
		return nil
	}
	if s.encrypt {
		w.BeginEncrypt()
		if err := s.serializeValue(w, v, ctx); err != nil {
			w.abortEncrypt()
			return err
		}
		return w.EndEncrypt(ctx)
	}
	return s.serializeValue(w, v, ctx)
}

// serializeValue dispatches on the runtime type without engaging the
// encryption layer; all recursion funnels through here.
func (s *Serializer) serializeValue(w *Writer, v any, ctx *OperationContext) error {
	if isNilValue(v) {
		w.WriteNull()
		return nil
	}
	strategy, err := strategyFor(reflect.TypeOf(v), s.encrypt)
	if err != nil {
		return err
	}
	return strategy.Serialize(s, w, v, ctx)
}

// Deserialize reads one value into the dynamic document model. The reader is
// advanced to the value's first token; if the serializer is configured for
// encryption, the whole read is wrapped in a single decryption-layer cycle.
func (s *Serializer) Deserialize(r *Reader, ctx *OperationContext) (any, error) {
	ok, err := r.AdvanceSkippingWhitespace()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newEOFError("deserialize", r.offset(), "JSON value")
	}
	if s.encrypt {
		if err := r.BeginDecrypt(ctx); err != nil {
			return nil, err
		}
		v, err := s.deserializeToken(r, ctx, 0)
		if err != nil {
			return nil, err
		}
		r.EndDecrypt()
		return v, nil
	}
	return s.deserializeToken(r, ctx, 0)
}

// deserializeToken builds a dynamic document value from the current token.
// Dispatch is by token kind, not by target type.
func (s *Serializer) deserializeToken(r *Reader, ctx *OperationContext, depth int) (any, error) {
	if depth > s.maxDepth {
		return nil, WrapError(ErrDepthLimit, "deserialize", "input exceeds maximum nesting depth")
	}
	switch r.Kind() {
	case KindNull:
		return nil, nil
	case KindString:
		return r.Value(), nil
	case KindBoolean:
		return r.Bool(), nil
	case KindNumber:
		return Number(r.Value()), nil
	case KindOpenObject:
		obj := NewObject()
		names := r.PropertyNames()
		for {
			name, ok, err := names.Next()
			if err != nil {
				return nil, err
			}
			if !ok {
				return obj, nil
			}
			advanced, err := r.AdvanceSkippingWhitespace()
			if err != nil {
				return nil, err
			}
			if !advanced {
				return nil, newEOFError("deserialize", r.offset(), "property value")
			}
			value, err := s.deserializeToken(r, ctx, depth+1)
			if err != nil {
				return nil, err
			}
			obj.Append(name, value)
		}
	case KindOpenArray:
		arr := NewArray()
		// An empty array has no content to deserialize; detect it by
		// lookahead so no recursive call happens.
		next, err := r.PeekNextKind()
		if err != nil {
			return nil, err
		}
		if next == KindCloseArray {
			if _, err := r.AdvanceSkippingWhitespace(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		for {
			advanced, err := r.AdvanceSkippingWhitespace()
			if err != nil {
				return nil, err
			}
			if !advanced {
				return nil, newEOFError("deserialize", r.offset(), "array element")
			}
			value, err := s.deserializeToken(r, ctx, depth+1)
			if err != nil {
				return nil, err
			}
			arr.Append(value)

			advanced, err = r.AdvanceSkippingWhitespace()
			if err != nil {
				return nil, err
			}
			if !advanced {
				return nil, newEOFError("deserialize", r.offset(), `"," or "]"`)
			}
			switch r.Kind() {
			case KindItemSeparator:
			case KindCloseArray:
				return arr, nil
			default:
				return nil, newTokenError("deserialize", r.offset(), `"," or "]"`, r.Kind())
			}
		}
	default:
		return nil, newTokenError("deserialize", r.offset(), "JSON value", r.Kind())
	}
}

// deserializeAs advances to the next value and reads it as the static type
// t, engaging the encryption layer when the serializer is configured for it.
func (s *Serializer) deserializeAs(r *Reader, ctx *OperationContext, t reflect.Type) (any, error) {
	ok, err := r.AdvanceSkippingWhitespace()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newEOFError("deserialize", r.offset(), "JSON value")
	}
	if s.encrypt {
		if err := r.BeginDecrypt(ctx); err != nil {
			return nil, err
		}
		v, err := s.deserializeTokenAs(r, ctx, t)
		if err != nil {
			return nil, err
		}
		r.EndDecrypt()
		return v, nil
	}
	return s.deserializeTokenAs(r, ctx, t)
}

// readValueAs advances to the next value and reads it as t without engaging
// the encryption layer. Container strategies use this for their members.
func (s *Serializer) readValueAs(r *Reader, ctx *OperationContext, t reflect.Type) (any, error) {
	ok, err := r.AdvanceSkippingWhitespace()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newEOFError("deserialize", r.offset(), "JSON value")
	}
	return s.deserializeTokenAs(r, ctx, t)
}

// deserializeTokenAs reads the current value as the static type t. Interface
// targets fall back to the dynamic document model.
func (s *Serializer) deserializeTokenAs(r *Reader, ctx *OperationContext, t reflect.Type) (any, error) {
	if t == nil || t.Kind() == reflect.Interface {
		return s.deserializeToken(r, ctx, 0)
	}
	strategy, err := strategyFor(t, s.encrypt)
	if err != nil {
		return nil, err
	}
	return strategy.Deserialize(s, r, ctx)
}

// isNilValue reports whether v serializes as the Null token without strategy
// resolution.
func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
