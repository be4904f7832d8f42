package jsonwire

import (
	"errors"
	"log/slog"
	"reflect"
)

// defaultSerializer backs the package-level convenience functions.
var defaultSerializer = NewSerializer()

// Marshal serializes v to JSON text with default configuration.
func Marshal(v any) (string, error) {
	return defaultSerializer.MarshalString(v, nil)
}

// Parse reads JSON text into the dynamic document model: nil, bool, string,
// Number, *Object or *Array.
func Parse(src string) (any, error) {
	return defaultSerializer.UnmarshalString(src, nil)
}

// MarshalString serializes v to JSON text. The given context supplies
// redaction, encryption and formatting configuration; a derived context with
// a fresh encryption session is used for the operation, so session material
// never leaks between calls.
func (s *Serializer) MarshalString(v any, ctx *OperationContext) (string, error) {
	opCtx := ctx.forOperation()
	w := NewWriter()
	if err := s.Serialize(w, v, opCtx); err != nil {
		s.logError("marshal", err)
		return "", err
	}
	return w.String(), nil
}

// UnmarshalString parses JSON text into the dynamic document model.
func (s *Serializer) UnmarshalString(src string, ctx *OperationContext) (any, error) {
	opCtx := ctx.forOperation()
	r := NewReader(src)
	v, err := s.Deserialize(r, opCtx)
	if err != nil {
		s.logError("unmarshal", err)
		return nil, err
	}
	return v, nil
}

// UnmarshalInto parses JSON text into the typed target, which must be a
// non-nil pointer.
func (s *Serializer) UnmarshalInto(src string, target any, ctx *OperationContext) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return WrapError(ErrUnsupportedType, "unmarshal", "target must be a non-nil pointer")
	}
	opCtx := ctx.forOperation()
	r := NewReader(src)
	value, err := s.deserializeAs(r, opCtx, rv.Type().Elem())
	if err != nil {
		s.logError("unmarshal", err)
		return err
	}
	if value == nil {
		rv.Elem().Set(reflect.Zero(rv.Type().Elem()))
		return nil
	}
	ev, err := conformValue(value, rv.Type().Elem())
	if err != nil {
		s.logError("unmarshal", err)
		return err
	}
	rv.Elem().Set(ev)
	return nil
}

// logError emits a structured record for a failed top-level operation.
func (s *Serializer) logError(op string, err error) {
	if s.logger == nil {
		return
	}
	offset := -1
	var codecErr *CodecError
	if errors.As(err, &codecErr) {
		offset = codecErr.Offset
	}
	s.logger.Error("JSON operation failed",
		slog.String("operation", op),
		slog.Int("offset", offset),
		slog.String("error", err.Error()),
		slog.Bool("encryption", s.encrypt),
	)
}
