package jsonwire

import (
	"time"
)

// OperationContext is the per-call configuration bundle threaded through one
// serialize or deserialize operation: the redaction flag, the encryption
// mechanism with its key and mutable session state, and the date/time
// formatting policy.
type OperationContext struct {
	// Redact enables redaction of fields whose mapping rule marks them
	// redacted; they serialize as the literal string "[REDACTED]".
	Redact bool

	// Mechanism and Key configure the encryption transform layer. Both may
	// be nil when no field is encrypted.
	Mechanism Mechanism
	Key       []byte

	// Session carries mutable encryption material across the encrypt and
	// decrypt calls of one top-level operation. It is opaque to the codec.
	Session SessionState

	// TimeFormat is the layout used for time.Time values. Empty means
	// time.RFC3339.
	TimeFormat string
}

// NewOperationContext creates a context with default settings and an empty
// session.
func NewOperationContext() *OperationContext {
	return &OperationContext{Session: SessionState{}}
}

// forOperation derives the context actually used by one top-level operation:
// static configuration is copied, the mutable session starts fresh. This
// keeps session material from one serialization pass from leaking into the
// next while still sharing configuration.
func (c *OperationContext) forOperation() *OperationContext {
	if c == nil {
		return NewOperationContext()
	}
	derived := *c
	derived.Session = SessionState{}
	return &derived
}

// withTimeFormat returns a copy of the context using the given time layout,
// or the context itself if the layout is empty.
func (c *OperationContext) withTimeFormat(layout string) *OperationContext {
	if layout == "" {
		return c
	}
	if c == nil {
		c = NewOperationContext()
	}
	derived := *c
	derived.TimeFormat = layout
	return &derived
}

// timeLayout returns the effective date/time layout for this context.
func (c *OperationContext) timeLayout() string {
	if c == nil || c.TimeFormat == "" {
		return time.RFC3339
	}
	return c.TimeFormat
}
