package jsonwire

import (
	"errors"
	"fmt"
)

// Core error definitions for the codec
var (
	// Parse errors: the input is not well-formed JSON
	ErrParse           = errors.New("malformed JSON input")
	ErrUnexpectedToken = errors.New("unexpected token")
	ErrUnexpectedEOF   = errors.New("unexpected end of input")

	// Unsupported-feature errors: valid JSON the codec does not handle
	ErrUnicodeEscape = errors.New("unicode escape sequences are not supported")

	// Limit-related errors
	ErrDepthLimit = errors.New("nesting depth limit exceeded")

	// Encryption errors
	ErrCipher  = errors.New("encryption mechanism failure")
	ErrKeySize = errors.New("invalid encryption key size")

	// Dispatch errors
	ErrUnsupportedType = errors.New("unsupported target type")
	ErrTypeMismatch    = errors.New("type mismatch")
)

// CodecError represents a serialization or parse failure with essential context
type CodecError struct {
	Op      string `json:"op"`      // Operation that failed
	Offset  int    `json:"offset"`  // Byte offset in the active input, -1 if not applicable
	Message string `json:"message"` // Human-readable error message
	Err     error  `json:"err"`     // Underlying sentinel error
}

func (e *CodecError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("jsonwire %s failed at offset %d: %s", e.Op, e.Offset, e.Message)
	}
	return fmt.Sprintf("jsonwire %s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error for error chain support
func (e *CodecError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is chains
func (e *CodecError) Is(target error) bool {
	if target == nil {
		return false
	}
	if targetErr, ok := target.(*CodecError); ok {
		return e.Op == targetErr.Op && errors.Is(e.Err, targetErr.Err)
	}
	return errors.Is(e.Err, target)
}

// ContractError reports misuse of the package API: an operation invoked in a
// state its contract forbids. These are programming errors, not data errors,
// so they are raised as panics rather than returned.
type ContractError struct {
	Op      string
	Message string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("jsonwire contract violation in %s: %s", e.Op, e.Message)
}

// newParseError creates a CodecError for malformed input
func newParseError(op string, offset int, format string, args ...any) error {
	return &CodecError{
		Op:      op,
		Offset:  offset,
		Message: fmt.Sprintf(format, args...),
		Err:     ErrParse,
	}
}

// newTokenError creates a CodecError for a grammar position mismatch
func newTokenError(op string, offset int, expected string, found TokenKind) error {
	return &CodecError{
		Op:      op,
		Offset:  offset,
		Message: fmt.Sprintf("expected %s, found %v", expected, found),
		Err:     ErrUnexpectedToken,
	}
}

// newEOFError creates a CodecError for premature end of input
func newEOFError(op string, offset int, expected string) error {
	return &CodecError{
		Op:      op,
		Offset:  offset,
		Message: fmt.Sprintf("expected %s, found end of input", expected),
		Err:     ErrUnexpectedEOF,
	}
}

// newCipherError creates a CodecError wrapping a mechanism failure
func newCipherError(op string, err error) error {
	return &CodecError{
		Op:      op,
		Offset:  -1,
		Message: err.Error(),
		Err:     ErrCipher,
	}
}

// WrapError wraps an error with additional operation context
func WrapError(err error, op, message string) error {
	if err == nil {
		return nil
	}
	return &CodecError{
		Op:      op,
		Offset:  -1,
		Message: message,
		Err:     err,
	}
}
