package jsonwire

import (
	"strings"
)

// Mechanism performs the actual encryption and decryption of JSON text. The
// codec treats the session state as opaque: the mechanism may keep whatever
// mutable material it needs (nonces, counters) in it, and the same session is
// carried across every encrypt/decrypt call within one top-level operation.
type Mechanism interface {
	Encrypt(plaintext string, key []byte, session SessionState) (string, error)
	Decrypt(ciphertext string, key []byte, session SessionState) (string, error)
}

// SessionState carries mutable encryption session material across the
// encrypt/decrypt calls of one top-level serialize or deserialize operation.
// Its contents belong to the Mechanism; the codec never inspects them.
type SessionState map[string]any

// BeginDecrypt activates the decryption layer. The current token must be
// Null, in which case no ciphertext is present and the layer is a no-op, or
// String, in which case the string's decoded value is decrypted and pushed as
// a nested character source; the reader then advances once so the current
// token is the first token of the decrypted text.
//
// Calling BeginDecrypt on any other token kind is a contract violation and
// panics.
func (r *Reader) BeginDecrypt(ctx *OperationContext) error {
	switch r.kind {
	case KindNull:
		r.crypto = append(r.crypto, false)
		return nil
	case KindString:
		if ctx == nil || ctx.Mechanism == nil {
			return WrapError(ErrCipher, "decrypt", "operation context has no encryption mechanism")
		}
		plain, err := ctx.Mechanism.Decrypt(r.str, ctx.Key, ctx.Session)
		if err != nil {
			return newCipherError("decrypt", err)
		}
		r.frames = append(r.frames, readerFrame{src: plain})
		r.crypto = append(r.crypto, true)
		if _, err := r.AdvanceSkippingWhitespace(); err != nil {
			return err
		}
		return nil
	default:
		panic(&ContractError{
			Op:      "decrypt",
			Message: "cannot decrypt a " + r.kind.String() + " token; ciphertext must be a String or Null token",
		})
	}
}

// EndDecrypt deactivates the decryption layer. The decrypted source must be
// fully consumed, up to trailing whitespace; leftover content is a contract
// violation and panics, as is calling EndDecrypt without a matching
// BeginDecrypt.
func (r *Reader) EndDecrypt() {
	if len(r.crypto) == 0 {
		panic(&ContractError{Op: "decrypt", Message: "decryption layer is not active"})
	}
	pushed := r.crypto[len(r.crypto)-1]
	r.crypto = r.crypto[:len(r.crypto)-1]
	if !pushed {
		return
	}
	f := r.top()
	for f.pos < len(f.src) {
		if !isWhitespaceByte(f.src[f.pos]) {
			panic(&ContractError{
				Op:      "decrypt",
				Message: "decrypted input not fully consumed before deactivation",
			})
		}
		f.pos++
	}
	r.frames = r.frames[:len(r.frames)-1]
}

// BeginEncrypt activates the encryption layer: subsequent writes are buffered
// as plaintext until EndEncrypt.
func (w *Writer) BeginEncrypt() {
	w.stack = append(w.stack, &strings.Builder{})
}

// EndEncrypt deactivates the encryption layer: the buffered plaintext is
// encrypted via the context's mechanism and emitted as a single string token
// into the underlying sink. Calling EndEncrypt without a matching
// BeginEncrypt is a contract violation and panics.
func (w *Writer) EndEncrypt(ctx *OperationContext) error {
	if len(w.stack) < 2 {
		panic(&ContractError{Op: "encrypt", Message: "encryption layer is not active"})
	}
	buf := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	if ctx == nil || ctx.Mechanism == nil {
		return WrapError(ErrCipher, "encrypt", "operation context has no encryption mechanism")
	}
	cipher, err := ctx.Mechanism.Encrypt(buf.String(), ctx.Key, ctx.Session)
	if err != nil {
		return newCipherError("encrypt", err)
	}
	w.WriteString(cipher)
	return nil
}

// abortEncrypt drops the active plaintext buffer without emitting anything.
// Used when serialization fails mid-encryption; the operation is aborted
// anyway, but the writer stack is left balanced.
func (w *Writer) abortEncrypt() {
	if len(w.stack) > 1 {
		w.stack = w.stack[:len(w.stack)-1]
	}
}
