package jsonwire

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/s2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	sessionNoncePrefix  = "chacha.nonce_prefix"
	sessionNonceCounter = "chacha.nonce_counter"

	noncePrefixSize = chacha20poly1305.NonceSizeX - 8
)

// ChaChaMechanism is the built-in encryption mechanism: XChaCha20-Poly1305
// with a 32-byte key and base64 standard-encoded ciphertext.
//
// Nonces are derived from a random per-operation prefix plus a counter, both
// kept in the session state, so repeated encryptions within one serialization
// pass never reuse a nonce. The nonce is prepended to the sealed payload, so
// decryption is self-contained.
type ChaChaMechanism struct {
	// Compress applies s2 compression to the plaintext before sealing and
	// the inverse after opening.
	Compress bool
}

var _ Mechanism = (*ChaChaMechanism)(nil)

// Encrypt seals plaintext JSON text into a base64 ciphertext string.
func (m *ChaChaMechanism) Encrypt(plaintext string, key []byte, session SessionState) (string, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", fmt.Errorf("%w: need %d bytes, have %d", ErrKeySize, chacha20poly1305.KeySize, len(key))
	}
	nonce, err := m.nextNonce(session)
	if err != nil {
		return "", err
	}
	data := []byte(plaintext)
	if m.Compress {
		data = s2.Encode(nil, data)
	}
	sealed := aead.Seal(nonce, nonce, data, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt, recovering the plaintext JSON text.
func (m *ChaChaMechanism) Decrypt(ciphertext string, key []byte, session SessionState) (string, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", fmt.Errorf("%w: need %d bytes, have %d", ErrKeySize, chacha20poly1305.KeySize, len(key))
	}
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("ciphertext is not valid base64: %w", err)
	}
	if len(sealed) < chacha20poly1305.NonceSizeX+aead.Overhead() {
		return "", fmt.Errorf("ciphertext too short: %d bytes", len(sealed))
	}
	nonce := sealed[:chacha20poly1305.NonceSizeX]
	data, err := aead.Open(nil, nonce, sealed[chacha20poly1305.NonceSizeX:], nil)
	if err != nil {
		return "", fmt.Errorf("ciphertext authentication failed: %w", err)
	}
	if m.Compress {
		data, err = s2.Decode(nil, data)
		if err != nil {
			return "", fmt.Errorf("decompression failed: %w", err)
		}
	}
	return string(data), nil
}

// nextNonce builds the next nonce from the session's random prefix and
// monotonically increasing counter, creating both on first use.
func (m *ChaChaMechanism) nextNonce(session SessionState) ([]byte, error) {
	if session == nil {
		return nil, WrapError(ErrCipher, "encrypt", "operation context has no session state")
	}
	prefix, _ := session[sessionNoncePrefix].([]byte)
	if prefix == nil {
		prefix = make([]byte, noncePrefixSize)
		if _, err := rand.Read(prefix); err != nil {
			return nil, fmt.Errorf("nonce generation failed: %w", err)
		}
		session[sessionNoncePrefix] = prefix
	}
	counter, _ := session[sessionNonceCounter].(uint64)
	session[sessionNonceCounter] = counter + 1

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	copy(nonce, prefix)
	binary.BigEndian.PutUint64(nonce[noncePrefixSize:], counter)
	return nonce, nil
}
