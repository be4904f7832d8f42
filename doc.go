// Package jsonwire provides a streaming, thread-safe JSON codec with
// type-directed serialization and transparent field-level encryption.
//
// The package is built from three layers:
//
//   - Reader / Writer: a character-level token scanner and emitter speaking
//     the raw JSON grammar, including whitespace as a first-class token.
//   - Serializer: a dispatcher that resolves a serialization strategy per
//     runtime type, memoizes the resolution process-wide, and drives the
//     Reader/Writer during recursive graph traversal.
//   - Object / Array / Number: a dynamic document model used when no static
//     target type is known, preserving member order and numeric literals.
//
// # Basic Usage
//
// Dynamic parsing and serialization:
//
//	v, err := jsonwire.Parse(`{"user":{"name":"John"},"score":1.50}`)
//	out, err := jsonwire.Marshal(v)
//
// Typed serialization with a configured serializer:
//
//	s := jsonwire.NewSerializer(jsonwire.WithMapping(m))
//	out, err := s.MarshalString(account, ctx)
//
// # Field Encryption
//
// A Mapping can mark individual struct fields as encrypted. The serializer
// then routes those sub-trees through the operation context's encryption
// mechanism without the surrounding traversal needing any special handling:
//
//	m := jsonwire.NewMapping().
//		Field(Account{}, "Secret", jsonwire.FieldRule{Encrypted: true})
//	ctx := jsonwire.NewOperationContext()
//	ctx.Mechanism = &jsonwire.ChaChaMechanism{}
//	ctx.Key = key
//
// The built-in ChaChaMechanism uses XChaCha20-Poly1305 with a per-operation
// nonce session; any Mechanism implementation can be substituted.
package jsonwire
