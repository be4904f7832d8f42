package jsonwire

import (
	"reflect"

	"github.com/cespare/xxhash/v2"
	"github.com/cybergodev/jsonwire/internal"
)

// The two process-wide caches below are lazily populated and shared by every
// concurrent operation. Resolution is idempotent: the same key always yields
// the identical cached instance, and failed resolutions are retried fresh.

type strategyKey struct {
	t         reflect.Type
	encrypted bool
}

type serializerKey struct {
	encrypted   bool
	fingerprint uint64
}

var (
	// strategyCache memoizes strategy resolution per (runtime type,
	// encryption-enabled) key.
	strategyCache = internal.NewRegistry[strategyKey, Strategy](16, func(k strategyKey) uint64 {
		h := xxhash.Sum64String(typeName(k.t))
		if k.encrypted {
			h ^= 0x9e3779b97f4a7c15
		}
		return h
	})

	// serializerCache memoizes dispatcher instances per (encryption-enabled,
	// mapping fingerprint) key. Dispatchers are configuration-dependent but
	// otherwise stateless, so sharing one instance per configuration is safe.
	serializerCache = internal.NewRegistry[serializerKey, *Serializer](8, func(k serializerKey) uint64 {
		h := k.fingerprint
		if k.encrypted {
			h ^= 0x9e3779b97f4a7c15
		}
		return h
	})
)

// strategyFor resolves the serialization strategy for t, memoized
// process-wide.
func strategyFor(t reflect.Type, encrypted bool) (Strategy, error) {
	return strategyCache.GetOrCreate(strategyKey{t: t, encrypted: encrypted}, func() (Strategy, error) {
		return resolveStrategy(t)
	})
}

// SerializerFor returns the shared dispatcher instance for the given
// encryption flag and mapping configuration, memoized process-wide.
func SerializerFor(encrypted bool, mapping *Mapping) *Serializer {
	key := serializerKey{encrypted: encrypted, fingerprint: mapping.Fingerprint()}
	s, _ := serializerCache.GetOrCreate(key, func() (*Serializer, error) {
		return &Serializer{
			encrypt:  encrypted,
			mapping:  mapping,
			maxDepth: defaultMaxDepth,
		}, nil
	})
	return s
}
