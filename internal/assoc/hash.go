package assoc

import (
	"hash/fnv"

	"golang.org/x/text/unicode/norm"
)

// StringHash hashes the NFC form of s with FNV-1a.
//
// Normalizing first means "café" typed with a combining accent and with a
// precomposed é land on the same hash. Keys themselves are compared as given,
// so callers that want normalized equality must store normalized keys
// (see Normalize).
func StringHash(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(norm.NFC.Bytes([]byte(s)))
	return h.Sum64()
}

// Normalize returns the NFC form of s.
func Normalize(s string) string {
	return norm.NFC.String(s)
}

// Uint64Hash scrambles a 64-bit identity with the splitmix64 finalizer.
//
// Identities are usually small sequential counters; feeding them straight in
// as hashes would build a linked list instead of a tree.
func Uint64Hash(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
