package bulkhash

// Hasher maps a 32-bit key to a 64-bit hash. Probe sequences are pure
// functions of the hash outputs, so a Hasher must itself be a pure
// function: independent goroutines recompute the same probe sequence for
// the same key with no shared state.
type Hasher func(key uint32) uint64

// KeyEqual reports whether two key words are equal. The default is ==.
// A custom KeyEqual only affects match detection during lookups, inserts
// and erases; slot claiming always swaps the exact observed word.
type KeyEqual func(a, b uint32) bool

// DefaultHasher widens the key and applies a splitmix64-style finalizer.
// The finalizer is a bijection with strong avalanche behavior, which
// keeps probe start positions well spread even for sequential keys.
func DefaultHasher(key uint32) uint64 {
	h := uint64(key)
	h ^= h >> 30
	h *= 0xbf58476d1ce4e5b9
	h ^= h >> 27
	h *= 0x94d049bb133111eb
	h ^= h >> 31
	return h
}

// DefaultSecondHasher is an independent mixer used by double hashing to
// derive the probe step. Different multipliers than DefaultHasher so the
// two outputs are uncorrelated.
func DefaultSecondHasher(key uint32) uint64 {
	h := uint64(key)
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h
}

func defaultKeyEqual(a, b uint32) bool { return a == b }
