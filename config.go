package bulkhash

import (
	"errors"
	"runtime"
)

const (
	// defaultCapacity is the slot capacity used when WithCapacity is
	// not given.
	defaultCapacity = 256

	// defaultMaxLoadFactor is the aggregate occupancy threshold that
	// triggers DynamicMap growth.
	defaultMaxLoadFactor = 0.75

	// defaultGrowthFactor scales the newest submap's capacity when a
	// DynamicMap grows.
	defaultGrowthFactor = 2

	// minParallelBatchItems defines the minimum number of batch
	// elements required for parallel processing. Below this threshold,
	// serial processing is used to avoid the overhead of goroutine
	// creation.
	minParallelBatchItems = 256

	// DefaultEmptyKey is the default empty-key sentinel. User keys must
	// never equal the configured empty-key sentinel.
	DefaultEmptyKey = ^uint32(0)

	// DefaultEmptyValue is the default empty-value sentinel: the value
	// half of free and tombstoned slot words, and the "not found" marker
	// carried by RetrieveOuter placeholder rows.
	DefaultEmptyValue = ^uint32(0)

	// DefaultErasedKey is a conventional erased-key (tombstone) sentinel
	// to pass to WithErase alongside the default empty key.
	DefaultErasedKey = ^uint32(0) - 1
)

// Config defines construction-time options shared by Table and
// DynamicMap. Populate it through the With* functional options.
type Config struct {
	capacity     int
	emptyKey     uint32
	emptyValue   uint32
	erasedKey    uint32
	eraseEnabled bool
	multimap     bool

	hash1    Hasher
	hash2    Hasher
	keyEqual KeyEqual
	probing  ProbingScheme

	parallelism int

	// dynamic map only
	maxLoadFactor    float64
	growthFactor     int
	maxTotalCapacity int
}

func defaultConfig() Config {
	return Config{
		capacity:      defaultCapacity,
		emptyKey:      DefaultEmptyKey,
		emptyValue:    DefaultEmptyValue,
		hash1:         DefaultHasher,
		hash2:         DefaultSecondHasher,
		keyEqual:      defaultKeyEqual,
		probing:       LinearProbing{},
		parallelism:   runtime.GOMAXPROCS(0),
		maxLoadFactor: defaultMaxLoadFactor,
		growthFactor:  defaultGrowthFactor,
	}
}

// WithCapacity configures the slot capacity (for a DynamicMap, the
// capacity of its first submap). The value is rounded up to the next
// power of 2. Zero or negative values are ignored.
func WithCapacity(capacity int) func(*Config) {
	return func(c *Config) {
		if capacity > 0 {
			c.capacity = capacity
		}
	}
}

// WithEmptyKey overrides the empty-key sentinel. User keys must never
// equal it; violating that precondition is undefined behavior and is not
// checked at runtime.
func WithEmptyKey(key uint32) func(*Config) {
	return func(c *Config) {
		c.emptyKey = key
	}
}

// WithEmptyValue overrides the empty-value sentinel. It fills the value
// half of free and tombstoned slots and marks the "not found" rows of
// RetrieveOuter; values of occupied slots are unrestricted, but a user
// value equal to the sentinel makes outer-retrieval rows ambiguous.
func WithEmptyValue(value uint32) func(*Config) {
	return func(c *Config) {
		c.emptyValue = value
	}
}

// WithErase reserves erasedKey as the tombstone sentinel and enables the
// Erase operation. Without this option Erase fails with
// ErrEraseDisabled. The erased-key sentinel must differ from the
// empty-key sentinel; the constructor rejects collisions.
func WithErase(erasedKey uint32) func(*Config) {
	return func(c *Config) {
		c.erasedKey = erasedKey
		c.eraseEnabled = true
	}
}

// WithMultimap allows a key to occupy many slots; its multiplicity is the
// number of slots holding it. Insert skips every occupied slot (matching
// or not), and Erase removes all matching slots. Without this option the
// table is unique-keyed: Insert is idempotent per key.
func WithMultimap() func(*Config) {
	return func(c *Config) {
		c.multimap = true
	}
}

// WithHasher sets the primary hash function, which determines a key's
// initial probe position. nil keeps the default.
func WithHasher(h Hasher) func(*Config) {
	return func(c *Config) {
		if h != nil {
			c.hash1 = h
		}
	}
}

// WithSecondHasher sets the secondary hash function used by
// DoubleHashing to derive the probe step. nil keeps the default.
func WithSecondHasher(h Hasher) func(*Config) {
	return func(c *Config) {
		if h != nil {
			c.hash2 = h
		}
	}
}

// WithKeyEqual sets a custom key-equality function used for match
// detection. nil keeps the default (==).
func WithKeyEqual(eq KeyEqual) func(*Config) {
	return func(c *Config) {
		if eq != nil {
			c.keyEqual = eq
		}
	}
}

// WithProbing selects the probe-sequence strategy, e.g. LinearProbing or
// DoubleHashing. nil keeps the default (LinearProbing).
func WithProbing(p ProbingScheme) func(*Config) {
	return func(c *Config) {
		if p != nil {
			c.probing = p
		}
	}
}

// WithParallelism caps the number of goroutines a bulk call may use.
// Zero or negative values are ignored (default: GOMAXPROCS).
func WithParallelism(n int) func(*Config) {
	return func(c *Config) {
		if n > 0 {
			c.parallelism = n
		}
	}
}

// WithMaxLoadFactor sets the aggregate occupancy threshold, in (0, 1],
// at which a DynamicMap appends a new submap. Ignored by Table.
func WithMaxLoadFactor(f float64) func(*Config) {
	return func(c *Config) {
		c.maxLoadFactor = f
	}
}

// WithGrowthFactor sets the capacity multiplier applied to the newest
// submap when a DynamicMap grows. Must be at least 2. Ignored by Table.
func WithGrowthFactor(g int) func(*Config) {
	return func(c *Config) {
		c.growthFactor = g
	}
}

// WithMaxTotalCapacity bounds the summed capacity of all submaps of a
// DynamicMap. A growth step that would exceed it fails with
// ErrCapacityLimit while previously allocated submaps stay valid.
// Zero means unbounded. Ignored by Table.
func WithMaxTotalCapacity(n int) func(*Config) {
	return func(c *Config) {
		if n > 0 {
			c.maxTotalCapacity = n
		}
	}
}

func buildConfig(options ...func(*Config)) (Config, error) {
	c := defaultConfig()
	for _, opt := range options {
		opt(&c)
	}

	if c.eraseEnabled && c.erasedKey == c.emptyKey {
		return c, errors.New("bulkhash: erased-key sentinel collides with empty-key sentinel")
	}
	if c.maxLoadFactor <= 0 || c.maxLoadFactor > 1 {
		return c, errors.New("bulkhash: max load factor must be in (0, 1]")
	}
	if c.growthFactor < 2 {
		return c, errors.New("bulkhash: growth factor must be at least 2")
	}
	return c, nil
}
