package bulkhash

import (
	"sync/atomic"
)

// Pair is one key/value element of an input or output batch.
type Pair struct {
	Key   uint32
	Value uint32
}

// pack combines a key and value into one slot word. The pair occupies a
// single 64-bit word so every slot transition is one compare-and-swap
// and every load observes a consistent pair.
func pack(key, value uint32) uint64 {
	return uint64(key)<<32 | uint64(value)
}

func slotKey(w uint64) uint32 { return uint32(w >> 32) }

func slotValue(w uint64) uint32 { return uint32(w) }

// Table is a fixed-capacity concurrent hash table over 32-bit keys and
// values. It never grows: the caller presizes it for the expected
// occupancy (see CapacityError). By default it is unique-keyed; with
// WithMultimap a key may occupy many slots.
//
// A slot's state lives entirely in the key half of its word: the
// empty-key sentinel marks a free slot, the erased-key sentinel (when
// erase is enabled) marks a tombstone, anything else is occupied. All
// mutation is per-slot CAS; a Table must not be copied after first use.
type Table struct {
	slots []atomic.Uint64
	mask  uint64
	size  liveCounter

	// precomputed full words for the two reserved slot states
	emptyWord uint64
	tombWord  uint64

	emptyKey     uint32
	emptyValue   uint32
	erasedKey    uint32
	eraseEnabled bool
	multimap     bool

	hash1       Hasher
	hash2       Hasher
	keyEqual    KeyEqual
	probing     ProbingScheme
	parallelism int
}

// NewTable builds a fixed-capacity table from the given options.
// Capacity is rounded up to a power of 2.
func NewTable(options ...func(*Config)) (*Table, error) {
	cfg, err := buildConfig(options...)
	if err != nil {
		return nil, err
	}
	return newTable(&cfg, cfg.capacity), nil
}

func newTable(cfg *Config, capacity int) *Table {
	capacity = nextPowOf2(capacity)
	t := &Table{
		slots:        make([]atomic.Uint64, capacity),
		mask:         uint64(capacity - 1),
		size:         newLiveCounter(capacity, cfg.parallelism),
		emptyWord:    pack(cfg.emptyKey, cfg.emptyValue),
		tombWord:     pack(cfg.erasedKey, cfg.emptyValue),
		emptyKey:     cfg.emptyKey,
		emptyValue:   cfg.emptyValue,
		erasedKey:    cfg.erasedKey,
		eraseEnabled: cfg.eraseEnabled,
		multimap:     cfg.multimap,
		hash1:        cfg.hash1,
		hash2:        cfg.hash2,
		keyEqual:     cfg.keyEqual,
		probing:      cfg.probing,
		parallelism:  cfg.parallelism,
	}
	if t.emptyWord != 0 {
		// fresh slots are zeroed; publish the empty word
		dispatch(capacity, cfg.parallelism, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				t.slots[i].Store(t.emptyWord)
			}
		})
	}
	return t
}

type insertStatus uint8

const (
	insertedNew insertStatus = iota
	alreadyPresent
	tableFull
)

func (t *Table) insertOne(key, value uint32) insertStatus {
	if t.multimap {
		return t.insertOneMulti(key, value)
	}
	return t.insertOneUnique(key, value)
}

// insertOneUnique walks the probe sequence looking for the key or its
// terminal empty slot. The first tombstone seen is remembered and claimed
// only when the key turns out to be absent, so an erase-then-reinsert
// leaves exactly one live copy. A lost CAS restarts the scan: the
// terminal slot may have moved.
func (t *Table) insertOneUnique(key, value uint32) insertStatus {
	h1, h2 := t.hash1(key), t.hash2(key)
	n := uint64(len(t.slots))
	newWord := pack(key, value)
	spins := 0

scan:
	for {
		tomb := -1
		for step := uint64(0); step < n; step++ {
			idx := t.probing.Slot(h1, h2, step, t.mask)
			k := slotKey(t.slots[idx].Load())
			switch {
			case k == t.emptyKey:
				target, old := idx, t.emptyWord
				if tomb >= 0 {
					target, old = uint64(tomb), t.tombWord
				}
				if t.slots[target].CompareAndSwap(old, newWord) {
					t.size.add(target, 1)
					return insertedNew
				}
				// Lost the slot. The winner may have inserted this
				// very key.
				if t.keyEqual(slotKey(t.slots[target].Load()), key) {
					return alreadyPresent
				}
				delay(&spins)
				continue scan
			case t.eraseEnabled && k == t.erasedKey:
				if tomb < 0 {
					tomb = int(idx)
				}
			default:
				if t.keyEqual(k, key) {
					return alreadyPresent
				}
			}
		}
		// Probe sequence exhausted with no empty slot; a remembered
		// tombstone is still claimable.
		if tomb < 0 {
			return tableFull
		}
		if t.slots[tomb].CompareAndSwap(t.tombWord, newWord) {
			t.size.add(uint64(tomb), 1)
			return insertedNew
		}
		delay(&spins)
		continue scan
	}
}

// insertOneMulti claims the first empty or tombstoned slot; occupied
// slots are skipped whether they match or not, so multiplicity is simply
// the number of slots holding the key.
func (t *Table) insertOneMulti(key, value uint32) insertStatus {
	h1, h2 := t.hash1(key), t.hash2(key)
	n := uint64(len(t.slots))
	newWord := pack(key, value)

	for step := uint64(0); step < n; step++ {
		idx := t.probing.Slot(h1, h2, step, t.mask)
		w := t.slots[idx].Load()
		k := slotKey(w)
		if k == t.emptyKey || (t.eraseEnabled && k == t.erasedKey) {
			if t.slots[idx].CompareAndSwap(w, newWord) {
				t.size.add(idx, 1)
				return insertedNew
			}
			// Lost the slot to another insert; it is occupied now,
			// keep probing.
		}
	}
	return tableFull
}

// containsOne stops at the first occupied matching slot (true) or the
// first empty slot (false). Tombstones never terminate the scan: the key
// may live further along the sequence.
func (t *Table) containsOne(key uint32) bool {
	h1, h2 := t.hash1(key), t.hash2(key)
	n := uint64(len(t.slots))

	for step := uint64(0); step < n; step++ {
		idx := t.probing.Slot(h1, h2, step, t.mask)
		k := slotKey(t.slots[idx].Load())
		switch {
		case k == t.emptyKey:
			return false
		case t.eraseEnabled && k == t.erasedKey:
		default:
			if t.keyEqual(k, key) {
				return true
			}
		}
	}
	return false
}

// countOne counts occupied matching slots until the terminal empty slot.
// A unique-keyed table stops at the first match.
func (t *Table) countOne(key uint32) int {
	h1, h2 := t.hash1(key), t.hash2(key)
	n := uint64(len(t.slots))
	matches := 0

	for step := uint64(0); step < n; step++ {
		idx := t.probing.Slot(h1, h2, step, t.mask)
		k := slotKey(t.slots[idx].Load())
		switch {
		case k == t.emptyKey:
			return matches
		case t.eraseEnabled && k == t.erasedKey:
		default:
			if t.keyEqual(k, key) {
				matches++
				if !t.multimap {
					return matches
				}
			}
		}
	}
	return matches
}

// retrieveOne emits one pair per occupied matching slot. The slot word is
// loaded once, so the emitted pair is always a consistent snapshot.
func (t *Table) retrieveOne(key uint32, emit func(Pair)) int {
	h1, h2 := t.hash1(key), t.hash2(key)
	n := uint64(len(t.slots))
	matches := 0

	for step := uint64(0); step < n; step++ {
		idx := t.probing.Slot(h1, h2, step, t.mask)
		w := t.slots[idx].Load()
		k := slotKey(w)
		switch {
		case k == t.emptyKey:
			return matches
		case t.eraseEnabled && k == t.erasedKey:
		default:
			if t.keyEqual(k, key) {
				emit(Pair{Key: key, Value: slotValue(w)})
				matches++
				if !t.multimap {
					return matches
				}
			}
		}
	}
	return matches
}

// eraseOne retires matching slots to tombstones. The CAS is against the
// exact observed word, so a racing erase on the same slot succeeds on
// exactly one side and the counter moves once. The scan always continues
// to the terminal empty slot: a multimap erases every copy, and a
// unique-keyed table sheds any transient duplicate left by inserts that
// raced over tombstones.
func (t *Table) eraseOne(key uint32) int {
	h1, h2 := t.hash1(key), t.hash2(key)
	n := uint64(len(t.slots))
	erased := 0

	for step := uint64(0); step < n; step++ {
		idx := t.probing.Slot(h1, h2, step, t.mask)
		w := t.slots[idx].Load()
		k := slotKey(w)
		switch {
		case k == t.emptyKey:
			return erased
		case k == t.erasedKey:
		default:
			if t.keyEqual(k, key) {
				if t.slots[idx].CompareAndSwap(w, t.tombWord) {
					t.size.add(idx, -1)
					erased++
				}
				// Lost the race: the slot is a tombstone now and the
				// winner already decremented. Keep probing.
			}
		}
	}
	return erased
}

// Insert inserts the pairs (keys[i], values[i]) concurrently. For a
// unique-keyed table, a key already present is left untouched (insert is
// idempotent per key and does not overwrite the value); for a multimap,
// every pair claims its own slot. It returns the number of newly
// occupied slots.
//
// Elements whose probe sequence is exhausted without a free slot fail
// individually: the rest of the batch still completes and no other slot
// is disturbed. Such failures are reported through a *CapacityError.
func (t *Table) Insert(keys, values []uint32) (int, error) {
	if len(keys) != len(values) {
		return 0, ErrLengthMismatch
	}

	var inserted, failed atomic.Int64
	dispatch(len(keys), t.parallelism, func(lo, hi int) {
		var okN, fullN int64
		for i := lo; i < hi; i++ {
			switch t.insertOne(keys[i], values[i]) {
			case insertedNew:
				okN++
			case tableFull:
				fullN++
			}
		}
		inserted.Add(okN)
		failed.Add(fullN)
	})

	if f := failed.Load(); f > 0 {
		return int(inserted.Load()), &CapacityError{Failed: int(f), Capacity: len(t.slots)}
	}
	return int(inserted.Load()), nil
}

// Contains reports, per key, whether the key currently occupies at least
// one slot. out must have the same length as keys.
func (t *Table) Contains(keys []uint32, out []bool) error {
	if len(keys) != len(out) {
		return ErrLengthMismatch
	}
	dispatch(len(keys), t.parallelism, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out[i] = t.containsOne(keys[i])
		}
	})
	return nil
}

// Count returns the total number of occupied slots matching any of the
// keys. For a multimap this sums multiplicities; a key occurring several
// times in the batch is counted each time.
func (t *Table) Count(keys []uint32) int {
	var total atomic.Int64
	dispatch(len(keys), t.parallelism, func(lo, hi int) {
		var n int64
		for i := lo; i < hi; i++ {
			n += int64(t.countOne(keys[i]))
		}
		total.Add(n)
	})
	return int(total.Load())
}

// CountOuter is Count with outer-join semantics: a key with no match
// still contributes exactly 1, so the result is never smaller than
// len(keys).
func (t *Table) CountOuter(keys []uint32) int {
	var total atomic.Int64
	dispatch(len(keys), t.parallelism, func(lo, hi int) {
		var n int64
		for i := lo; i < hi; i++ {
			if m := t.countOne(keys[i]); m > 0 {
				n += int64(m)
			} else {
				n++
			}
		}
		total.Add(n)
	})
	return int(total.Load())
}

// Retrieve writes one output pair per occupied slot matching any of the
// keys, in no guaranteed order. Concurrent writers share an atomic output
// cursor, so pairs never collide. It returns the number of pairs written.
// If out is too small the batch still completes; the written prefix is
// valid and the error is a *TruncatedError carrying the required size
// (alternatively, size via Count first).
func (t *Table) Retrieve(keys []uint32, out []Pair) (int, error) {
	return t.retrieve(keys, out, false)
}

// RetrieveOuter is Retrieve with outer-join semantics: a key with no
// match emits one placeholder pair carrying the empty-value sentinel, so
// every input key contributes at least one output row.
func (t *Table) RetrieveOuter(keys []uint32, out []Pair) (int, error) {
	return t.retrieve(keys, out, true)
}

func (t *Table) retrieve(keys []uint32, out []Pair, outer bool) (int, error) {
	var cursor atomic.Int64
	emit := func(p Pair) {
		i := cursor.Add(1) - 1
		if int(i) < len(out) {
			out[i] = p
		}
	}
	dispatch(len(keys), t.parallelism, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			matches := t.retrieveOne(keys[i], emit)
			if outer && matches == 0 {
				emit(Pair{Key: keys[i], Value: t.emptyValue})
			}
		}
	})

	required := int(cursor.Load())
	if required > len(out) {
		return len(out), &TruncatedError{Required: required, Written: len(out)}
	}
	return required, nil
}

// RetrieveAll is the two-pass convenience form of Retrieve: it sizes the
// output via Count and returns a freshly allocated batch.
func (t *Table) RetrieveAll(keys []uint32) ([]Pair, error) {
	out := make([]Pair, t.Count(keys))
	n, err := t.Retrieve(keys, out)
	if err != nil {
		return out[:n], err
	}
	return out[:n], nil
}

// Erase retires every slot matching any of the keys to a tombstone and
// returns the number of slots erased. Tombstones keep lookups probing
// past them but are reclaimed by later inserts. Erase fails with
// ErrEraseDisabled unless the table was built WithErase.
func (t *Table) Erase(keys []uint32) (int, error) {
	if !t.eraseEnabled {
		return 0, ErrEraseDisabled
	}
	var erased atomic.Int64
	dispatch(len(keys), t.parallelism, func(lo, hi int) {
		var n int64
		for i := lo; i < hi; i++ {
			n += int64(t.eraseOne(keys[i]))
		}
		erased.Add(n)
	})
	return int(erased.Load()), nil
}

// Size returns the number of live (occupied, non-tombstoned) slots. It is
// exact at the caller's synchronization points; while bulk calls are in
// flight it reflects whichever of their transitions have completed.
func (t *Table) Size() int {
	return int(t.size.sum())
}

// Capacity returns the slot capacity (a power of 2).
func (t *Table) Capacity() int {
	return len(t.slots)
}

// LoadFactor returns the ratio of live slots to capacity.
func (t *Table) LoadFactor() float64 {
	return float64(t.Size()) / float64(len(t.slots))
}

// Stats is a point-in-time snapshot of a table's slot population.
type Stats struct {
	Capacity   int
	Size       int
	Tombstones int
	LoadFactor float64
}

// Stats scans the slot array and reports occupancy. Intended for
// introspection and tests, not for hot paths.
func (t *Table) Stats() Stats {
	tombs := 0
	if t.eraseEnabled {
		for i := range t.slots {
			if slotKey(t.slots[i].Load()) == t.erasedKey {
				tombs++
			}
		}
	}
	return Stats{
		Capacity:   len(t.slots),
		Size:       t.Size(),
		Tombstones: tombs,
		LoadFactor: t.LoadFactor(),
	}
}
