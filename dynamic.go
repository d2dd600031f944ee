package bulkhash

import (
	"sync/atomic"
)

// DynamicMap is a growable concurrent map built from an append-only,
// creation-ordered chain of fixed-capacity Tables ("submaps"). Inserts
// always target the newest submap; lookups and erases fan out across the
// whole chain. When aggregate occupancy crosses the configured max load
// factor, a new submap with scaled-up capacity is appended.
//
// Growth happens strictly at bulk-call boundaries, never inside a bulk
// call. Callers that issue bulk calls from several goroutines or streams
// must serialize Insert against other in-flight calls on the same map;
// lookups among themselves need no coordination.
//
// A key is unique within the submap that holds it (unless WithMultimap),
// but Insert does not consult older submaps: a key erased and re-inserted
// around a growth boundary can transiently exist in more than one submap.
// Contains, Count and Retrieve scan submaps in creation order, and Erase
// removes the key from every submap.
type DynamicMap struct {
	cfg     Config
	chain   atomic.Pointer[[]*Table]
	growths atomic.Uint32
}

// NewDynamicMap builds a growable map whose first submap has the
// configured initial capacity.
func NewDynamicMap(options ...func(*Config)) (*DynamicMap, error) {
	cfg, err := buildConfig(options...)
	if err != nil {
		return nil, err
	}
	m := &DynamicMap{cfg: cfg}
	chain := []*Table{newTable(&cfg, cfg.capacity)}
	m.chain.Store(&chain)
	return m, nil
}

func (m *DynamicMap) submaps() []*Table {
	return *m.chain.Load()
}

// grow is the growth checkpoint run at the start of Insert: while the
// projected aggregate occupancy reaches the max load factor, append a
// submap scaled by the growth factor (and large enough to absorb the
// incoming batch). It returns the chain the batch must insert into.
func (m *DynamicMap) grow(incoming int) ([]*Table, error) {
	subs := m.submaps()
	size, total := 0, 0
	for _, s := range subs {
		size += s.Size()
		total += s.Capacity()
	}

	for float64(size+incoming) >= m.cfg.maxLoadFactor*float64(total) {
		newCap := subs[len(subs)-1].Capacity() * m.cfg.growthFactor
		if fit := nextPowOf2(int(float64(incoming)/m.cfg.maxLoadFactor) + 1); newCap < fit {
			newCap = fit
		}
		if m.cfg.maxTotalCapacity > 0 && total+newCap > m.cfg.maxTotalCapacity {
			return nil, ErrCapacityLimit
		}

		next := make([]*Table, len(subs), len(subs)+1)
		copy(next, subs)
		next = append(next, newTable(&m.cfg, newCap))
		subs = next
		m.chain.Store(&subs)
		m.growths.Add(1)
		total += newCap
	}
	return subs, nil
}

// Insert runs the growth checkpoint, then inserts all pairs into the
// newest submap under the Table insert protocol. On ErrCapacityLimit no
// pair is inserted and previously inserted elements remain queryable.
func (m *DynamicMap) Insert(keys, values []uint32) (int, error) {
	if len(keys) != len(values) {
		return 0, ErrLengthMismatch
	}
	subs, err := m.grow(len(keys))
	if err != nil {
		return 0, err
	}
	return subs[len(subs)-1].Insert(keys, values)
}

// Contains reports, per key, whether the key occupies a slot in any
// submap. out must have the same length as keys.
func (m *DynamicMap) Contains(keys []uint32, out []bool) error {
	if len(keys) != len(out) {
		return ErrLengthMismatch
	}
	subs := m.submaps()
	dispatch(len(keys), m.cfg.parallelism, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			hit := false
			for _, s := range subs {
				if s.containsOne(keys[i]) {
					hit = true
					break
				}
			}
			out[i] = hit
		}
	})
	return nil
}

// Count sums, over all submaps, the occupied slots matching any of the
// keys.
func (m *DynamicMap) Count(keys []uint32) int {
	return m.count(keys, false)
}

// CountOuter is Count with outer-join semantics: a key matching nowhere
// in the chain still contributes exactly 1.
func (m *DynamicMap) CountOuter(keys []uint32) int {
	return m.count(keys, true)
}

func (m *DynamicMap) count(keys []uint32, outer bool) int {
	subs := m.submaps()
	var total atomic.Int64
	dispatch(len(keys), m.cfg.parallelism, func(lo, hi int) {
		var n int64
		for i := lo; i < hi; i++ {
			matches := 0
			for _, s := range subs {
				matches += s.countOne(keys[i])
			}
			if outer && matches == 0 {
				matches = 1
			}
			n += int64(matches)
		}
		total.Add(n)
	})
	return int(total.Load())
}

// Retrieve concatenates, through a shared atomic output cursor, the
// matching pairs from every submap in creation order per key. Semantics
// of out, the returned count and *TruncatedError match Table.Retrieve.
func (m *DynamicMap) Retrieve(keys []uint32, out []Pair) (int, error) {
	return m.retrieve(keys, out, false)
}

// RetrieveOuter is Retrieve with outer-join semantics: a key matching
// nowhere in the chain emits one placeholder pair carrying the
// empty-value sentinel.
func (m *DynamicMap) RetrieveOuter(keys []uint32, out []Pair) (int, error) {
	return m.retrieve(keys, out, true)
}

func (m *DynamicMap) retrieve(keys []uint32, out []Pair, outer bool) (int, error) {
	subs := m.submaps()
	var cursor atomic.Int64
	emit := func(p Pair) {
		i := cursor.Add(1) - 1
		if int(i) < len(out) {
			out[i] = p
		}
	}
	dispatch(len(keys), m.cfg.parallelism, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			matches := 0
			for _, s := range subs {
				matches += s.retrieveOne(keys[i], emit)
			}
			if outer && matches == 0 {
				emit(Pair{Key: keys[i], Value: m.cfg.emptyValue})
			}
		}
	})

	required := int(cursor.Load())
	if required > len(out) {
		return len(out), &TruncatedError{Required: required, Written: len(out)}
	}
	return required, nil
}

// RetrieveAll is the two-pass convenience form of Retrieve.
func (m *DynamicMap) RetrieveAll(keys []uint32) ([]Pair, error) {
	out := make([]Pair, m.Count(keys))
	n, err := m.Retrieve(keys, out)
	return out[:n], err
}

// Erase removes each key wherever it is found across all submaps and
// returns the number of slots erased. Fails with ErrEraseDisabled unless
// the map was built WithErase.
func (m *DynamicMap) Erase(keys []uint32) (int, error) {
	if !m.cfg.eraseEnabled {
		return 0, ErrEraseDisabled
	}
	subs := m.submaps()
	var erased atomic.Int64
	dispatch(len(keys), m.cfg.parallelism, func(lo, hi int) {
		var n int64
		for i := lo; i < hi; i++ {
			for _, s := range subs {
				n += int64(s.eraseOne(keys[i]))
			}
		}
		erased.Add(n)
	})
	return int(erased.Load()), nil
}

// Size returns the number of live elements summed over all submaps.
func (m *DynamicMap) Size() int {
	size := 0
	for _, s := range m.submaps() {
		size += s.Size()
	}
	return size
}

// TotalCapacity returns the summed slot capacity of all submaps.
func (m *DynamicMap) TotalCapacity() int {
	total := 0
	for _, s := range m.submaps() {
		total += s.Capacity()
	}
	return total
}

// Submaps returns the current length of the submap chain.
func (m *DynamicMap) Submaps() int {
	return len(m.submaps())
}

// Growths returns how many submaps have been appended since creation.
func (m *DynamicMap) Growths() int {
	return int(m.growths.Load())
}

// LoadFactor returns aggregate occupancy across the chain.
func (m *DynamicMap) LoadFactor() float64 {
	return float64(m.Size()) / float64(m.TotalCapacity())
}
