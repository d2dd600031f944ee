package bulkhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDynamicMapGrowsOnLoadFactor(t *testing.T) {
	m, err := NewDynamicMap(WithCapacity(8), WithMaxLoadFactor(0.5))
	require.NoError(t, err)
	assert.Equal(t, 1, m.Submaps())
	assert.Equal(t, 8, m.TotalCapacity())

	inserted := 0
	next := uint32(1)
	for round := 0; round < 16; round++ {
		keys := make([]uint32, 16)
		values := make([]uint32, 16)
		for i := range keys {
			keys[i] = next
			values[i] = next * 10
			next++
		}
		n, err := m.Insert(keys, values)
		require.NoError(t, err)
		assert.Equal(t, 16, n)
		inserted += n
	}

	assert.Greater(t, m.Submaps(), 1)
	assert.Equal(t, m.Submaps()-1, m.Growths())
	assert.Equal(t, inserted, m.Size())
	assert.Less(t, m.LoadFactor(), 0.5)

	// growth preserves prior keys
	all := make([]uint32, inserted)
	for i := range all {
		all[i] = uint32(i + 1)
	}
	hits := make([]bool, inserted)
	require.NoError(t, m.Contains(all, hits))
	for i, h := range hits {
		require.True(t, h, "key %d lost after growth", all[i])
	}
}

func TestDynamicMapSubmapCapacitiesNonDecreasing(t *testing.T) {
	m, err := NewDynamicMap(WithCapacity(8), WithMaxLoadFactor(0.5))
	require.NoError(t, err)

	next := uint32(1)
	for round := 0; round < 20; round++ {
		keys := make([]uint32, 8)
		values := make([]uint32, 8)
		for i := range keys {
			keys[i] = next
			values[i] = next
			next++
		}
		_, err := m.Insert(keys, values)
		require.NoError(t, err)
	}

	subs := m.submaps()
	require.Greater(t, len(subs), 1)
	for i := 1; i < len(subs); i++ {
		assert.GreaterOrEqual(t, subs[i].Capacity(), subs[i-1].Capacity())
	}
}

func TestDynamicMapLookupsFanOutAcrossSubmaps(t *testing.T) {
	m, err := NewDynamicMap(
		WithCapacity(8),
		WithMaxLoadFactor(0.5),
		WithMultimap(),
	)
	require.NoError(t, err)

	// force several growth rounds while re-inserting the same key, so
	// its copies spread over different submaps
	for round := 0; round < 6; round++ {
		keys := make([]uint32, 8)
		values := make([]uint32, 8)
		for i := range keys {
			keys[i] = uint32(round*8 + i + 100)
			values[i] = uint32(i)
		}
		_, err := m.Insert(keys, values)
		require.NoError(t, err)

		_, err = m.Insert([]uint32{7}, []uint32{uint32(round)})
		require.NoError(t, err)
	}
	require.Greater(t, m.Submaps(), 1)

	assert.Equal(t, 6, m.Count([]uint32{7}))
	assert.Equal(t, 6, m.CountOuter([]uint32{7}))

	got, err := m.RetrieveAll([]uint32{7})
	require.NoError(t, err)
	require.Len(t, got, 6)
	seen := make(map[uint32]bool)
	for _, p := range got {
		assert.Equal(t, uint32(7), p.Key)
		seen[p.Value] = true
	}
	assert.Len(t, seen, 6)
}

func TestDynamicMapOuterVariants(t *testing.T) {
	m, err := NewDynamicMap(WithCapacity(64))
	require.NoError(t, err)

	_, err = m.Insert([]uint32{1, 2}, []uint32{10, 20})
	require.NoError(t, err)

	assert.Equal(t, 2, m.Count([]uint32{1, 2, 3}))
	assert.Equal(t, 3, m.CountOuter([]uint32{1, 2, 3}))

	out := make([]Pair, 4)
	n, err := m.RetrieveOuter([]uint32{1, 3}, out)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	got := out[:n]
	sortPairs(got)
	assert.Equal(t, []Pair{{1, 10}, {3, DefaultEmptyValue}}, got)
}

func TestDynamicMapEraseAcrossSubmaps(t *testing.T) {
	m, err := NewDynamicMap(
		WithCapacity(8),
		WithMaxLoadFactor(0.5),
		WithErase(DefaultErasedKey),
	)
	require.NoError(t, err)

	next := uint32(1)
	for round := 0; round < 8; round++ {
		keys := make([]uint32, 8)
		values := make([]uint32, 8)
		for i := range keys {
			keys[i] = next
			values[i] = next
			next++
		}
		_, err := m.Insert(keys, values)
		require.NoError(t, err)
	}
	require.Greater(t, m.Submaps(), 1)
	total := int(next - 1)
	assert.Equal(t, total, m.Size())

	victims := []uint32{1, 9, 17, 25}
	n, err := m.Erase(victims)
	require.NoError(t, err)
	assert.Equal(t, len(victims), n)
	assert.Equal(t, total-len(victims), m.Size())

	hits := make([]bool, len(victims))
	require.NoError(t, m.Contains(victims, hits))
	for _, h := range hits {
		assert.False(t, h)
	}
}

func TestDynamicMapEraseDisabled(t *testing.T) {
	m, err := NewDynamicMap(WithCapacity(8))
	require.NoError(t, err)

	_, err = m.Erase([]uint32{1})
	assert.ErrorIs(t, err, ErrEraseDisabled)
}

func TestDynamicMapCapacityLimit(t *testing.T) {
	m, err := NewDynamicMap(WithCapacity(8), WithMaxTotalCapacity(8))
	require.NoError(t, err)

	keys := make([]uint32, 8)
	values := make([]uint32, 8)
	for i := range keys {
		keys[i] = uint32(i + 1)
		values[i] = uint32(i)
	}
	n, err := m.Insert(keys, values)
	assert.ErrorIs(t, err, ErrCapacityLimit)
	assert.Zero(t, n)

	// a smaller batch that fits below the load factor still works, and
	// earlier content stays queryable after a failed growth
	n, err = m.Insert(keys[:4], values[:4])
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = m.Insert(keys[4:], values[4:])
	assert.ErrorIs(t, err, ErrCapacityLimit)

	hits := make([]bool, 4)
	require.NoError(t, m.Contains(keys[:4], hits))
	for _, h := range hits {
		assert.True(t, h)
	}
}

func TestDynamicMapLengthMismatch(t *testing.T) {
	m, err := NewDynamicMap(WithCapacity(8))
	require.NoError(t, err)

	_, err = m.Insert([]uint32{1}, nil)
	assert.ErrorIs(t, err, ErrLengthMismatch)
	assert.ErrorIs(t, m.Contains([]uint32{1}, nil), ErrLengthMismatch)
}
