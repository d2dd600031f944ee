package bulkhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultHashersAreDeterministic(t *testing.T) {
	for key := uint32(0); key < 1000; key++ {
		assert.Equal(t, DefaultHasher(key), DefaultHasher(key))
		assert.Equal(t, DefaultSecondHasher(key), DefaultSecondHasher(key))
	}
}

func TestDefaultHashersSpreadSequentialKeys(t *testing.T) {
	// Sequential keys must land on distinct hashes; both mixers are
	// bijections so collisions here would be a regression.
	seen1 := make(map[uint64]struct{})
	seen2 := make(map[uint64]struct{})
	for key := uint32(0); key < 10000; key++ {
		seen1[DefaultHasher(key)] = struct{}{}
		seen2[DefaultSecondHasher(key)] = struct{}{}
	}
	assert.Len(t, seen1, 10000)
	assert.Len(t, seen2, 10000)
}

func TestDefaultHashersAreIndependent(t *testing.T) {
	// both mixers map 0 to 0; every other key must diverge
	same := 0
	for key := uint32(1); key < 1000; key++ {
		if DefaultHasher(key) == DefaultSecondHasher(key) {
			same++
		}
	}
	assert.Zero(t, same)
}
