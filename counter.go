package bulkhash

import (
	"sync/atomic"
	"unsafe"
)

// counterStripe is one shard of a striped live-element counter, padded to
// a cache line to prevent false sharing between writers on different
// stripes.
type counterStripe struct {
	n atomic.Int64

	//lint:ignore U1000 prevents false sharing
	pad [(CacheLineSize - unsafe.Sizeof(atomic.Int64{})%CacheLineSize) % CacheLineSize]byte
}

// liveCounter counts live (occupied, non-tombstoned) slots. Increments and
// decrements are spread over stripes keyed by slot index; reads sum all
// stripes and are exact at the caller's synchronization points.
type liveCounter struct {
	stripes []counterStripe
}

func newLiveCounter(tableLen, cpus int) liveCounter {
	return liveCounter{
		stripes: make([]counterStripe, calcStripeLen(tableLen, cpus)),
	}
}

// calcStripeLen computes the stripe count for a table.
// Return value must be a power of 2.
func calcStripeLen(tableLen, cpus int) int {
	return nextPowOf2(min(cpus, max(tableLen>>10, 1)))
}

// add atomically adds delta to the stripe for the given slot index.
func (c *liveCounter) add(slotIdx uint64, delta int64) {
	sidx := uint64(len(c.stripes)-1) & slotIdx
	c.stripes[sidx].n.Add(delta)
}

// sum calculates the total live-element count by summing all stripes.
func (c *liveCounter) sum() int64 {
	var sum int64
	for i := range c.stripes {
		sum += c.stripes[i].n.Load()
	}
	return sum
}
