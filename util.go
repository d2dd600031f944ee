package bulkhash

import (
	"math/bits"
	"runtime"
	"time"
)

// nextPowOf2 calculates the smallest power of 2 that is greater than or
// equal to n. Compatible with both 32-bit and 64-bit systems.
func nextPowOf2(n int) int {
	if n <= 0 {
		return 1
	}

	if bits.UintSize == 32 {
		v := uint32(n)
		v--
		v |= v >> 1
		v |= v >> 2
		v |= v >> 4
		v |= v >> 8
		v |= v >> 16
		v++
		return int(v)
	}

	v := uint64(n)
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v |= v >> 32
	v++
	return int(v)
}

// calcParallelism calculates the number of goroutines for batch processing.
//
// Parameters:
//   - items: number of batch elements to process
//   - threshold: minimum batch size to enable parallel processing
//   - cpus: number of available workers
//
// Returns:
//   - chunkSize: number of elements processed per goroutine
//   - chunks: suggested degree of parallelism (number of goroutines)
func calcParallelism(items, threshold, cpus int) (chunkSize, chunks int) {
	// If the batch is too small, use single-threaded processing.
	if items <= threshold {
		return items, 1
	}

	chunks = min(items/threshold, cpus)
	chunkSize = (items + chunks - 1) / chunks

	return chunkSize, chunks
}

const maxSpins = 16

// delay backs off a spinning goroutine: brief yields first, then short
// sleeps that work effectively as backoff under high concurrency.
func delay(spins *int) {
	const yieldSleep = 500 * time.Microsecond
	if *spins < maxSpins {
		runtime.Gosched()
		*spins++
	} else {
		time.Sleep(yieldSleep)
		*spins = 0
	}
}
