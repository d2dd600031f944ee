//go:build bulkhash_opt_cachelinesize_128

package bulkhash

// CacheLineSize forced to 128 bytes via build tag
// (e.g. Apple silicon, POWER).
const CacheLineSize = 128
