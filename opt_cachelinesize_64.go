//go:build bulkhash_opt_cachelinesize_64

package bulkhash

// CacheLineSize forced to 64 bytes via build tag.
const CacheLineSize = 64
