// Package bulkhash provides concurrent, bulk-operated hash containers:
// a fixed-capacity open-addressing Table (unique-keyed map or multimap)
// and a growable DynamicMap built from an append-only chain of Tables.
//
// All operations are bulk operations: a single call processes a whole
// batch of keys or key/value pairs, spreading the batch across goroutines.
// Keys and values are fixed-width 32-bit words, packed together into one
// 64-bit slot word, so every slot transition is a single compare-and-swap
// and every load observes a consistent pair; arbitrarily many goroutines
// may race on the same table without locks. Slot state is encoded
// entirely in reserved key values: a key equal to the empty-key sentinel
// marks a free slot, a key equal to the erased-key sentinel (when erase
// support is configured) marks a tombstone, and any other value marks an
// occupied slot.
//
// User keys must never equal the empty-key or erased-key sentinel; this
// precondition is not checked at runtime.
//
// Bulk calls are synchronous. For asynchronous, ordered dispatch, issue
// them on a Stream:
//
//	st := bulkhash.NewStream()
//	defer st.Close()
//
//	var n int
//	var err error
//	st.Issue(func() { n, err = m.Insert(keys, values) })
//	st.Issue(func() { _ = m.Contains(probe, hits) })
//	st.Sync() // barrier: both calls have completed
//
// A DynamicMap grows by appending submaps at bulk-call boundaries. Growth
// is never attempted while a previously issued bulk call on the same map
// may still be executing; callers that issue bulk calls from multiple
// goroutines or streams must provide that synchronization themselves.
package bulkhash
