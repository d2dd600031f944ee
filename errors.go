package bulkhash

import (
	"errors"
	"fmt"
)

var (
	// ErrEraseDisabled is returned by Erase on a table constructed
	// without an erased-key sentinel (see WithErase).
	ErrEraseDisabled = errors.New("bulkhash: erase not supported, table built without erased-key sentinel")

	// ErrLengthMismatch is returned by bulk operations whose input and
	// output batches must have equal lengths.
	ErrLengthMismatch = errors.New("bulkhash: input and output batch lengths differ")

	// ErrCapacityLimit is returned by DynamicMap.Insert when growth
	// would exceed the configured total-capacity ceiling. Submaps
	// allocated before the failure remain valid and queryable.
	ErrCapacityLimit = errors.New("bulkhash: total capacity limit reached")
)

// CapacityError reports batch elements that could not be inserted because
// their probe sequences were exhausted without finding a free slot. The
// remaining elements of the batch were processed normally; no other slot
// is corrupted. Avoid it by presizing the table for the expected
// occupancy and load factor.
type CapacityError struct {
	// Failed is the number of batch elements that found no free slot.
	Failed int
	// Capacity is the slot capacity of the table that rejected them.
	Capacity int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("bulkhash: table full, %d element(s) not inserted (capacity %d)", e.Failed, e.Capacity)
}

// TruncatedError reports a retrieval whose output buffer was too small.
// The first Written pairs of the buffer are valid; re-issue with a buffer
// of at least Required entries (or size via Count/CountOuter first).
type TruncatedError struct {
	// Required is the total number of output pairs the batch produced.
	Required int
	// Written is the number of pairs actually stored in the buffer.
	Written int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("bulkhash: output truncated, need %d pairs, wrote %d", e.Required, e.Written)
}
