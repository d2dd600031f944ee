package bulkhash

// ProbingScheme produces the candidate-slot sequence for a key. Given the
// key's two hash outputs and a power-of-two capacity mask, Slot returns
// the step-th candidate index. Implementations must be pure functions of
// their arguments so any goroutine can recompute the identical sequence,
// and must visit every slot of the table within capacity steps when the
// scan is not terminated early.
type ProbingScheme interface {
	Slot(h1, h2, step, mask uint64) uint64
}

// LinearProbing advances by a fixed stride from the primary hash position.
// The stride is forced odd, so with a power-of-two capacity the sequence
// visits every slot exactly once per capacity steps. The zero value
// (stride 1) is classic linear probing; larger strides spread consecutive
// probes across cache lines.
type LinearProbing struct {
	// Stride is the slot distance between consecutive probes.
	// Zero means 1. Even values are rounded up to the next odd value.
	Stride uint64
}

func (p LinearProbing) Slot(h1, _, step, mask uint64) uint64 {
	return (h1 + step*(p.Stride|1)) & mask
}

// DoubleHashing derives the probe step from the secondary hash, so keys
// that collide on their primary position still follow different
// sequences, reducing clustering. The step is forced odd to stay co-prime
// with the power-of-two capacity, guaranteeing full table coverage.
type DoubleHashing struct{}

func (DoubleHashing) Slot(h1, h2, step, mask uint64) uint64 {
	return (h1 + step*(h2|1)) & mask
}
