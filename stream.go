package bulkhash

// Stream is an ordered queue of asynchronously issued operations: the
// execution-stream handle for bulk calls. Operations issued on the same
// stream run one at a time, in issue order, on a dedicated goroutine.
// Issuing is asynchronous; call Sync to wait for everything issued so
// far. Once issued, an operation always runs to completion; there is no
// cancellation.
//
// A Stream is intended for a single issuing goroutine. Multiple
// goroutines may Issue concurrently, but then the issue order (and what a
// Sync covers) is whatever order their sends happen to take.
type Stream struct {
	ops  chan func()
	done chan struct{}
}

// NewStream starts a stream with its worker goroutine. Callers must
// Close it when finished.
func NewStream() *Stream {
	s := &Stream{
		ops:  make(chan func(), 64),
		done: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Stream) run() {
	defer close(s.done)
	for op := range s.ops {
		op()
	}
}

// Issue enqueues op. It returns as soon as the operation is queued,
// possibly before it runs. Issue panics if the stream is closed.
func (s *Stream) Issue(op func()) {
	s.ops <- op
}

// Sync blocks until every operation issued before this call has
// completed.
func (s *Stream) Sync() {
	fence := make(chan struct{})
	s.Issue(func() { close(fence) })
	<-fence
}

// Close drains the stream, waits for every issued operation to complete,
// and stops the worker goroutine. Issue must not be called afterwards.
func (s *Stream) Close() {
	close(s.ops)
	<-s.done
}
