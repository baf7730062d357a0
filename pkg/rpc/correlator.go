package rpc

import (
	"sync"
)

type callResult struct {
	result any
	err    error
}

// pendingCalls matches outbound requests to their eventual responses. IDs
// are allocated from a monotonically increasing counter and never reused;
// each pending call owns a buffered channel that is settled exactly once.
type pendingCalls struct {
	mu     sync.Mutex
	nextID uint64
	calls  map[uint64]chan callResult
	closed bool
}

func newPendingCalls() *pendingCalls {
	return &pendingCalls{
		calls: make(map[uint64]chan callResult),
	}
}

// create allocates the next request ID and registers its awaiter channel.
func (p *pendingCalls) create() (uint64, chan callResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, nil, ErrClosed
	}

	id := p.nextID
	p.nextID++

	ch := make(chan callResult, 1)
	p.calls[id] = ch
	return id, ch, nil
}

// drop removes a pending call that never made it onto the wire.
func (p *pendingCalls) drop(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.calls, id)
}

// settle resolves the pending call for id. It reports false when no call
// is outstanding under that id, which the caller treats as a non-fatal
// late or duplicate response.
func (p *pendingCalls) settle(id uint64, res callResult) bool {
	p.mu.Lock()
	ch, ok := p.calls[id]
	delete(p.calls, id)
	p.mu.Unlock()

	if !ok {
		return false
	}
	ch <- res
	return true
}

// rejectAll settles every outstanding call with err and refuses new ones.
// Calling it on an already-closed or empty table is a no-op.
func (p *pendingCalls) rejectAll(err error) {
	p.mu.Lock()
	calls := p.calls
	p.calls = make(map[uint64]chan callResult)
	p.closed = true
	p.mu.Unlock()

	for _, ch := range calls {
		ch <- callResult{err: err}
	}
}
