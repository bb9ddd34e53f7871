package ordr

import "sync"

// CancelHandle is a shareable, level-triggered, one-shot cancellation
// signal. Once Cancel is called it stays cancelled; Cancelled and Done
// reflect that forever after. A zero-value CancelHandle is not usable;
// construct one with NewCancelHandle.
//
// CancelHandle is intentionally simpler than context.Context: it carries
// no values and no deadline, only the single latch the executor races
// against task completion (spec's "cancel is level-triggered and
// one-shot"). Composing it with a timeout is a host concern; see package
// timeout.
type CancelHandle struct {
	done chan struct{}
	once sync.Once
}

// NewCancelHandle returns a new, armed (not yet cancelled) handle.
func NewCancelHandle() *CancelHandle {
	return &CancelHandle{done: make(chan struct{})}
}

// Cancel latches the handle. Safe to call more than once, and safe to call
// concurrently with Cancelled/Done/Execute.
func (h *CancelHandle) Cancel() {
	h.once.Do(func() { close(h.done) })
}

// Done returns a channel that closes exactly once, when Cancel is called.
func (h *CancelHandle) Done() <-chan struct{} { return h.done }

// Cancelled reports whether Cancel has already been called.
func (h *CancelHandle) Cancelled() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}
