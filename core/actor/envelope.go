package actor

import "context"

// Envelope is the unit of work queued on a mailbox: an operation to run with
// exclusive access to the actor state, plus an optional completion cell.
//
// Call, Send and friends build envelopes for you; Submit and TrySubmit accept
// hand-built ones, which is the hook-in point for bridges that construct
// operations from decoded wire messages.
type Envelope[A any] struct {
	// Op runs on the actor goroutine. ctx is the actor's run context: it is
	// cancelled when the actor begins stopping, not when the submitter's
	// context is. A returned error goes to the error hook.
	Op func(ctx context.Context, state A) error

	// Cell, if non-nil, is resolved with ErrDisconnected when the envelope is
	// discarded without running (drained on stop). Ops that carry a reply
	// resolve the same cell themselves.
	Cell Cell
}
