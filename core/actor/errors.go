package actor

import (
	"errors"
	"fmt"
)

var (
	// ErrDisconnected reports that a message cannot be delivered, or a reply
	// can no longer arrive, because the actor stopped before handling it.
	ErrDisconnected = errors.New("actor: disconnected")

	// ErrMailboxFull reports that a non-blocking submit found a bounded
	// mailbox at capacity.
	ErrMailboxFull = errors.New("actor: mailbox full")

	// ErrSelfCall reports a synchronous Call from a handler to its own
	// actor. The envelope could only run after the current handler returns,
	// so waiting for it would deadlock; use Send or CallAsync instead.
	ErrSelfCall = errors.New("actor: call to self would deadlock")
)

// PanicError wraps a panic recovered from a handler, hook or scheduled task.
// It is delivered to the caller's future and to the error hook like any
// handler error.
type PanicError struct {
	// Value is the value passed to panic.
	Value any
	// Stack is the stack trace captured at recovery.
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("actor: handler panic: %v", e.Value)
}
