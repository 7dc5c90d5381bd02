package actor

import (
	"context"
	"sync"
)

// Cell is the write side of a completion cell as seen by the runtime: enough
// to discard a pending reply without knowing its value type. Envelopes whose
// cell was never resolved (mailbox drained, task abandoned) are disconnected
// so callers observe ErrDisconnected instead of hanging.
//
// Only *Future implements Cell.
type Cell interface {
	// Disconnect resolves the cell with ErrDisconnected if it is still
	// unresolved. It is safe to call any number of times.
	Disconnect()

	fail(err error) bool
}

type resolution uint8

const (
	unresolved resolution = iota
	resolvedValue
	resolvedError
	resolvedChain
)

// Future is the read side of a single-use completion cell. It is resolved at
// most once with a value, an error, or another future to follow (deferred
// production). Resolving an already-resolved future through Fulfill or
// Reject is a bug and panics.
type Future[R any] struct {
	mu   sync.Mutex
	res  resolution
	val  R
	err  error
	next *Future[R]
	done chan struct{}
}

// NewFuture creates an unresolved future. The creator typically attaches it
// to an envelope as its completion cell and hands the future to the caller.
func NewFuture[R any]() *Future[R] {
	return &Future[R]{done: make(chan struct{})}
}

// Fulfill resolves the future with a value. Panics if already resolved.
func (f *Future[R]) Fulfill(v R) {
	if !f.settle(resolvedValue, v, nil, nil) {
		panic("actor: future resolved twice")
	}
}

// Reject resolves the future with an error. Panics if already resolved.
func (f *Future[R]) Reject(err error) {
	var zero R
	if !f.settle(resolvedError, zero, err, nil) {
		panic("actor: future resolved twice")
	}
}

// Disconnect resolves the future with ErrDisconnected if it is still
// unresolved, and is a no-op otherwise.
func (f *Future[R]) Disconnect() {
	var zero R
	f.settle(resolvedError, zero, ErrDisconnected, nil)
}

// fail resolves with err unless already resolved. Used by the dispatch loop
// as the backstop after a handler panic.
func (f *Future[R]) fail(err error) bool {
	var zero R
	return f.settle(resolvedError, zero, err, nil)
}

// chain resolves the future by pointing it at another future. Await follows
// the chain, so a handler can answer with work that completes later.
func (f *Future[R]) chain(next *Future[R]) {
	var zero R
	if !f.settle(resolvedChain, zero, nil, next) {
		panic("actor: future resolved twice")
	}
}

// complete resolves the future from a handler outcome.
func (f *Future[R]) complete(p Produces[R]) {
	switch p.kind {
	case producesValue:
		f.Fulfill(p.val)
	case producesDeferred:
		f.chain(p.fut)
	default:
		f.Disconnect()
	}
}

func (f *Future[R]) settle(res resolution, v R, err error, next *Future[R]) bool {
	f.mu.Lock()
	if f.res != unresolved {
		f.mu.Unlock()
		return false
	}
	f.res, f.val, f.err, f.next = res, v, err, next
	f.mu.Unlock()
	close(f.done)
	return true
}

// Done is closed once the future is resolved. A resolution may point at a
// further future; use Await to follow the chain to a final value.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// TryGet reports the final value or error without blocking. ok is false
// while the future, or the chain link it currently points at, is still
// pending.
func (f *Future[R]) TryGet() (R, error, bool) {
	cur := f
	for {
		select {
		case <-cur.done:
		default:
			var zero R
			return zero, nil, false
		}
		cur.mu.Lock()
		res, val, err, next := cur.res, cur.val, cur.err, cur.next
		cur.mu.Unlock()
		if res == resolvedChain {
			cur = next
			continue
		}
		return val, err, true
	}
}

// Await blocks until the future (and any futures it chains to) resolves, or
// ctx is cancelled. Cancellation abandons only the wait: the actor still
// processes the envelope and the cell resolves normally.
func (f *Future[R]) Await(ctx context.Context) (R, error) {
	cur := f
	for {
		select {
		case <-ctx.Done():
			var zero R
			return zero, ctx.Err()
		case <-cur.done:
		}
		cur.mu.Lock()
		res, val, err, next := cur.res, cur.val, cur.err, cur.next
		cur.mu.Unlock()
		if res == resolvedChain {
			cur = next
			continue
		}
		return val, err
	}
}

var _ Cell = (*Future[int])(nil)
