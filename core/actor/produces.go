package actor

type producesKind uint8

const (
	producesNone producesKind = iota
	producesValue
	producesDeferred
)

// Produces tags a handler outcome for CallProduces: either a value available
// now, a future that resolves later without occupying the dispatch loop, or
// nothing. The zero value is None.
type Produces[R any] struct {
	kind producesKind
	val  R
	fut  *Future[R]
}

// Value wraps an immediate result. The caller's future is fulfilled before
// the dispatch loop moves to the next envelope.
func Value[R any](v R) Produces[R] {
	return Produces[R]{kind: producesValue, val: v}
}

// Deferred hands the caller a future that someone else resolves later:
// a background task started with Produce, or another actor's call future
// (forwarding a call without waiting for it).
func Deferred[R any](f *Future[R]) Produces[R] {
	return Produces[R]{kind: producesDeferred, fut: f}
}

// None declines to answer. The caller observes ErrDisconnected.
func None[R any]() Produces[R] {
	return Produces[R]{}
}
