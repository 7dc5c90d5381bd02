package actor

import (
	"context"
	"fmt"
	"reflect"
)

// As returns a view of the same actor narrowed to capability C, typically an
// interface the spawned type implements. The view shares the actor's
// identity, mailbox and strong count, and counts as its own strong handle.
// Envelopes submitted through it run against the same state via a C-typed
// projection, so the actor behaves identically whether callers know its
// concrete type or only the capability.
//
// Panics if A demonstrably does not implement C.
func As[C any, A any](a *Addr[A]) *Addr[C] {
	if a == nil || a.c == nil {
		return &Addr[C]{}
	}
	a.mustLive("As")
	assertImplements[C, A]()
	a.c.incStrong()
	return &Addr[C]{c: a.c, send: wrapSend[C](a.send)}
}

// AsWeak is As for weak addresses. The view is weak as well.
func AsWeak[C any, A any](w *WeakAddr[A]) *WeakAddr[C] {
	if w == nil || w.c == nil {
		return &WeakAddr[C]{}
	}
	assertImplements[C, A]()
	return &WeakAddr[C]{c: w.c, send: wrapSend[C](w.send)}
}

// Downcast recovers an address of the concrete spawned type T from a
// capability view. It reports false when the actor behind a was not spawned
// as T. On success the result is a new strong handle.
func Downcast[T any, C any](a *Addr[C]) (*Addr[T], bool) {
	if a == nil || a.c == nil {
		return nil, false
	}
	a.mustLive("Downcast")
	mb, ok := a.c.box.(*mailbox[T])
	if !ok {
		return nil, false
	}
	a.c.incStrong()
	return &Addr[T]{c: a.c, send: directSend(a.c, mb)}, true
}

// wrapSend re-types envelopes from C to A around the underlying send path.
// The completion cell passes through untouched, so drain semantics are
// identical for viewed and direct addresses.
func wrapSend[C any, A any](send sendFunc[A]) sendFunc[C] {
	return func(ctx context.Context, env Envelope[C], block bool) error {
		return send(ctx, Envelope[A]{
			Op: func(ctx context.Context, state A) error {
				c, ok := any(state).(C)
				if !ok {
					panic(fmt.Sprintf("actor: %T does not implement %s", state, reflect.TypeFor[C]()))
				}
				return env.Op(ctx, c)
			},
			Cell: env.Cell,
		}, block)
	}
}

// assertImplements rejects impossible views up front. When A is itself an
// interface the check has to wait until dispatch, where the dynamic value
// is known.
func assertImplements[C any, A any]() {
	if reflect.TypeFor[A]().Kind() == reflect.Interface {
		return
	}
	var zero A
	if _, ok := any(zero).(C); !ok {
		panic(fmt.Sprintf("actor: %s does not implement %s", reflect.TypeFor[A](), reflect.TypeFor[C]()))
	}
}
