package actor

import "context"

// Call sends op to the actor behind ref and waits for the result: enqueue,
// then await. op runs on the actor goroutine with exclusive state access.
//
// The ctx bounds the caller side only, enqueueing on a full bounded mailbox
// and waiting for the reply. Cancelling it abandons the wait; the actor
// still runs the envelope if it was queued. Timeouts are composed here by
// the caller, not built into the runtime.
//
// An error returned by op comes back to the caller and goes to the actor's
// error hook. ErrDisconnected means the actor stopped before answering.
//
// Calling the actor you are currently handling an envelope for fails with
// ErrSelfCall, provided the handler's own ctx is passed through.
func Call[A any, R any](ctx context.Context, ref Ref[A], op func(ctx context.Context, state A) (R, error)) (R, error) {
	if isSelfCall(ctx, ref) {
		var zero R
		return zero, ErrSelfCall
	}
	return CallAsync(ctx, ref, op).Await(ctx)
}

type selfCtxKey struct{}

func isSelfCall(ctx context.Context, r AnyRef) bool {
	c, _ := ctx.Value(selfCtxKey{}).(*core)
	return c != nil && c == r.ref()
}

// CallAsync is Call without the wait: it returns the future immediately so
// the caller can fan out several calls, race them, or hand the future on.
// Submission errors surface when the future is awaited.
func CallAsync[A any, R any](ctx context.Context, ref Ref[A], op func(ctx context.Context, state A) (R, error)) *Future[R] {
	return CallProduces(ctx, ref, func(ctx context.Context, state A) (Produces[R], error) {
		v, err := op(ctx, state)
		if err != nil {
			return Produces[R]{}, err
		}
		return Value(v), nil
	})
}

// CallProduces is the full call protocol: op decides whether the result is
// an immediate Value, a Deferred future resolved after the loop has moved
// on, or None. Deferred lets an actor answer with the future of a background
// task (Produce) or forward another actor's call future without blocking
// its own loop.
func CallProduces[A any, R any](ctx context.Context, ref Ref[A], op func(ctx context.Context, state A) (Produces[R], error)) *Future[R] {
	f := NewFuture[R]()
	env := Envelope[A]{
		Op: func(hctx context.Context, state A) error {
			p, err := op(hctx, state)
			if err != nil {
				f.Reject(err)
				return err
			}
			f.complete(p)
			return nil
		},
		Cell: f,
	}
	if err := ref.submit(ctx, env, true); err != nil {
		f.Reject(err)
	}
	return f
}

// Send delivers op without a reply channel. Errors returned by op reach the
// actor's error hook only; Send itself fails only when the envelope cannot
// be enqueued.
func Send[A any](ctx context.Context, ref Ref[A], op func(ctx context.Context, state A) error) error {
	return ref.submit(ctx, Envelope[A]{Op: op}, true)
}

// Produce runs task on the actor's scheduler and returns its future result
// as a deferred production. Handlers use it to answer slow work without
// holding the dispatch loop:
//
//	func (c *Crawler) Fetch(ctx context.Context, url string) (actor.Produces[Page], error) {
//		return actor.Produce(c.self, func(ctx context.Context) (Page, error) {
//			return c.client.Get(ctx, url)
//		}), nil
//	}
//
// The task must not touch actor state. If the actor is already stopping, or
// stops before the task resolves, the caller observes ErrDisconnected.
func Produce[R any](r AnyRef, task func(ctx context.Context) (R, error)) Produces[R] {
	f := NewFuture[R]()
	c := r.ref()
	if c == nil {
		f.Disconnect()
		return Deferred(f)
	}
	ok := c.sched.schedule(func(ctx context.Context) {
		defer f.Disconnect()
		if ctx.Err() != nil {
			return
		}
		v, err := task(ctx)
		if err != nil {
			f.Reject(err)
			return
		}
		f.Fulfill(v)
	})
	if !ok {
		f.Disconnect()
	}
	return Deferred(f)
}
