package actor

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

type (
	// AnyRef is the type-erased view shared by Addr and WeakAddr: identity,
	// lifecycle observation and background-task scheduling, independent of
	// the capability type parameter.
	AnyRef interface {
		// ID returns the actor's identifier ("" for a detached address).
		ID() string
		// State reports the actor's lifecycle state. Detached addresses
		// report StateStopped.
		State() State
		// Done is closed once the actor has fully stopped.
		Done() <-chan struct{}
		// SpawnTask runs task on the actor's scheduler, bound to its
		// lifetime: the context cancels when the actor begins stopping and
		// the loop waits for the task before the stopped hook. Tasks run
		// concurrently with envelope handling and must not touch actor
		// state. Returns ErrDisconnected once the actor is stopping.
		SpawnTask(task func(ctx context.Context)) error

		ref() *core
	}

	// Ref is any address that can deliver envelopes to an actor exposing
	// capability A: a strong Addr or a weak WeakAddr. Package-level helpers
	// (Call, Send, ...) accept either.
	Ref[A any] interface {
		AnyRef
		// Submit enqueues a hand-built envelope, blocking while a bounded
		// mailbox is full. Fails with ErrDisconnected once the actor is
		// stopping, or ctx.Err on cancellation.
		Submit(ctx context.Context, env Envelope[A]) error
		// TrySubmit enqueues without blocking; a full bounded mailbox fails
		// with ErrMailboxFull.
		TrySubmit(env Envelope[A]) error

		submit(ctx context.Context, env Envelope[A], block bool) error
	}
)

// core is the per-actor block shared by every address view of one actor,
// whatever its capability parameter: identity, the strong count, lifecycle
// state and stop/termination signalling. The mailbox is reachable both
// through the untyped closer (stop path) and as its concrete type (Downcast).
type core struct {
	id      string
	log     *slog.Logger
	metrics ActorMetrics

	strong atomic.Int64
	state  atomic.Int32

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	box   any
	mbox  interface{ close() }
	sched *scheduler

	runCtx    context.Context
	runCancel context.CancelFunc
}

func (c *core) loadState() State {
	return State(c.state.Load())
}

func (c *core) setState(s State) {
	c.state.Store(int32(s))
}

// requestStop closes the mailbox and signals the loop. Safe to call from
// any goroutine, any number of times; only the first call acts.
func (c *core) requestStop() {
	c.stopOnce.Do(func() {
		close(c.stop)
		c.mbox.close()
	})
}

func (c *core) stopRequested() bool {
	select {
	case <-c.stop:
		return true
	default:
		return false
	}
}

func (c *core) incStrong() {
	c.strong.Add(1)
}

// decStrong releases one strong reference. The decrement and the zero check
// are a single atomic step, so exactly one releaser observes zero and
// triggers the stop. Going below zero means releases outnumbered
// acquisitions somewhere; that bug must not pass silently.
func (c *core) decStrong() {
	n := c.strong.Add(-1)
	if n == 0 {
		c.requestStop()
	}
	if n < 0 {
		panic("actor: strong reference count underflow")
	}
}

// tryIncStrong acquires a strong reference only while the count is above
// zero. Once the count has hit zero it can never rise again.
func (c *core) tryIncStrong() bool {
	for {
		n := c.strong.Load()
		if n <= 0 {
			return false
		}
		if c.strong.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// sendFunc routes an envelope into the actor's typed mailbox. Capability
// views (As, AsWeak) wrap the underlying sendFunc to re-type the envelope.
type sendFunc[A any] func(ctx context.Context, env Envelope[A], block bool) error

// directSend is the canonical sendFunc for the spawned type.
func directSend[A any](c *core, mb *mailbox[A]) sendFunc[A] {
	return func(ctx context.Context, env Envelope[A], block bool) error {
		if err := mb.push(ctx, env, block); err != nil {
			return err
		}
		c.metrics.MailboxDepth(c.id, mb.len())
		return nil
	}
}

// Addr is a strong reference to an actor exposing capability A. Each *Addr
// is exactly one strong reference: Clone allocates another, Release gives
// this one up. The release that takes the strong count to zero makes the
// actor stop, exactly once, after it finishes the envelope in hand.
//
// The zero value is a detached address: permanently disconnected, safe to
// use, keeping nothing alive.
//
// A handle may be shared across goroutines for sending, but Release must
// not race with other uses of the same handle; clone instead and give each
// owner its own.
type Addr[A any] struct {
	c        *core
	send     sendFunc[A]
	released atomic.Bool
}

// ID implements AnyRef.
func (a *Addr[A]) ID() string {
	if a == nil || a.c == nil {
		return ""
	}
	return a.c.id
}

// State implements AnyRef.
func (a *Addr[A]) State() State {
	if a == nil || a.c == nil {
		return StateStopped
	}
	return a.c.loadState()
}

// Done implements AnyRef.
func (a *Addr[A]) Done() <-chan struct{} {
	if a == nil || a.c == nil {
		return closedChan
	}
	return a.c.done
}

// Clone allocates a new strong handle to the same actor. Panics if this
// handle was already released. Cloning a detached address yields another
// detached address.
func (a *Addr[A]) Clone() *Addr[A] {
	if a == nil || a.c == nil {
		return &Addr[A]{}
	}
	a.mustLive("Clone")
	a.c.incStrong()
	return &Addr[A]{c: a.c, send: a.send}
}

// Release gives up this handle's strong reference. Idempotent per handle:
// releasing twice does not decrement twice. After Release the handle only
// reports ErrDisconnected.
func (a *Addr[A]) Release() {
	if a == nil || a.c == nil {
		return
	}
	if a.released.CompareAndSwap(false, true) {
		a.c.decStrong()
	}
}

// Downgrade returns a weak address for the same actor. The weak address
// never keeps the actor alive and never delays its stop.
func (a *Addr[A]) Downgrade() *WeakAddr[A] {
	if a == nil || a.c == nil {
		return &WeakAddr[A]{}
	}
	a.mustLive("Downgrade")
	return &WeakAddr[A]{c: a.c, send: a.send}
}

// Stop asks the actor to stop without waiting for the strong count to reach
// zero: the mailbox closes, queued envelopes disconnect, and remaining
// strong handles merely observe the shutdown. No-op on detached or released
// handles.
func (a *Addr[A]) Stop() {
	if a == nil || a.c == nil || a.released.Load() {
		return
	}
	a.c.requestStop()
}

// Submit implements Ref.
func (a *Addr[A]) Submit(ctx context.Context, env Envelope[A]) error {
	return a.submit(ctx, env, true)
}

// TrySubmit implements Ref.
func (a *Addr[A]) TrySubmit(env Envelope[A]) error {
	return a.submit(context.Background(), env, false)
}

func (a *Addr[A]) submit(ctx context.Context, env Envelope[A], block bool) error {
	if a == nil || a.c == nil || a.released.Load() {
		return ErrDisconnected
	}
	return a.send(ctx, env, block)
}

// SpawnTask implements AnyRef.
func (a *Addr[A]) SpawnTask(task func(ctx context.Context)) error {
	if a == nil || a.c == nil || a.released.Load() {
		return ErrDisconnected
	}
	if !a.c.sched.schedule(task) {
		return ErrDisconnected
	}
	return nil
}

func (a *Addr[A]) ref() *core {
	if a == nil {
		return nil
	}
	return a.c
}

func (a *Addr[A]) mustLive(op string) {
	if a.released.Load() {
		panic("actor: " + op + " on released address")
	}
}

// WeakAddr is a non-owning reference to an actor exposing capability A. It
// delivers envelopes only while strong references keep the actor alive; each
// delivery briefly upgrades, so the actor cannot stop mid-push. The zero
// value is detached.
type WeakAddr[A any] struct {
	c    *core
	send sendFunc[A]
}

// ID implements AnyRef.
func (w *WeakAddr[A]) ID() string {
	if w == nil || w.c == nil {
		return ""
	}
	return w.c.id
}

// State implements AnyRef.
func (w *WeakAddr[A]) State() State {
	if w == nil || w.c == nil {
		return StateStopped
	}
	return w.c.loadState()
}

// Done implements AnyRef.
func (w *WeakAddr[A]) Done() <-chan struct{} {
	if w == nil || w.c == nil {
		return closedChan
	}
	return w.c.done
}

// Upgrade attempts to reacquire a strong handle. It succeeds only while the
// strong count is above zero and the actor has not terminated; after the
// last strong reference is gone it fails, every time.
func (w *WeakAddr[A]) Upgrade() (*Addr[A], bool) {
	if w == nil || w.c == nil {
		return nil, false
	}
	if w.c.loadState() == StateStopped {
		return nil, false
	}
	if !w.c.tryIncStrong() {
		return nil, false
	}
	return &Addr[A]{c: w.c, send: w.send}, true
}

// Submit implements Ref.
func (w *WeakAddr[A]) Submit(ctx context.Context, env Envelope[A]) error {
	return w.submit(ctx, env, true)
}

// TrySubmit implements Ref.
func (w *WeakAddr[A]) TrySubmit(env Envelope[A]) error {
	return w.submit(context.Background(), env, false)
}

func (w *WeakAddr[A]) submit(ctx context.Context, env Envelope[A], block bool) error {
	u, ok := w.Upgrade()
	if !ok {
		return ErrDisconnected
	}
	defer u.Release()
	return u.submit(ctx, env, block)
}

// SpawnTask implements AnyRef.
func (w *WeakAddr[A]) SpawnTask(task func(ctx context.Context)) error {
	u, ok := w.Upgrade()
	if !ok {
		return ErrDisconnected
	}
	defer u.Release()
	return u.SpawnTask(task)
}

func (w *WeakAddr[A]) ref() *core {
	if w == nil {
		return nil
	}
	return w.c
}

// Join blocks until the actor behind r has fully stopped, or ctx is
// cancelled.
func Join(ctx context.Context, r AnyRef) error {
	select {
	case <-r.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

var (
	_ Ref[any] = (*Addr[any])(nil)
	_ Ref[any] = (*WeakAddr[any])(nil)
)
