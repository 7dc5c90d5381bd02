// Package actor provides a reference-counted actor runtime: typed addresses
// deliver closures to a per-actor dispatch loop, and the actor stops by
// itself once the last strong address is released.
//
// Each actor:
//   - Owns its state; only the dispatch loop touches it
//   - Processes envelopes strictly one at a time, FIFO per producer
//   - Stops exactly once, when its strong count reaches zero, when a handle
//     calls [Addr.Stop], or when supervision decides [Stop]
//
// # Spawning and addresses
//
// [Spawn] starts an actor around any value and returns a strong address:
//
//	counter := &Counter{}
//	addr, err := actor.Spawn[*Counter](counter, actor.Options{})
//	defer addr.Release()
//
// An address is one strong reference. [Addr.Clone] creates another,
// [Addr.Release] gives one up, and the release that reaches zero shuts the
// actor down. [Addr.Downgrade] yields a [WeakAddr], which never keeps the
// actor alive: [WeakAddr.Upgrade] fails once the last strong handle is gone.
// Actors that keep a self-reference should hold a weak one, or they never
// stop on their own.
//
// # Calls and sends
//
// Messages are closures over the actor state, so capabilities are ordinary
// methods:
//
//	n, err := actor.Call(ctx, addr, func(ctx context.Context, c *Counter) (int, error) {
//	    return c.Add(1), nil
//	})
//	err = actor.Send(ctx, addr, func(ctx context.Context, c *Counter) error {
//	    c.Reset()
//	    return nil
//	})
//
// [Call] enqueues and waits on a [Future]; [CallAsync] returns the future
// for fan-out and racing. A handler error resolves the caller's future and
// reaches the actor's error hook. [ErrDisconnected] means the actor stopped
// before answering. Timeouts are not built in: bound ctx to compose one.
//
// # Capabilities and dynamic dispatch
//
// A may be an interface, spawned directly or viewed after the fact:
//
//	g := actor.As[Greeter](addr)    // *actor.Addr[Greeter]
//	defer g.Release()
//
// Callers holding *Addr[Greeter] cannot tell a concrete actor from a proxy
// that forwards over a transport; core/remote builds on exactly that.
//
// # Deferred production and background tasks
//
// A handler that starts slow work should not hold the loop. [CallProduces]
// lets it answer with a [Deferred] future instead, typically from [Produce]:
//
//	return actor.Produce(w.self, func(ctx context.Context) (Report, error) {
//	    return w.build(ctx)
//	}), nil
//
// Deferred work and [AnyRef.SpawnTask] tasks run on the actor's scheduler
// concurrently with later envelopes. They must not touch actor state; they
// interact with the actor through its address. Stopping cancels their
// context and waits for them.
//
// # Lifecycle
//
// Starting -> Running -> Stopping -> Stopped, monotonic. Optional hooks are
// discovered by type assertion: [Starter] before the first envelope,
// [Stopping] and [Stopped] on the way down, [Supervised] after handler
// errors and panics (the default logs and stops). On stop, queued envelopes
// are drained by disconnecting their completion cells; their bodies never
// run. [Addr.Done] and [Join] observe termination.
//
// # Mailboxes
//
// The default mailbox is unbounded: submits never block and never fail with
// [ErrMailboxFull]. Set [Options.MailboxSize] for a bounded mailbox with
// backpressure: [Ref.Submit] then blocks while full, [Ref.TrySubmit] fails
// fast.
package actor
