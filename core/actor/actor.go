package actor

import (
	"context"
	"fmt"
	"log/slog"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

type (
	// Starter is implemented by actors that want to run setup before the
	// first envelope. self is a strong handle the runtime releases when the
	// hook returns; Clone it to keep the actor alive from inside, or
	// Downgrade it for the usual weak self-reference. A returned error goes
	// to the error hook and can stop the actor before it ever runs.
	Starter[A any] interface {
		Started(ctx context.Context, self *Addr[A]) error
	}

	// Stopping is implemented by actors that need cleanup while they still
	// own their state. It runs after the mailbox has been drained and before
	// background tasks are awaited.
	Stopping interface {
		Stopping(ctx context.Context)
	}

	// Stopped is implemented by actors that want a final notification after
	// the dispatch loop and all background tasks have finished.
	Stopped interface {
		Stopped()
	}

	// Supervised is implemented by actors that decide what happens after a
	// handler error or panic. Without it, errors are logged and the actor
	// stops.
	Supervised interface {
		OnError(ctx context.Context, err error) Directive
	}
)

// Directive is a supervision decision.
type Directive int

const (
	// Continue keeps the actor running; the failed envelope is already
	// resolved with its error.
	Continue Directive = iota
	// Stop shuts the actor down. Queued envelopes disconnect.
	Stop
)

func (d Directive) String() string {
	switch d {
	case Continue:
		return "continue"
	case Stop:
		return "stop"
	default:
		return "unknown"
	}
}

// Options configures a spawn. The zero value works.
type Options struct {
	// ID identifies the actor in logs and metrics. Defaults to a random ID.
	ID string

	// Logger receives the actor's lifecycle and error logs, extended with
	// the actor_id attribute. Defaults to slog.Default().
	Logger *slog.Logger

	// Spawner runs the dispatch loop. Defaults to DefaultSpawner().
	Spawner Spawner

	// Metrics instruments the actor. Defaults to NopActorMetrics().
	Metrics ActorMetrics

	// MailboxSize bounds the mailbox when > 0. The default (0) is an
	// unbounded mailbox: submits never block and never report
	// ErrMailboxFull. Bound it to get backpressure.
	MailboxSize int

	// MaxTasks caps concurrently running background tasks (deferred
	// productions, SpawnTask). 0 means unlimited.
	MaxTasks int

	// Context is the parent of the actor's run context. Defaults to
	// context.Background(). Cancelling it requests a stop, same as Stop on
	// an address.
	Context context.Context
}

func (o Options) withDefaults() Options {
	if o.ID == "" {
		o.ID = gonanoid.Must(10)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Spawner == nil {
		o.Spawner = DefaultSpawner()
	}
	if o.Metrics == nil {
		o.Metrics = NopActorMetrics()
	}
	if o.Context == nil {
		o.Context = context.Background()
	}
	return o
}

// Spawn starts an actor around state and returns the first strong address.
// A may be the concrete type of state or an interface (capability) it
// implements; both spawn the same machinery.
//
// The returned address owns the actor's lifetime together with every handle
// cloned from it: when the last one is released the actor stops. The caller
// is responsible for eventually releasing it.
func Spawn[A any](state A, opt Options) (*Addr[A], error) {
	if any(state) == nil {
		return nil, fmt.Errorf("actor: spawn with nil state")
	}
	opt = opt.withDefaults()

	log := opt.Logger.With(slog.String("actor_id", opt.ID))
	runCtx, runCancel := context.WithCancel(opt.Context)

	mb := newMailbox[A](opt.MailboxSize)
	c := &core{
		id:      opt.ID,
		log:     log,
		metrics: opt.Metrics,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		box:     mb,
		mbox:    mb,
	}
	// Handlers receive this context; carrying the core in it is what lets
	// Call refuse a would-deadlock call to self.
	c.runCtx = context.WithValue(runCtx, selfCtxKey{}, c)
	c.runCancel = runCancel
	c.strong.Store(1)
	c.setState(StateStarting)
	c.sched = newScheduler(c.runCtx, opt.MaxTasks, opt.ID, log, opt.Metrics)

	// Parent cancellation stops the actor. During a normal shutdown the loop
	// cancels runCtx itself and this collapses into a no-op.
	context.AfterFunc(runCtx, c.requestStop)

	a := &Addr[A]{c: c, send: directSend(c, mb)}

	// The loop owns this clone until the start hook has run, so the hook
	// always sees a live self-address even if the caller releases early.
	self := a.Clone()

	if err := opt.Spawner.Spawn(func() {
		runLoop(c, mb, state, self)
	}); err != nil {
		runCancel()
		mb.close()
		c.setState(StateStopped)
		close(c.done)
		return nil, fmt.Errorf("actor %q: spawn: %w", opt.ID, err)
	}

	opt.Metrics.ActorSpawned()
	return a, nil
}
