package timer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/codewandler/actr-go/core/actor"
)

// Tick is the capability a Timer drives. Arm a timer with a [actor.As] or
// [actor.AsWeak] view of the actor's address.
//
// Tick may be invoked spuriously: after Clear, after a deadline was
// superseded by a later Set, or on delivery delays. Implementations call
// [Timer.Tick] to find out whether a deadline actually elapsed.
type Tick interface {
	Tick(ctx context.Context) error
}

// State describes what a timer is armed for.
type State int

const (
	// Inactive timers will not tick. This is the zero state.
	Inactive State = iota
	// Timeout timers tick once when their deadline passes.
	Timeout
	// Interval timers tick when their deadline passes and then rearm at a
	// fixed interval.
	Interval
)

func (s State) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Timeout:
		return "timeout"
	case Interval:
		return "interval"
	default:
		return "unknown"
	}
}

// Timer schedules Tick deliveries to one actor. It is meant to live inside
// actor state, armed and checked from handlers; it must not be shared
// across goroutines.
//
// Weak setters do not keep the actor alive: if the actor stops, pending
// ticks go nowhere. Strong setters take ownership of the handle they are
// given and hold it so the actor survives at least until the deadline
// (timeout) or until the timer is cleared or rearmed (interval).
type Timer struct {
	state    State
	deadline time.Time
	interval time.Duration

	// Exactly one of these is set while an interval is armed; rearming on
	// an acknowledged tick goes through it.
	weak   *actor.WeakAddr[Tick]
	strong *actor.Addr[Tick]
}

// State reports what the timer is armed for.
func (t *Timer) State() State { return t.state }

// Active reports whether the timer is expected to tick in the future.
func (t *Timer) Active() bool { return t.state != Inactive }

// Deadline returns when the timer will next tick.
func (t *Timer) Deadline() (time.Time, bool) {
	if t.state == Inactive {
		return time.Time{}, false
	}
	return t.deadline, true
}

// Interval returns the rearm interval of an interval timer.
func (t *Timer) Interval() (time.Duration, bool) {
	if t.state != Interval {
		return 0, false
	}
	return t.interval, true
}

// Clear resets the timer to inactive. Ticks already in flight still arrive
// and are reported as not elapsed by Tick.
func (t *Timer) Clear() {
	t.disarm()
}

// Tick checks whether a deadline elapsed. Call it from the actor's Tick
// handler: false means the wakeup was spurious. When an interval deadline
// elapses the timer rearms itself for deadline+interval before returning.
func (t *Timer) Tick() bool {
	if t.state == Inactive || time.Now().Before(t.deadline) {
		return false
	}
	switch t.state {
	case Timeout:
		t.state = Inactive
	case Interval:
		t.deadline = t.deadline.Add(t.interval)
		if t.weak != nil {
			watchWeak(t.weak, t.deadline)
		} else if t.strong != nil {
			a := t.strong.Clone()
			watchStrong(a, t.deadline)
		}
	}
	return true
}

// SetTimeoutWeak arms the timer to tick once after d.
func (t *Timer) SetTimeoutWeak(addr *actor.WeakAddr[Tick], d time.Duration) {
	t.SetTimeoutAtWeak(addr, time.Now().Add(d))
}

// SetTimeoutAtWeak arms the timer to tick once at deadline.
func (t *Timer) SetTimeoutAtWeak(addr *actor.WeakAddr[Tick], deadline time.Time) {
	t.disarm()
	t.state, t.deadline = Timeout, deadline
	watchWeak(addr, deadline)
}

// SetTimeoutStrong arms the timer to tick once after d, keeping the actor
// alive until then. Takes ownership of addr.
func (t *Timer) SetTimeoutStrong(addr *actor.Addr[Tick], d time.Duration) {
	t.SetTimeoutAtStrong(addr, time.Now().Add(d))
}

// SetTimeoutAtStrong arms the timer to tick once at deadline, keeping the
// actor alive until then. Takes ownership of addr.
func (t *Timer) SetTimeoutAtStrong(addr *actor.Addr[Tick], deadline time.Time) {
	t.disarm()
	t.state, t.deadline = Timeout, deadline
	watchStrong(addr, deadline)
}

// SetIntervalWeak arms the timer to tick at interval, first tick
// immediately.
func (t *Timer) SetIntervalWeak(addr *actor.WeakAddr[Tick], interval time.Duration) {
	t.SetIntervalAtWeak(addr, time.Now(), interval)
}

// SetIntervalAtWeak arms the timer to tick at interval, first tick at
// start.
func (t *Timer) SetIntervalAtWeak(addr *actor.WeakAddr[Tick], start time.Time, interval time.Duration) {
	t.disarm()
	t.state, t.deadline, t.interval = Interval, start, interval
	t.weak = addr
	watchWeak(addr, start)
}

// SetIntervalStrong arms the timer to tick at interval, first tick
// immediately. The actor is kept alive until the timer is cleared or
// rearmed. Takes ownership of addr.
func (t *Timer) SetIntervalStrong(addr *actor.Addr[Tick], interval time.Duration) {
	t.SetIntervalAtStrong(addr, time.Now(), interval)
}

// SetIntervalAtStrong arms the timer to tick at interval, first tick at
// start. The actor is kept alive until the timer is cleared or rearmed.
// Takes ownership of addr.
func (t *Timer) SetIntervalAtStrong(addr *actor.Addr[Tick], start time.Time, interval time.Duration) {
	t.disarm()
	t.state, t.deadline, t.interval = Interval, start, interval
	t.strong = addr
	a := addr.Clone()
	watchStrong(a, start)
}

// RunWithTimeoutWeak arms a timeout at deadline d from now and concurrently
// runs f on the actor's scheduler. f's context expires at the deadline; the
// tick is delivered at the deadline whether or not f finished early.
func (t *Timer) RunWithTimeoutWeak(addr *actor.WeakAddr[Tick], d time.Duration, f func(ctx context.Context, addr *actor.WeakAddr[Tick])) {
	deadline := time.Now().Add(d)
	t.disarm()
	t.state, t.deadline = Timeout, deadline
	watchWeak(addr, deadline)
	_ = addr.SpawnTask(func(ctx context.Context) {
		fctx, cancel := context.WithDeadline(ctx, deadline)
		defer cancel()
		f(fctx, addr)
	})
}

// RunWithTimeoutStrong is RunWithTimeoutWeak with a strong handle: the
// actor stays alive until the deadline. Takes ownership of addr.
func (t *Timer) RunWithTimeoutStrong(addr *actor.Addr[Tick], d time.Duration, f func(ctx context.Context, addr *actor.Addr[Tick])) {
	deadline := time.Now().Add(d)
	t.disarm()
	t.state, t.deadline = Timeout, deadline
	task := addr.Clone()
	watchStrong(addr, deadline)
	err := task.SpawnTask(func(ctx context.Context) {
		defer task.Release()
		fctx, cancel := context.WithDeadline(ctx, deadline)
		defer cancel()
		f(fctx, task)
	})
	if err != nil {
		task.Release()
	}
}

/* ---- internals ---- */

func (t *Timer) disarm() {
	if t.strong != nil {
		t.strong.Release()
		t.strong = nil
	}
	t.weak = nil
	t.state = Inactive
	t.interval = 0
}

// watchWeak delivers one tick at deadline unless the actor terminates
// first.
func watchWeak(addr *actor.WeakAddr[Tick], deadline time.Time) {
	go func() {
		tmr := time.NewTimer(time.Until(deadline))
		defer tmr.Stop()
		select {
		case <-addr.Done():
		case <-tmr.C:
			deliverTick(addr)
		}
	}()
}

// watchStrong delivers one tick at deadline, holding addr until then so the
// actor cannot stop for lack of references. Releases addr afterwards.
func watchStrong(addr *actor.Addr[Tick], deadline time.Time) {
	go func() {
		defer addr.Release()
		tmr := time.NewTimer(time.Until(deadline))
		defer tmr.Stop()
		select {
		case <-addr.Done():
		case <-tmr.C:
			deliverTick(addr)
		}
	}()
}

func deliverTick(r actor.Ref[Tick]) {
	err := r.TrySubmit(actor.Envelope[Tick]{Op: func(ctx context.Context, state Tick) error {
		return state.Tick(ctx)
	}})
	if err != nil && !errors.Is(err, actor.ErrDisconnected) {
		slog.Default().Warn("failed to deliver timer tick", slog.Any("error", err))
	}
}
