package actor

import (
	"log/slog"
	"runtime/debug"
)

// runLoop is the dispatch loop: the single goroutine with access to the
// actor state. It runs the start hook, processes envelopes one at a time,
// and on stop drains the mailbox, runs the stop hooks and waits for
// background tasks. Exclusive access spans an entire envelope: the next one
// does not start until the current handler has returned.
func runLoop[A any](c *core, mb *mailbox[A], state A, self *Addr[A]) {
	defer close(c.done)
	defer c.metrics.ActorStopped()

	c.log.Debug("actor starting")

	startErr := runStarted(c, state, self)
	self.Release()
	if startErr != nil {
		if supervise(c, state, startErr) == Stop {
			c.requestStop()
		}
	}

	if !c.stopRequested() {
		c.setState(StateRunning)
		c.log.Debug("actor running")

	loop:
		for {
			select {
			case <-c.stop:
				break loop
			default:
			}

			env, ok := mb.tryPop()
			if !ok {
				select {
				case <-c.stop:
					break loop
				case <-mb.ready:
					continue
				}
			}
			c.metrics.MailboxDepth(c.id, mb.len())

			if err := execute(c, state, env); err != nil {
				if supervise(c, state, err) == Stop {
					c.requestStop()
				}
			}
		}
	}

	// The mailbox is closed by now; whatever is still queued never ran and
	// never will, so pending replies disconnect instead of hanging.
	for {
		env, ok := mb.tryPop()
		if !ok {
			break
		}
		if env.Cell != nil {
			env.Cell.Disconnect()
		}
	}
	c.metrics.MailboxDepth(c.id, 0)

	c.setState(StateStopping)
	c.log.Debug("actor stopping")
	if h, ok := any(state).(Stopping); ok {
		runSafe(c, "stopping hook", func() { h.Stopping(c.runCtx) })
	}

	c.runCancel()
	c.sched.wait()

	if h, ok := any(state).(Stopped); ok {
		runSafe(c, "stopped hook", func() { h.Stopped() })
	}
	c.setState(StateStopped)
	c.log.Debug("actor stopped")
}

// execute runs one envelope with panic containment. A panic is folded into a
// *PanicError: the caller's cell gets it, and it returns like a handler
// error so supervision sees it too.
func execute[A any](c *core, state A, env Envelope[A]) (err error) {
	defer c.metrics.EnvelopeDuration().ObserveDuration()
	defer func() {
		if r := recover(); r != nil {
			c.metrics.EnvelopePanic()
			perr := &PanicError{Value: r, Stack: debug.Stack()}
			c.log.Error("handler panicked", slog.Any("recovered", r))
			if env.Cell != nil {
				env.Cell.fail(perr)
			}
			err = perr
		}
		c.metrics.EnvelopeProcessed(err == nil)
	}()

	return env.Op(c.runCtx, state)
}

func runStarted[A any](c *core, state A, self *Addr[A]) (err error) {
	h, ok := any(state).(Starter[A])
	if !ok {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("start hook panicked", slog.Any("recovered", r))
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return h.Started(c.runCtx, self)
}

// supervise routes a handler error to the actor's error hook, defaulting to
// log-and-stop. A panicking hook counts as a Stop decision.
func supervise[A any](c *core, state A, err error) Directive {
	h, ok := any(state).(Supervised)
	if !ok {
		c.log.Error("actor error", slog.Any("error", err))
		return Stop
	}
	dir := Stop
	runSafe(c, "error hook", func() { dir = h.OnError(c.runCtx, err) })
	return dir
}

func runSafe(c *core, what string, f func()) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error(what+" panicked", slog.Any("recovered", r))
		}
	}()
	f()
}
