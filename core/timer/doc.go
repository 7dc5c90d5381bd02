// Package timer schedules tick deliveries to actors.
//
// A [Timer] is owned by the actor it drives: embed it in the actor state
// and arm it from handlers with a [Tick]-typed view of the actor's own
// address ([actor.As] / [actor.AsWeak]). When a deadline passes the timer
// submits an envelope that invokes the actor's Tick method; the handler
// asks [Timer.Tick] whether the wakeup was real or spurious.
//
//	type Poller struct {
//	    timer timer.Timer
//	    self  *actor.WeakAddr[timer.Tick]
//	}
//
//	func (p *Poller) Started(ctx context.Context, self *actor.Addr[*Poller]) error {
//	    p.self = actor.AsWeak[timer.Tick](self.Downgrade())
//	    p.timer.SetIntervalWeak(p.self, 10*time.Second)
//	    return nil
//	}
//
//	func (p *Poller) Tick(ctx context.Context) error {
//	    if !p.timer.Tick() {
//	        return nil
//	    }
//	    return p.poll(ctx)
//	}
//
// Weak arms let the actor stop as usual; strong arms hold a handle and keep
// it alive until the deadline (timeouts) or until cleared (intervals).
package timer
