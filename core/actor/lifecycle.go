package actor

// State is the lifecycle state of an actor. Transitions are monotonic:
// Starting -> Running -> Stopping -> Stopped, with no re-entry. A stopped
// actor is never restarted; spawn a new one instead.
type State int32

const (
	// StateStarting is the phase before the first envelope: the actor is
	// spawned and its start hook, if any, is running.
	StateStarting State = iota
	// StateRunning means the dispatch loop is processing envelopes.
	StateRunning
	// StateStopping means the mailbox is closed and drained; stop hooks and
	// outstanding background tasks are winding down.
	StateStopping
	// StateStopped is terminal. Done channels are closed shortly after.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
