package actor

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// taskFunc is a background task bound to an actor's lifetime. It receives
// the actor's run context and must return promptly once that is cancelled.
type taskFunc func(ctx context.Context)

// scheduler runs an actor's background tasks: deferred productions and
// SpawnTask work. Tasks run concurrently with the dispatch loop and with
// each other, so they must not touch actor state; they talk to the actor
// through its address. The loop waits for all tasks during Stopping.
type scheduler struct {
	ctx      context.Context
	log      *slog.Logger
	inflight atomic.Int32
	sem      chan struct{}

	wg sync.WaitGroup

	actorID string
	metrics ActorMetrics
}

func newScheduler(ctx context.Context, max int, actorID string, log *slog.Logger, m ActorMetrics) *scheduler {
	var sem chan struct{}
	if max > 0 {
		sem = make(chan struct{}, max)
	}
	return &scheduler{
		ctx:     ctx,
		sem:     sem,
		log:     log,
		actorID: actorID,
		metrics: m,
	}
}

// schedule accepts f unless the actor is already stopping. Once accepted,
// f runs exactly once, possibly with an already-cancelled context when the
// actor stopped while f waited for a semaphore slot. That keeps cleanup in
// f (releasing completion cells, closing resources) reliable.
func (s *scheduler) schedule(f taskFunc) bool {
	select {
	case <-s.ctx.Done():
		return false
	default:
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if s.sem != nil {
			select {
			case s.sem <- struct{}{}:
				defer func() { <-s.sem }()
			case <-s.ctx.Done():
				// Run anyway: f observes the cancelled context and cleans up.
			}
		}

		count := s.inflight.Add(1)
		s.metrics.TasksInflight(s.actorID, int(count))
		defer func() {
			count := s.inflight.Add(-1)
			s.metrics.TasksInflight(s.actorID, int(count))
		}()

		s.runTask(f)
	}()
	return true
}

func (s *scheduler) runTask(f taskFunc) {
	defer s.metrics.TaskDuration().ObserveDuration()

	defer func() {
		if r := recover(); r != nil {
			s.metrics.TaskCompleted(false)
			s.log.Error("scheduled task panicked", slog.Any("recovered", r))
			return
		}
	}()

	f(s.ctx)
	s.metrics.TaskCompleted(true)
}

// wait blocks until all accepted tasks have completed.
func (s *scheduler) wait() {
	s.wg.Wait()
}
