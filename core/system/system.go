package system

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/codewandler/actr-go/core/actor"
)

// ErrStopped rejects spawns on a system that is shutting down.
var ErrStopped = errors.New("system: stopped")

// ActorDefaults are applied to every spawn that leaves the matching option
// unset.
type ActorDefaults struct {
	MailboxSize int
	MaxTasks    int
}

type Config struct {
	// ID identifies the system in logs. Defaults to a random ID.
	ID string

	// Context is the root of every actor's run context. Defaults to
	// context.Background(). Cancelling it shuts the system down.
	Context context.Context

	// Log is the base logger handed to spawned actors. Defaults to
	// slog.Default().
	Log *slog.Logger

	// Metrics instruments every actor spawned through the system. Defaults
	// to actor.NopActorMetrics().
	Metrics actor.ActorMetrics

	// Actor holds per-spawn defaults.
	Actor ActorDefaults
}

// System is the composition root for a tree of actors: it owns the shared
// context, logger and metrics, runs every dispatch loop on one errgroup, and
// shuts the whole set down together. Individual actors still stop on their
// own when their last strong address goes; the system only adds the
// collective lifecycle.
type System struct {
	id       string
	ctx      context.Context
	cancel   context.CancelFunc
	log      *slog.Logger
	metrics  actor.ActorMetrics
	defaults ActorDefaults

	grp *errgroup.Group

	mu      sync.Mutex
	stopped bool
	actors  int

	done     chan struct{}
	stopOnce sync.Once
}

func New(cfg Config) *System {
	if cfg.ID == "" {
		cfg.ID = fmt.Sprintf("sys-%s", gonanoid.Must(6))
	}
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = actor.NopActorMetrics()
	}

	ctx, cancel := context.WithCancel(cfg.Context)
	s := &System{
		id:       cfg.ID,
		ctx:      ctx,
		cancel:   cancel,
		log:      cfg.Log.With(slog.String("system", cfg.ID)),
		metrics:  cfg.Metrics,
		defaults: cfg.Actor,
		grp:      &errgroup.Group{},
		done:     make(chan struct{}),
	}

	// Root cancellation from outside behaves like Stop.
	context.AfterFunc(ctx, s.Stop)
	return s
}

func (s *System) ID() string { return s.id }

// Context is the system's root context. It is the parent of every actor's
// run context and is cancelled on Stop.
func (s *System) Context() context.Context { return s.ctx }

func (s *System) Log() *slog.Logger { return s.log }

// Actors reports how many actors were spawned through the system and have
// not yet terminated.
func (s *System) Actors() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actors
}

// Spawn starts an actor inside s: the system's context, logger, metrics and
// defaults fill any options left unset, and the dispatch loop is tracked so
// Shutdown can wait for it.
func Spawn[A any](s *System, state A, opt actor.Options) (*actor.Addr[A], error) {
	if opt.Context == nil {
		opt.Context = s.ctx
	}
	if opt.Logger == nil {
		opt.Logger = s.log
	}
	if opt.Metrics == nil {
		opt.Metrics = s.metrics
	}
	if opt.MailboxSize == 0 {
		opt.MailboxSize = s.defaults.MailboxSize
	}
	if opt.MaxTasks == 0 {
		opt.MaxTasks = s.defaults.MaxTasks
	}
	opt.Spawner = (*loopSpawner)(s)

	addr, err := actor.Spawn(state, opt)
	if err != nil {
		return nil, fmt.Errorf("system %q: %w", s.id, err)
	}
	return addr, nil
}

// Stop cancels the root context, which asks every actor in the system to
// stop. It returns immediately; Done closes once all dispatch loops have
// finished. Safe to call more than once.
func (s *System) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()

		s.log.Debug("system stopping")
		s.cancel()
		go func() {
			_ = s.grp.Wait()
			s.log.Debug("system stopped")
			close(s.done)
		}()
	})
}

// Shutdown stops the system and waits until every actor has terminated, or
// until ctx expires.
func (s *System) Shutdown(ctx context.Context) error {
	s.Stop()
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("system %q: shutdown: %w", s.id, ctx.Err())
	}
}

// Done is closed once the system was stopped and all of its dispatch loops
// have finished.
func (s *System) Done() <-chan struct{} { return s.done }

/* ---- internals ---- */

// loopSpawner runs dispatch loops on the system's errgroup so Shutdown can
// wait on them collectively.
type loopSpawner System

func (l *loopSpawner) Spawn(task func()) error {
	s := (*System)(l)
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	s.actors++
	s.grp.Go(func() error {
		defer func() {
			s.mu.Lock()
			s.actors--
			s.mu.Unlock()
		}()
		task()
		return nil
	})
	s.mu.Unlock()
	return nil
}

var _ actor.Spawner = (*loopSpawner)(nil)
