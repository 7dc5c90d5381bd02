package actor

import "sync/atomic"

// Spawner starts the goroutine an actor's dispatch loop runs on. Implement
// it to route actors onto a tracked group (see core/system) or a custom
// runtime; the zero configuration uses plain goroutines.
type Spawner interface {
	// Spawn starts task. The task is long-running: it blocks for the
	// actor's entire lifetime, so pooled implementations must not assume
	// tasks finish quickly.
	Spawn(task func()) error
}

type goSpawner struct{}

func (goSpawner) Spawn(task func()) error {
	go task()
	return nil
}

// GoSpawner returns the plain-goroutine spawner.
func GoSpawner() Spawner {
	return goSpawner{}
}

type spawnerBox struct {
	s Spawner
}

var defaultSpawner atomic.Value

func init() {
	defaultSpawner.Store(spawnerBox{s: goSpawner{}})
}

// DefaultSpawner returns the process-wide spawner used when Options.Spawner
// is nil. It starts as GoSpawner.
func DefaultSpawner() Spawner {
	return defaultSpawner.Load().(spawnerBox).s
}

// SetDefaultSpawner replaces the process-wide spawner. Call it once from the
// composition root, before spawning actors that rely on the default.
func SetDefaultSpawner(s Spawner) {
	if s == nil {
		panic("actor: nil spawner")
	}
	defaultSpawner.Store(spawnerBox{s: s})
}
