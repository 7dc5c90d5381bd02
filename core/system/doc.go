// Package system ties a tree of actors to one shared lifecycle.
//
// A [System] carries the root context, base logger, metrics and per-spawn
// defaults, and every actor spawned through it runs its dispatch loop on the
// system's errgroup. Stopping the system stops all of them; Shutdown waits
// until the last loop has finished.
//
// # Basic Usage
//
//	sys := system.New(system.Config{
//	    Log: logger,
//	})
//
//	addr, err := system.Spawn(sys, &Worker{}, actor.Options{ID: "worker-1"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer addr.Release()
//
//	// ... use the address ...
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//	if err := sys.Shutdown(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Actors spawned directly with [actor.Spawn] are not part of any system and
// manage their own lifetime through their addresses alone.
package system
