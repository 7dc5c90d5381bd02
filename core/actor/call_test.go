package actor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCall_ReturnsValue(t *testing.T) {
	addr := spawnCounter(t)
	defer addr.Release()

	n, err := Call(t.Context(), addr, func(ctx context.Context, c *counter) (int, error) {
		return c.Add(5), nil
	})
	require.NoError(t, err)
	require.Equal(t, 5, n)
}

func TestCall_CancelAbandonsWaitOnly(t *testing.T) {
	gate := make(chan struct{})
	addr := spawnCounter(t)
	defer addr.Release()

	require.NoError(t, Send(t.Context(), addr, func(ctx context.Context, c *counter) error {
		<-gate
		return nil
	}))

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	_, err := Call(ctx, addr, func(ctx context.Context, c *counter) (int, error) {
		return c.Add(1), nil
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// The envelope was queued before the timeout; the actor still runs it.
	close(gate)
	n, err := Call(t.Context(), addr, func(ctx context.Context, c *counter) (int, error) {
		return c.Value(), nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestCallAsync_FanOut(t *testing.T) {
	addr := spawnCounter(t)
	defer addr.Release()

	f1 := CallAsync(t.Context(), addr, func(ctx context.Context, c *counter) (int, error) {
		return c.Add(1), nil
	})
	f2 := CallAsync(t.Context(), addr, func(ctx context.Context, c *counter) (int, error) {
		return c.Add(1), nil
	})

	v1, err := f1.Await(t.Context())
	require.NoError(t, err)
	v2, err := f2.Await(t.Context())
	require.NoError(t, err)
	require.Equal(t, 1, v1)
	require.Equal(t, 2, v2)
}

func TestCallAsync_SubmitErrorSurfacesOnAwait(t *testing.T) {
	addr := spawnCounter(t)
	defer addr.Release()
	addr.Stop()
	awaitStopped(t, addr)

	f := CallAsync(t.Context(), addr, func(ctx context.Context, c *counter) (int, error) {
		return c.Value(), nil
	})
	_, err := f.Await(t.Context())
	require.ErrorIs(t, err, ErrDisconnected)
}

func TestCallProduces_None(t *testing.T) {
	addr := spawnCounter(t)
	defer addr.Release()

	f := CallProduces(t.Context(), addr, func(ctx context.Context, c *counter) (Produces[int], error) {
		return None[int](), nil
	})
	_, err := f.Await(t.Context())
	require.ErrorIs(t, err, ErrDisconnected)
}

func TestCallProduces_DeferredDoesNotBlockLoop(t *testing.T) {
	gate := make(chan struct{})
	addr := spawnCounter(t)
	defer addr.Release()

	slow := CallProduces(t.Context(), addr, func(ctx context.Context, c *counter) (Produces[int], error) {
		return Produce(addr, func(ctx context.Context) (int, error) {
			<-gate
			return 99, nil
		}), nil
	})

	// The deferred production must not hold the dispatch loop.
	n, err := Call(t.Context(), addr, func(ctx context.Context, c *counter) (int, error) {
		return c.Add(1), nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	select {
	case <-slow.Done():
		t.Fatal("deferred production resolved before its task finished")
	default:
	}

	close(gate)
	v, err := slow.Await(t.Context())
	require.NoError(t, err)
	require.Equal(t, 99, v)
}

func TestCall_PipelinesThroughForwarder(t *testing.T) {
	backend := spawnCounter(t)
	defer backend.Release()

	type forwarder struct {
		backend *Addr[*counter]
	}
	front, err := Spawn(&forwarder{backend: backend.Clone()}, Options{})
	require.NoError(t, err)
	defer front.Release()
	defer func() {
		// The forwarder owns a clone; release it through the actor.
		_ = Send(context.Background(), front, func(ctx context.Context, f *forwarder) error {
			f.backend.Release()
			return nil
		})
	}()

	f := CallProduces(t.Context(), front, func(ctx context.Context, f *forwarder) (Produces[int], error) {
		return Deferred(CallAsync(ctx, f.backend, func(ctx context.Context, c *counter) (int, error) {
			return c.Add(10), nil
		})), nil
	})

	v, err := f.Await(t.Context())
	require.NoError(t, err)
	require.Equal(t, 10, v)
}

func TestCall_SelfCallFails(t *testing.T) {
	type loops struct {
		inner error
	}
	addr, err := Spawn(&loops{}, Options{})
	require.NoError(t, err)
	defer addr.Release()

	require.NoError(t, Send(t.Context(), addr, func(ctx context.Context, l *loops) error {
		_, l.inner = Call(ctx, addr, func(ctx context.Context, l *loops) (int, error) {
			return 0, nil
		})
		return nil
	}))

	inner, err := Call(t.Context(), addr, func(ctx context.Context, l *loops) (error, error) {
		return l.inner, nil
	})
	require.NoError(t, err)
	require.ErrorIs(t, inner, ErrSelfCall)
}

func TestCall_ActorToActorIsNotSelfCall(t *testing.T) {
	a := spawnCounter(t)
	defer a.Release()
	b := spawnCounter(t)
	defer b.Release()

	// A handler on a may call b; only a -> a is refused.
	n, err := Call(t.Context(), a, func(ctx context.Context, _ *counter) (int, error) {
		return Call(ctx, b, func(ctx context.Context, c *counter) (int, error) {
			return c.Add(2), nil
		})
	})
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestProduce_TaskError(t *testing.T) {
	boom := errors.New("fetch failed")
	addr := spawnCounter(t)
	defer addr.Release()

	f := CallProduces(t.Context(), addr, func(ctx context.Context, c *counter) (Produces[int], error) {
		return Produce(addr, func(ctx context.Context) (int, error) {
			return 0, boom
		}), nil
	})
	_, err := f.Await(t.Context())
	require.ErrorIs(t, err, boom)
}

func TestProduce_StopCancelsTask(t *testing.T) {
	addr := spawnCounter(t)

	f := CallProduces(t.Context(), addr, func(ctx context.Context, c *counter) (Produces[int], error) {
		return Produce(addr, func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		}), nil
	})

	// Wait for the envelope to run so the task is scheduled.
	_, err := Call(t.Context(), addr, func(ctx context.Context, c *counter) (int, error) {
		return c.Value(), nil
	})
	require.NoError(t, err)

	addr.Release()
	awaitStopped(t, addr)

	_, err = f.Await(t.Context())
	require.ErrorIs(t, err, context.Canceled)
}

func TestProduce_DetachedRef(t *testing.T) {
	var detached Addr[*counter]
	p := Produce(&detached, func(ctx context.Context) (int, error) {
		return 1, nil
	})

	f := NewFuture[int]()
	f.complete(p)
	_, err := f.Await(t.Context())
	require.ErrorIs(t, err, ErrDisconnected)
}

func TestSend_DeliveredInOrderWithCalls(t *testing.T) {
	addr := spawnCounter(t)
	defer addr.Release()

	require.NoError(t, Send(t.Context(), addr, func(ctx context.Context, c *counter) error {
		c.Add(1)
		return nil
	}))
	n, err := Call(t.Context(), addr, func(ctx context.Context, c *counter) (int, error) {
		return c.Value(), nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
