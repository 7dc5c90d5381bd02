package actor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testEnv(id int, out *[]int) Envelope[*counter] {
	return Envelope[*counter]{Op: func(ctx context.Context, c *counter) error {
		*out = append(*out, id)
		return nil
	}}
}

func TestMailbox_FIFO(t *testing.T) {
	mb := newMailbox[*counter](0)
	var got []int
	for i := 0; i < 10; i++ {
		require.NoError(t, mb.push(t.Context(), testEnv(i, &got), false))
	}
	require.Equal(t, 10, mb.len())

	for i := 0; i < 10; i++ {
		env, ok := mb.tryPop()
		require.True(t, ok)
		require.NoError(t, env.Op(t.Context(), nil))
	}
	_, ok := mb.tryPop()
	require.False(t, ok)
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestMailbox_BoundedTryPush(t *testing.T) {
	mb := newMailbox[*counter](2)
	var got []int

	require.NoError(t, mb.push(t.Context(), testEnv(0, &got), false))
	require.NoError(t, mb.push(t.Context(), testEnv(1, &got), false))
	require.ErrorIs(t, mb.push(t.Context(), testEnv(2, &got), false), ErrMailboxFull)

	_, ok := mb.tryPop()
	require.True(t, ok)
	require.NoError(t, mb.push(t.Context(), testEnv(2, &got), false))
}

func TestMailbox_BlockingPushWaitsForSpace(t *testing.T) {
	mb := newMailbox[*counter](1)
	var got []int
	require.NoError(t, mb.push(t.Context(), testEnv(0, &got), true))

	pushed := make(chan error, 1)
	go func() {
		pushed <- mb.push(context.Background(), testEnv(1, &got), true)
	}()

	select {
	case err := <-pushed:
		t.Fatalf("push returned early: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	_, ok := mb.tryPop()
	require.True(t, ok)

	select {
	case err := <-pushed:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("blocked push never woke up")
	}
	require.Equal(t, 1, mb.len())
}

func TestMailbox_BlockingPushHonorsContext(t *testing.T) {
	mb := newMailbox[*counter](1)
	var got []int
	require.NoError(t, mb.push(t.Context(), testEnv(0, &got), true))

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	err := mb.push(ctx, testEnv(1, &got), true)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMailbox_CloseDisconnectsProducers(t *testing.T) {
	mb := newMailbox[*counter](1)
	var got []int
	require.NoError(t, mb.push(t.Context(), testEnv(0, &got), true))

	// A producer blocked on a full mailbox must wake on close.
	pushed := make(chan error, 1)
	go func() {
		pushed <- mb.push(context.Background(), testEnv(1, &got), true)
	}()
	time.Sleep(20 * time.Millisecond)
	mb.close()

	select {
	case err := <-pushed:
		require.ErrorIs(t, err, ErrDisconnected)
	case <-time.After(time.Second):
		t.Fatal("blocked push never woke on close")
	}

	require.ErrorIs(t, mb.push(t.Context(), testEnv(2, &got), false), ErrDisconnected)

	// Queued envelopes stay poppable for the drain.
	_, ok := mb.tryPop()
	require.True(t, ok)
}

func TestMailbox_ManyBlockedProducers(t *testing.T) {
	mb := newMailbox[*counter](1)
	var got []int
	require.NoError(t, mb.push(t.Context(), testEnv(0, &got), true))

	const producers = 8
	var wg sync.WaitGroup
	errs := make(chan error, producers)
	for i := 0; i < producers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- mb.push(context.Background(), testEnv(i, &got), true)
		}()
	}

	// Pop until every producer has made it in.
	deadline := time.After(5 * time.Second)
	popped := 0
	for popped < producers+1 {
		if _, ok := mb.tryPop(); ok {
			popped++
			continue
		}
		select {
		case <-deadline:
			t.Fatalf("stalled after %d pops", popped)
		case <-time.After(time.Millisecond):
		}
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}

func TestAddr_BoundedMailboxFull(t *testing.T) {
	gate := make(chan struct{})
	addr, err := Spawn(&counter{}, Options{MailboxSize: 1})
	require.NoError(t, err)
	defer addr.Release()

	// Park the loop so the next envelope stays queued.
	require.NoError(t, addr.TrySubmit(Envelope[*counter]{Op: func(ctx context.Context, c *counter) error {
		<-gate
		return nil
	}}))
	// Wait until the loop picked the parked envelope up, leaving the slot free.
	require.Eventually(t, func() bool {
		return addr.TrySubmit(Envelope[*counter]{Op: func(ctx context.Context, c *counter) error { return nil }}) == nil
	}, time.Second, time.Millisecond)

	err = addr.TrySubmit(Envelope[*counter]{Op: func(ctx context.Context, c *counter) error { return nil }})
	require.ErrorIs(t, err, ErrMailboxFull)

	close(gate)
}

func TestAddr_BoundedSubmitBlocksThenDelivers(t *testing.T) {
	gate := make(chan struct{})
	addr, err := Spawn(&counter{}, Options{MailboxSize: 1})
	require.NoError(t, err)
	defer addr.Release()

	require.NoError(t, addr.TrySubmit(Envelope[*counter]{Op: func(ctx context.Context, c *counter) error {
		<-gate
		return nil
	}}))
	require.Eventually(t, func() bool {
		return addr.TrySubmit(Envelope[*counter]{Op: func(ctx context.Context, c *counter) error {
			c.Add(1)
			return nil
		}}) == nil
	}, time.Second, time.Millisecond)

	submitted := make(chan error, 1)
	go func() {
		submitted <- addr.Submit(context.Background(), Envelope[*counter]{Op: func(ctx context.Context, c *counter) error {
			c.Add(1)
			return nil
		}})
	}()

	select {
	case err := <-submitted:
		t.Fatalf("submit returned early: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(gate)
	select {
	case err := <-submitted:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("blocked submit never delivered")
	}

	n, err := Call(t.Context(), addr, func(ctx context.Context, c *counter) (int, error) {
		return c.Value(), nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestMailbox_HeadCompaction(t *testing.T) {
	mb := newMailbox[*counter](0)
	var got []int

	// Interleave pushes and pops so head grows past the compaction
	// threshold while the buffer never empties.
	require.NoError(t, mb.push(t.Context(), testEnv(-1, &got), false))
	for i := 0; i < 500; i++ {
		require.NoError(t, mb.push(t.Context(), testEnv(i, &got), false))
		env, ok := mb.tryPop()
		require.True(t, ok)
		require.NoError(t, env.Op(t.Context(), nil))
	}
	require.Equal(t, 1, mb.len())

	env, ok := mb.tryPop()
	require.True(t, ok)
	require.NoError(t, env.Op(t.Context(), nil))
	require.Equal(t, 499, got[len(got)-1])
}
