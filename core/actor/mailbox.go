package actor

import (
	"context"
	"sync"
)

// mailbox is the MPSC queue between senders and the dispatch loop. FIFO per
// producer, single consumer. limit > 0 bounds the queue; otherwise it grows
// as needed. ready and vacant are edge-triggered wakeup channels: ready for
// the consumer, vacant for one blocked producer at a time.
type mailbox[A any] struct {
	mu     sync.Mutex
	buf    []Envelope[A]
	head   int
	limit  int
	closed bool

	ready   chan struct{}
	vacant  chan struct{}
	closing chan struct{}
}

func newMailbox[A any](limit int) *mailbox[A] {
	return &mailbox[A]{
		limit:   limit,
		ready:   make(chan struct{}, 1),
		vacant:  make(chan struct{}, 1),
		closing: make(chan struct{}),
	}
}

// push enqueues env. With block set, a full bounded mailbox suspends the
// caller until space frees up, the mailbox closes, or ctx is cancelled.
// Without it, a full mailbox fails with ErrMailboxFull. A closed mailbox
// always fails with ErrDisconnected.
func (m *mailbox[A]) push(ctx context.Context, env Envelope[A], block bool) error {
	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return ErrDisconnected
		}
		if m.limit <= 0 || m.size() < m.limit {
			m.buf = append(m.buf, env)
			free := m.limit > 0 && m.size() < m.limit
			m.mu.Unlock()
			signal(m.ready)
			if free {
				// Pass the wakeup on so one blocked producer per free slot
				// gets through.
				signal(m.vacant)
			}
			return nil
		}
		m.mu.Unlock()

		if !block {
			return ErrMailboxFull
		}
		select {
		case <-m.vacant:
		case <-m.closing:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// tryPop dequeues the oldest envelope, if any. Pop order is queue order
// regardless of closed state, so the consumer can drain after close.
func (m *mailbox[A]) tryPop() (Envelope[A], bool) {
	m.mu.Lock()
	if m.size() == 0 {
		m.mu.Unlock()
		var zero Envelope[A]
		return zero, false
	}
	env := m.buf[m.head]
	m.buf[m.head] = Envelope[A]{}
	m.head++
	if m.head == len(m.buf) {
		m.buf = m.buf[:0]
		m.head = 0
	} else if m.head > 64 && m.head*2 >= len(m.buf) {
		n := copy(m.buf, m.buf[m.head:])
		clear(m.buf[n:])
		m.buf = m.buf[:n]
		m.head = 0
	}
	m.mu.Unlock()
	signal(m.vacant)
	return env, true
}

func (m *mailbox[A]) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size()
}

// close rejects all future pushes and unblocks waiting producers. Queued
// envelopes stay queued for the consumer to drain.
func (m *mailbox[A]) close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()
	close(m.closing)
	signal(m.ready)
}

// size must be called with mu held.
func (m *mailbox[A]) size() int {
	return len(m.buf) - m.head
}

// signal posts one edge-triggered token without blocking.
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
