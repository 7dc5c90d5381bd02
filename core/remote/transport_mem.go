package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// responseFrame is the minimal response encoding for Request().
// Transport remains backend-agnostic because it's just bytes on the wire.
type responseFrame struct {
	Data []byte `json:"data,omitempty"`
	Err  string `json:"err,omitempty"`
}

type handlerFn func(context.Context, Envelope) ([]byte, error)

type MemTransportOpts struct {
	// HandlerTimeout bounds each handler invocation. Zero means no limit.
	HandlerTimeout time.Duration

	// MaxConcurrentHandlers caps handlers running at once across all
	// subscriptions. Zero means unlimited.
	MaxConcurrentHandlers int
}

// MemTransport is an in-process transport. Requests are delivered to
// subscribed handlers on their own goroutines and replies come back
// through per-request inboxes, so it behaves like a broker without the
// wire. Use it in tests and single-binary setups.
type MemTransport struct {
	mu  sync.RWMutex
	log *slog.Logger

	closed bool

	handlerTimeout time.Duration
	sem            chan struct{}
	inflight       sync.WaitGroup

	// actor -> subID -> handler
	actorSubs map[string]map[string]handlerFn

	// replyTo -> chan response bytes
	inboxes map[string]chan []byte

	seq uint64
}

func NewMemTransport(opts ...MemTransportOpts) *MemTransport {
	var o MemTransportOpts
	if len(opts) > 0 {
		o = opts[0]
	}

	var sem chan struct{}
	if o.MaxConcurrentHandlers > 0 {
		sem = make(chan struct{}, o.MaxConcurrentHandlers)
	}

	return &MemTransport{
		log:            slog.New(slog.DiscardHandler),
		handlerTimeout: o.HandlerTimeout,
		sem:            sem,
		actorSubs:      make(map[string]map[string]handlerFn),
		inboxes:        make(map[string]chan []byte),
	}
}

func (t *MemTransport) WithLog(log *slog.Logger) *MemTransport {
	t.log = log.With(slog.String("transport", "mem"))
	return t
}

func (t *MemTransport) doPublish(ctx context.Context, env Envelope) error {

	t.mu.RLock()
	if t.closed {
		t.mu.RUnlock()
		return ErrTransportClosed
	}

	// Copy handlers to avoid holding lock while invoking user code.
	subs := t.actorSubs[env.Actor]
	handlers := make([]handlerFn, 0, len(subs))
	for _, h := range subs {
		handlers = append(handlers, h)
	}

	// Register in-flight work before releasing the lock so Close cannot
	// finish between the check above and the goroutines below.
	t.inflight.Add(len(handlers))
	t.mu.RUnlock()

	if len(handlers) == 0 {
		return fmt.Errorf("%w: %s", ErrNoSuchActor, env.Actor)
	}

	for _, h := range handlers {
		h := h
		go t.invokeHandler(ctx, h, env)
	}

	return nil
}

func (t *MemTransport) Request(ctx context.Context, env Envelope) ([]byte, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}

	// Stamp creation time so receivers can evaluate the TTL.
	if env.TTLMs > 0 && env.CreatedAtMs == 0 {
		env.CreatedAtMs = time.Now().UnixMilli()
	}
	if env.Expired() {
		return nil, ErrEnvelopeExpired
	}

	// Create a per-request inbox
	replyTo := t.newInboxID()
	replyCh, err := t.registerInbox(replyTo)
	if err != nil {
		return nil, err
	}
	defer t.unregisterInbox(replyTo)

	env.ReplyTo = replyTo

	// Publish request (async delivery)
	if err := t.doPublish(ctx, env); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case b, ok := <-replyCh:
		if !ok {
			return nil, ErrTransportClosed
		}
		var rf responseFrame
		if err := json.Unmarshal(b, &rf); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		if rf.Err != "" {
			return nil, errors.New(rf.Err)
		}
		return rf.Data, nil
	}
}

func (t *MemTransport) Subscribe(
	ctx context.Context,
	actor string,
	h func(context.Context, Envelope) ([]byte, error),
) (Subscription, error) {
	if actor == "" {
		return nil, ErrActorRequired
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.log.Debug("subscribe", slog.String("actor", actor))

	if t.closed {
		return nil, ErrTransportClosed
	}
	if t.actorSubs[actor] == nil {
		t.actorSubs[actor] = make(map[string]handlerFn)
	}

	subID := t.newSubID(actor)
	t.actorSubs[actor][subID] = h

	s := &subscription{
		t:     t,
		log:   t.log.With(slog.String("subscription", subID), slog.String("actor", actor)),
		actor: actor,
		subID: subID,
	}

	context.AfterFunc(ctx, func() {
		_ = s.Unsubscribe()
	})

	return s, nil
}

// Close stops accepting new messages, waits for in-flight handlers and
// then releases all inboxes. Pending requesters still receive replies
// that were delivered before the inboxes close.
func (t *MemTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	t.inflight.Wait()

	t.mu.Lock()
	defer t.mu.Unlock()

	// Close all inbox channels so waiters unblock.
	for k, ch := range t.inboxes {
		close(ch)
		delete(t.inboxes, k)
	}

	// Clear subs
	for actor := range t.actorSubs {
		delete(t.actorSubs, actor)
	}

	t.log.Debug("closed")

	return nil
}

/* ---------------------- internals ---------------------- */

type subscription struct {
	t     *MemTransport
	log   *slog.Logger
	actor string
	subID string
	once  sync.Once
}

func (s *subscription) Unsubscribe() error {
	s.once.Do(func() {
		s.t.mu.Lock()
		defer s.t.mu.Unlock()
		if subs := s.t.actorSubs[s.actor]; subs != nil {
			delete(subs, s.subID)
			if len(subs) == 0 {
				delete(s.t.actorSubs, s.actor)
			}
		}
		s.log.Debug("unsubscribed")
	})
	return nil
}

func (t *MemTransport) invokeHandler(ctx context.Context, h handlerFn, env Envelope) {
	defer t.inflight.Done()

	if t.sem != nil {
		t.sem <- struct{}{}
		defer func() { <-t.sem }()
	}

	hctx := ctx
	if t.handlerTimeout > 0 {
		var cancel context.CancelFunc
		hctx, cancel = context.WithTimeout(ctx, t.handlerTimeout)
		defer cancel()
	}

	resp, err := h(hctx, env)
	if t.handlerTimeout > 0 && errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %s", ErrHandlerTimeout, env.Type)
	}

	// If it's not a request, nothing to do.
	if env.ReplyTo == "" {
		if err != nil {
			t.log.Error("non-reply handler failed", slog.Any("envelope", env), slog.Any("error", err))
		}
		return
	}

	// Encode response (data + error)
	rf := responseFrame{Data: resp}
	if err != nil {
		rf.Err = err.Error()
		rf.Data = nil
	}
	b, _ := json.Marshal(rf)

	// Deliver response if inbox still exists
	t.mu.RLock()
	ch := t.inboxes[env.ReplyTo]
	t.mu.RUnlock()
	if ch == nil {
		t.log.Warn("dropping response", slog.String("replyTo", env.ReplyTo))
		return // requester timed out/canceled; drop
	}

	// Non-blocking send: if requester is gone or buffer full, drop.
	select {
	case ch <- b:
	default:
	}
}

func (t *MemTransport) newInboxID() string {
	n := atomic.AddUint64(&t.seq, 1)
	return fmt.Sprintf("inbox.%d", n)
}

func (t *MemTransport) newSubID(actor string) string {
	n := atomic.AddUint64(&t.seq, 1)
	return fmt.Sprintf("sub.%s.%d", actor, n)
}

func (t *MemTransport) registerInbox(replyTo string) (<-chan []byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, ErrTransportClosed
	}
	// Buffered 1 so handler can respond even if requester is just about to select().
	ch := make(chan []byte, 1)
	t.inboxes[replyTo] = ch
	return ch, nil
}

// unregisterInbox only removes the map entry. The channel is left open: a
// handler that already picked it up may still be about to send, and only
// Close, after the in-flight wait, can close inboxes safely.
func (t *MemTransport) unregisterInbox(replyTo string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inboxes, replyTo)
}
