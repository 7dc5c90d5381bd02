package remote

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/codewandler/actr-go/core/actor"
	"github.com/codewandler/actr-go/core/codec"
)

type (
	// HandlerRegistration adds one message type to a Mux. Create these with
	// [Handle] and [HandleMsg].
	HandlerRegistration[A any] func(m *Mux[A])

	muxHandler[A any] func(ctx context.Context, ref actor.Ref[A], data []byte, cdc codec.Codec) ([]byte, error)
)

// Mux dispatches incoming envelopes to typed handlers by message type.
// Register handlers at construction time; a Mux must not be modified once
// it is exposed on a transport.
type Mux[A any] struct {
	handlers map[string]muxHandler[A]
}

func NewMux[A any](regs ...HandlerRegistration[A]) *Mux[A] {
	m := &Mux[A]{handlers: make(map[string]muxHandler[A])}
	for _, r := range regs {
		r(m)
	}
	return m
}

// HandleOpts configures handler registration.
type HandleOpts struct {
	// MessageType overrides the type name derived from the Go type.
	MessageType string
}

type HandleOption func(*HandleOpts)

// WithMessageType overrides the message type name used for routing.
func WithMessageType(msgType string) HandleOption {
	return func(o *HandleOpts) {
		o.MessageType = msgType
	}
}

// Handle registers a request handler for messages of type IN. The decoded
// message is passed to h on the actor goroutine together with the actor
// state; the returned OUT is encoded as the reply.
func Handle[A any, IN any, OUT any](h func(ctx context.Context, state A, in IN) (OUT, error), opts ...HandleOption) HandlerRegistration[A] {
	handleOpts := HandleOpts{
		MessageType: messageTypeFor[IN](),
	}
	for _, opt := range opts {
		opt(&handleOpts)
	}
	return func(m *Mux[A]) {
		m.handlers[handleOpts.MessageType] = func(ctx context.Context, ref actor.Ref[A], data []byte, cdc codec.Codec) ([]byte, error) {
			in := new(IN)
			if err := cdc.Unmarshal(data, in); err != nil {
				return nil, fmt.Errorf("decode %s: %w", handleOpts.MessageType, err)
			}
			out, err := actor.Call(ctx, ref, func(ctx context.Context, state A) (OUT, error) {
				return h(ctx, state, *in)
			})
			if err != nil {
				return nil, err
			}
			return cdc.Marshal(out)
		}
	}
}

// HandleMsg registers a fire-and-forget handler for messages of type IN.
// The reply carries no payload; delivery errors still reach the caller.
func HandleMsg[A any, IN any](h func(ctx context.Context, state A, in IN) error, opts ...HandleOption) HandlerRegistration[A] {
	handleOpts := HandleOpts{
		MessageType: messageTypeFor[IN](),
	}
	for _, opt := range opts {
		opt(&handleOpts)
	}
	return func(m *Mux[A]) {
		m.handlers[handleOpts.MessageType] = func(ctx context.Context, ref actor.Ref[A], data []byte, cdc codec.Codec) ([]byte, error) {
			in := new(IN)
			if err := cdc.Unmarshal(data, in); err != nil {
				return nil, fmt.Errorf("decode %s: %w", handleOpts.MessageType, err)
			}
			_, err := actor.Call(ctx, ref, func(ctx context.Context, state A) (struct{}, error) {
				return struct{}{}, h(ctx, state, *in)
			})
			return nil, err
		}
	}
}

type ExposeOptions struct {
	Log     *slog.Logger
	Codec   codec.Codec
	Metrics RemoteMetrics
}

// Expose subscribes the actor behind ref on the transport under name,
// dispatching incoming envelopes through mux. The ref is borrowed: the
// caller keeps ownership of the handle, and once the actor stops every
// incoming request fails with [actor.ErrDisconnected].
//
// Unsubscribing, cancelling ctx or closing the transport unbinds the actor.
func Expose[A any](ctx context.Context, transport ServerTransport, name string, ref actor.Ref[A], mux *Mux[A], opts ExposeOptions) (Subscription, error) {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("exposed_actor", name))

	cdc := opts.Codec
	if cdc == nil {
		cdc = codec.JSONCodec{}
	}

	metrics := opts.Metrics
	if metrics == nil {
		metrics = NopRemoteMetrics()
	}

	handle := func(ctx context.Context, env Envelope) (data []byte, err error) {
		log.Debug(
			"handle",
			slog.Group(
				"envelope",
				slog.String("type", env.Type),
				slog.Any("headers", env.Headers),
			),
		)

		if env.Expired() {
			metrics.TransportError("ttl_expired")
			return nil, ErrEnvelopeExpired
		}

		h, ok := mux.handlers[env.Type]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMessageType, env.Type)
		}

		// A TTL also bounds the handler side.
		if ttl := env.TTL(); ttl > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, ttl)
			defer cancel()
		}

		defer metrics.HandlerDuration(env.Type).ObserveDuration()

		data, err = h(ctx, ref, env.Data, cdc)
		metrics.HandlerCompleted(env.Type, err == nil)
		if err != nil {
			log.Error(
				"failed to handle message",
				slog.Group(
					"message",
					slog.String("type", env.Type),
					slog.Any("headers", env.Headers),
				),
				slog.Any("error", err),
			)
		}
		return
	}

	sub, err := transport.Subscribe(ctx, name, handle)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe actor %q: %w", name, err)
	}
	metrics.ActorExposed(name, 1)

	return &exposedActor{sub: sub, unbind: func() { metrics.ActorExposed(name, 0) }}, nil
}

/* ---- internals ---- */

type exposedActor struct {
	sub    Subscription
	once   sync.Once
	unbind func()
}

func (e *exposedActor) Unsubscribe() error {
	err := e.sub.Unsubscribe()
	e.once.Do(e.unbind)
	return err
}
