package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codewandler/actr-go/core/codec"
)

type ClientOptions struct {
	Transport       ClientTransport
	Codec           codec.Codec
	EnvelopeOptions []EnvelopeOption
	Metrics         RemoteMetrics
}

// Client reaches actors hosted behind a transport. Scope it to one actor
// with Actor, then exchange typed messages via Request and Notify.
type Client struct {
	t       ClientTransport
	codec   codec.Codec
	opts    []EnvelopeOption
	metrics RemoteMetrics
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Transport == nil {
		return nil, fmt.Errorf("remote: ClientOptions.Transport is required")
	}
	cdc := opts.Codec
	if cdc == nil {
		cdc = codec.JSONCodec{}
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NopRemoteMetrics()
	}
	return &Client{
		t:       opts.Transport,
		codec:   cdc,
		opts:    opts.EnvelopeOptions,
		metrics: metrics,
	}, nil
}

func (c *Client) newEnv(actor string, msgType string, data []byte, opts ...EnvelopeOption) (Envelope, error) {
	e := Envelope{
		Actor:       actor,
		Type:        msgType,
		Data:        data,
		CreatedAtMs: time.Now().UnixMilli(),
	}
	for _, opt := range c.opts {
		opt(&e)
	}
	for _, opt := range opts {
		opt(&e)
	}
	if err := e.Validate(); err != nil {
		return Envelope{}, err
	}
	return e, nil
}

// recordTransportError maps known transport errors to metric labels.
func (c *Client) recordTransportError(err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, ErrNoSuchActor):
		c.metrics.TransportError("no_subscriber")
	case errors.Is(err, ErrEnvelopeExpired):
		c.metrics.TransportError("ttl_expired")
	case errors.Is(err, ErrTransportClosed):
		c.metrics.TransportError("closed")
	}
}

// NotifyActor publishes to a named actor without waiting on a payload.
func (c *Client) NotifyActor(ctx context.Context, actor string, msgType string, data []byte, opts ...EnvelopeOption) error {
	env, err := c.newEnv(actor, msgType, data, opts...)
	if err != nil {
		return err
	}
	_, err = c.t.Request(ctx, env)
	c.metrics.NotifyCompleted(msgType, err == nil)
	if err != nil {
		c.recordTransportError(err)
	}
	return err
}

// RequestActor sends a request to a named actor and returns the raw reply.
func (c *Client) RequestActor(ctx context.Context, actor string, msgType string, data []byte, opts ...EnvelopeOption) ([]byte, error) {
	env, err := c.newEnv(actor, msgType, data, opts...)
	if err != nil {
		return nil, err
	}

	defer c.metrics.RequestDuration(msgType).ObserveDuration()

	result, err := c.t.Request(ctx, env)
	c.metrics.RequestCompleted(msgType, err == nil)
	if err != nil {
		c.recordTransportError(err)
	}
	return result, err
}

// Actor scopes the client to one named actor.
func (c *Client) Actor(name string, opts ...EnvelopeOption) *ActorClient {
	return &ActorClient{
		client: c,
		name:   name,
		opts:   append([]EnvelopeOption{WithHeader(envHeaderActor, name)}, opts...),
	}
}

// === Scoped client ===

// ActorClient talks to one named actor. Its Request/Notify take any
// payload; NewRequest adds a typed wrapper on top.
type ActorClient struct {
	client *Client
	name   string
	opts   []EnvelopeOption
}

func (c *ActorClient) Name() string { return c.name }

func (c *ActorClient) requestRaw(ctx context.Context, msgType string, data []byte, opts ...EnvelopeOption) ([]byte, error) {
	allOpts := append(c.opts, opts...)
	return c.client.RequestActor(ctx, c.name, msgType, data, allOpts...)
}

func (c *ActorClient) marshal(v any) ([]byte, error) { return c.client.codec.Marshal(v) }
func (c *ActorClient) unmarshal(data []byte, v any) error {
	return c.client.codec.Unmarshal(data, v)
}

func (c *ActorClient) Request(ctx context.Context, payload any, opts ...EnvelopeOption) ([]byte, error) {
	if err := validatePayload(payload); err != nil {
		return nil, err
	}

	data, err := c.client.codec.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return c.requestRaw(ctx, getMessageType(payload), data, opts...)
}

func (c *ActorClient) Notify(ctx context.Context, msg any, opts ...EnvelopeOption) error {
	if err := validatePayload(msg); err != nil {
		return err
	}
	data, err := c.client.codec.Marshal(msg)
	if err != nil {
		return err
	}
	allOpts := append(c.opts, opts...)
	return c.client.NotifyActor(ctx, c.name, getMessageType(msg), data, allOpts...)
}

type (
	Requester interface {
		requestRaw(ctx context.Context, msgType string, data []byte, opts ...EnvelopeOption) ([]byte, error)
		marshal(v any) ([]byte, error)
		unmarshal(data []byte, v any) error
	}
)

type (
	// Request binds a request/response message pair to a scoped client.
	Request[IN any, OUT any] struct {
		requester Requester
	}
)

func NewRequest[IN any, OUT any](requester Requester) *Request[IN, OUT] {
	return &Request[IN, OUT]{
		requester: requester,
	}
}

func validatePayload(payload any) error {
	if v, ok := payload.(interface{ Validate() error }); ok {
		err := v.Validate()
		if err != nil {
			return fmt.Errorf("invalid payload: %w", err)
		}
	}
	return nil
}

func (r *Request[IN, OUT]) Request(ctx context.Context, payload IN) (out *OUT, err error) {
	if err = validatePayload(payload); err != nil {
		return nil, err
	}

	data, err := r.requester.marshal(payload)
	if err != nil {
		return nil, err
	}

	data, err = r.requester.requestRaw(ctx, getMessageType(payload), data)
	if err != nil {
		return nil, err
	}
	out = new(OUT)
	err = r.requester.unmarshal(data, out)
	return
}
