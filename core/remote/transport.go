package remote

import (
	"context"
)

type Subscription interface {
	Unsubscribe() error
}

type ServerHandlerFunc = func(ctx context.Context, env Envelope) ([]byte, error)

type ClientTransport interface {
	// Request sends a message and waits for a reply.
	Request(ctx context.Context, env Envelope) ([]byte, error)

	Close() error
}

type ServerTransport interface {
	// Subscribe delivers envelopes addressed to the named actor.
	Subscribe(ctx context.Context, actor string, h ServerHandlerFunc) (Subscription, error)

	Close() error
}

// Transport sends messages and lets you subscribe for actors you host.
type Transport interface {
	ClientTransport
	ServerTransport
}
