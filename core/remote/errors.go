package remote

import "errors"

var (
	// Transport errors
	ErrTransportClosed = errors.New("transport closed")
	ErrNoSuchActor     = errors.New("no subscriber for actor")

	// Envelope errors
	ErrEnvelopeExpired = errors.New("envelope TTL expired")
	ErrReservedHeader  = errors.New("cannot set reserved header")
	ErrActorRequired   = errors.New("actor name is required")

	// Handler errors
	ErrUnknownMessageType = errors.New("no handler for message type")
	ErrHandlerTimeout     = errors.New("handler timed out")
)
