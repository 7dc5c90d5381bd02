package remote

import (
	"fmt"
	"strings"
	"time"

	"github.com/codewandler/actr-go/internal/reflector"
)

const (
	headerPrefix   = "x-actr-"
	envHeaderActor = "x-actr-actor"
)

type EnvelopeOption func(*Envelope)

func WithHeader(key, value string) EnvelopeOption {
	return func(e *Envelope) {
		if e.Headers == nil {
			e.Headers = make(map[string]string)
		}
		e.Headers[key] = value
	}
}

// WithTTL stamps the envelope so receivers can drop it once d has passed
// since creation.
func WithTTL(d time.Duration) EnvelopeOption {
	return func(e *Envelope) {
		e.TTLMs = d.Milliseconds()
	}
}

// Envelope is one message on the wire, addressed to a named actor.
type Envelope struct {
	Actor       string            `json:"actor"`
	Type        string            `json:"type"`
	Data        []byte            `json:"data"`
	ReplyTo     string            `json:"reply_to,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	CreatedAtMs int64             `json:"created_at_ms,omitempty"`
	TTLMs       int64             `json:"ttl_ms,omitempty"`
}

func (e Envelope) GetHeader(key string) (string, bool) {
	if e.Headers == nil {
		return "", false
	}
	v, ok := e.Headers[key]
	return v, ok
}

// Validate rejects envelopes that cannot be routed or that set headers
// reserved for the runtime. Header names are matched case-insensitively.
func (e Envelope) Validate() error {
	if e.Actor == "" {
		return ErrActorRequired
	}
	for k := range e.Headers {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, headerPrefix) && lk != envHeaderActor {
			return fmt.Errorf("%w: %s", ErrReservedHeader, k)
		}
	}
	return nil
}

// TTL returns the remaining time to live, or 0 when no TTL is set or the
// envelope already expired.
func (e Envelope) TTL() time.Duration {
	if e.TTLMs <= 0 || e.CreatedAtMs <= 0 {
		return 0
	}
	deadline := time.UnixMilli(e.CreatedAtMs + e.TTLMs)
	rem := time.Until(deadline)
	if rem < 0 {
		return 0
	}
	return rem
}

// Expired reports whether the envelope carries a TTL that has run out.
func (e Envelope) Expired() bool {
	if e.TTLMs <= 0 || e.CreatedAtMs <= 0 {
		return false
	}
	return time.Now().After(time.UnixMilli(e.CreatedAtMs + e.TTLMs))
}

// getMessageType derives the wire type name for a payload. Types can
// override the reflected name by implementing MessageType() string.
func getMessageType(v any) string {
	switch t := v.(type) {
	case interface{ messageType() string }:
		return t.messageType()
	case interface{ MessageType() string }:
		return t.MessageType()
	default:
		return reflector.TypeInfoOf(v).Name
	}
}

func messageTypeFor[T any]() string {
	var z T
	return getMessageType(z)
}
