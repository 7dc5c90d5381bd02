// Package remote exposes actors on a message transport so they can be
// reached by name from outside the process that owns them.
//
// A local actor stays a plain Go value with typed methods. This package
// adds a wire boundary around it: payloads are encoded with a [codec.Codec],
// wrapped in an [Envelope] addressed to an actor name, and dispatched to a
// registered handler on the receiving side. The actor itself never sees the
// transport, only decoded messages delivered through its mailbox.
//
// # Architecture
//
// Three pieces cooperate:
//
//   - [Client]: encodes messages and addresses them to named actors
//   - [Expose]: binds a local actor to a name on a [ServerTransport]
//   - [Transport]: abstracts the underlying messaging infrastructure
//
// # Server Usage
//
// Register typed handlers in a [Mux] and expose an actor under a name:
//
//	mux := remote.NewMux(
//	    remote.Handle(func(ctx context.Context, s *Store, q GetQuery) (GetReply, error) {
//	        v, ok := s.items[q.Key]
//	        return GetReply{Value: v, Found: ok}, nil
//	    }),
//	    remote.HandleMsg(func(ctx context.Context, s *Store, c PutCmd) error {
//	        s.items[c.Key] = c.Value
//	        return nil
//	    }),
//	)
//
//	store, err := actor.Spawn(&Store{items: map[string]string{}}, actor.Options{})
//	sub, err := remote.Expose(ctx, transport, "store", store, mux, remote.ExposeOptions{})
//
// Handlers run on the actor goroutine with exclusive state access, exactly
// like local calls. Message types are matched by their encoded type name,
// derived via reflection or overridden with [WithMessageType].
//
// # Client Usage
//
//	client, err := remote.NewClient(remote.ClientOptions{Transport: transport})
//
//	store := client.Actor("store")
//	err = store.Notify(ctx, PutCmd{Key: "a", Value: "1"})
//
//	get := remote.NewRequest[GetQuery, GetReply](store)
//	reply, err := get.Request(ctx, GetQuery{Key: "a"})
//
// # Envelope
//
// Messages travel as an [Envelope] carrying the actor name, the message
// type, the encoded payload, optional headers ([WithHeader]) and an
// optional time-to-live ([WithTTL]). Expired envelopes are rejected on the
// receiving side with [ErrEnvelopeExpired]; a TTL also bounds the handler's
// context deadline.
//
// # Transports
//
// [MemTransport] is an in-process loopback used in tests and single-binary
// setups. Production transports implement [ClientTransport] and
// [ServerTransport] over a broker.
package remote
