package remote

import "github.com/codewandler/actr-go/core/metrics"

// RemoteMetrics defines the metrics interface for remote messaging.
// All methods are thread-safe.
type RemoteMetrics interface {
	// Client operations
	RequestDuration(msgType string) metrics.Timer
	RequestCompleted(msgType string, success bool)
	NotifyCompleted(msgType string, success bool)

	// Transport errors: no_subscriber, ttl_expired, closed
	TransportError(errorType string)

	// Handler operations
	HandlerDuration(msgType string) metrics.Timer
	HandlerCompleted(msgType string, success bool)
	ActorExposed(name string, count int)
}

// nopRemoteMetrics is a no-op implementation of RemoteMetrics.
type nopRemoteMetrics struct{}

func (nopRemoteMetrics) RequestDuration(string) metrics.Timer { return metrics.NopTimer() }
func (nopRemoteMetrics) RequestCompleted(string, bool)        {}
func (nopRemoteMetrics) NotifyCompleted(string, bool)         {}

func (nopRemoteMetrics) TransportError(string) {}

func (nopRemoteMetrics) HandlerDuration(string) metrics.Timer { return metrics.NopTimer() }
func (nopRemoteMetrics) HandlerCompleted(string, bool)        {}
func (nopRemoteMetrics) ActorExposed(string, int)             {}

// NopRemoteMetrics returns a no-op RemoteMetrics implementation.
func NopRemoteMetrics() RemoteMetrics { return nopRemoteMetrics{} }
