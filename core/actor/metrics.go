package actor

import "github.com/codewandler/actr-go/core/metrics"

// ActorMetrics is the instrumentation surface of the runtime. All methods
// are called from actor goroutines and must be thread-safe.
type ActorMetrics interface {
	// Lifecycle
	ActorSpawned()
	ActorStopped()

	// Envelope handling
	EnvelopeDuration() metrics.Timer
	EnvelopeProcessed(success bool)
	EnvelopePanic()

	// Mailbox
	MailboxDepth(actorID string, depth int)

	// Background tasks
	TasksInflight(actorID string, count int)
	TaskDuration() metrics.Timer
	TaskCompleted(success bool)
}

// nopActorMetrics is a no-op implementation of ActorMetrics.
type nopActorMetrics struct{}

func (nopActorMetrics) ActorSpawned() {}
func (nopActorMetrics) ActorStopped() {}

func (nopActorMetrics) EnvelopeDuration() metrics.Timer { return metrics.NopTimer() }
func (nopActorMetrics) EnvelopeProcessed(bool)          {}
func (nopActorMetrics) EnvelopePanic()                  {}

func (nopActorMetrics) MailboxDepth(string, int) {}

func (nopActorMetrics) TasksInflight(string, int)   {}
func (nopActorMetrics) TaskDuration() metrics.Timer { return metrics.NopTimer() }
func (nopActorMetrics) TaskCompleted(bool)          {}

// NopActorMetrics returns a no-op ActorMetrics implementation.
func NopActorMetrics() ActorMetrics { return nopActorMetrics{} }
