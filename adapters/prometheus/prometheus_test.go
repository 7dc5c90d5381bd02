package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewActorMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewActorMetrics(reg)

	require.NotNil(t, m)

	// Test lifecycle
	m.ActorSpawned()
	m.ActorSpawned()
	m.ActorStopped()

	// Test envelope handling
	timer := m.EnvelopeDuration()
	assert.NotNil(t, timer)
	timer.ObserveDuration()

	m.EnvelopeProcessed(true)
	m.EnvelopeProcessed(false)
	m.EnvelopePanic()

	// Test mailbox
	m.MailboxDepth("actor-123", 10)

	// Test scheduler
	m.TasksInflight("actor-123", 5)

	timer = m.TaskDuration()
	assert.NotNil(t, timer)
	timer.ObserveDuration()

	m.TaskCompleted(true)
	m.TaskCompleted(false)

	// Verify metrics were registered
	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)

	names := make(map[string]bool)
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}

	assert.True(t, names["actr_actor_active"])
	assert.True(t, names["actr_actor_envelope_duration_seconds"])
	assert.True(t, names["actr_actor_envelopes_total"])
	assert.True(t, names["actr_actor_mailbox_depth"])
}

func TestNewRemoteMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRemoteMetrics(reg)

	require.NotNil(t, m)

	// Test client operations
	timer := m.RequestDuration("GetUser")
	assert.NotNil(t, timer)
	timer.ObserveDuration()

	m.RequestCompleted("GetUser", true)
	m.RequestCompleted("GetUser", false)
	m.NotifyCompleted("UserUpdated", true)

	// Test transport errors
	m.TransportError("no_subscriber")
	m.TransportError("ttl_expired")

	// Test handler operations
	timer = m.HandlerDuration("GetUser")
	assert.NotNil(t, timer)
	timer.ObserveDuration()

	m.HandlerCompleted("GetUser", true)

	// Test exposure gauge
	m.ActorExposed("store", 1)
	m.ActorExposed("store", 0)

	// Verify metrics were registered
	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)

	names := make(map[string]bool)
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}

	assert.True(t, names["actr_remote_request_duration_seconds"])
	assert.True(t, names["actr_remote_transport_errors_total"])
	assert.True(t, names["actr_remote_actors_exposed"])
}

func TestNewAllMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAllMetrics(reg)

	require.NotNil(t, m)
	require.NotNil(t, m.Actor)
	require.NotNil(t, m.Remote)

	// All metrics should be usable
	m.Actor.EnvelopeProcessed(true)
	m.Remote.RequestCompleted("test", true)

	// Verify all metric families registered
	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestBoolToStr(t *testing.T) {
	assert.Equal(t, "true", boolToStr(true))
	assert.Equal(t, "false", boolToStr(false))
}
