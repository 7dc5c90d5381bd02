package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/actr-go/core/actor"
	"github.com/codewandler/actr-go/core/metrics"
)

// actorMetrics implements actor.ActorMetrics using Prometheus.
type actorMetrics struct {
	actorsActive          prometheus.Gauge
	actorsSpawnedTotal    prometheus.Counter
	envelopeDuration      prometheus.Histogram
	envelopesTotal        *prometheus.CounterVec
	panicsTotal           prometheus.Counter
	mailboxDepth          *prometheus.GaugeVec
	schedulerInflight     *prometheus.GaugeVec
	schedulerTaskDuration prometheus.Histogram
	schedulerTasksTotal   *prometheus.CounterVec
}

// NewActorMetrics creates a new Prometheus implementation of ActorMetrics.
func NewActorMetrics(reg prometheus.Registerer) actor.ActorMetrics {
	m := &actorMetrics{
		actorsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "actr_actor_active",
			Help: "Number of actors currently running",
		}),

		actorsSpawnedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "actr_actor_spawned_total",
			Help: "Total number of actors spawned",
		}),

		envelopeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "actr_actor_envelope_duration_seconds",
			Help:    "Envelope handling time in seconds",
			Buckets: defaultBuckets,
		}),

		envelopesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "actr_actor_envelopes_total",
			Help: "Total number of envelopes processed",
		}, []string{"success"}),

		panicsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "actr_actor_panics_total",
			Help: "Total number of handler panics",
		}),

		mailboxDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "actr_actor_mailbox_depth",
			Help: "Current mailbox queue depth",
		}, []string{"actor_id"}),

		schedulerInflight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "actr_actor_scheduler_inflight",
			Help: "Number of concurrent scheduled tasks",
		}, []string{"actor_id"}),

		schedulerTaskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "actr_actor_scheduler_task_duration_seconds",
			Help:    "Scheduled task duration in seconds",
			Buckets: defaultBuckets,
		}),

		schedulerTasksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "actr_actor_scheduler_tasks_total",
			Help: "Total number of scheduled tasks completed",
		}, []string{"success"}),
	}

	reg.MustRegister(
		m.actorsActive,
		m.actorsSpawnedTotal,
		m.envelopeDuration,
		m.envelopesTotal,
		m.panicsTotal,
		m.mailboxDepth,
		m.schedulerInflight,
		m.schedulerTaskDuration,
		m.schedulerTasksTotal,
	)

	return m
}

func (m *actorMetrics) ActorSpawned() {
	m.actorsSpawnedTotal.Inc()
	m.actorsActive.Inc()
}

func (m *actorMetrics) ActorStopped() {
	m.actorsActive.Dec()
}

func (m *actorMetrics) EnvelopeDuration() metrics.Timer {
	return newTimer(m.envelopeDuration)
}

func (m *actorMetrics) EnvelopeProcessed(success bool) {
	m.envelopesTotal.WithLabelValues(boolToStr(success)).Inc()
}

func (m *actorMetrics) EnvelopePanic() {
	m.panicsTotal.Inc()
}

func (m *actorMetrics) MailboxDepth(actorID string, depth int) {
	m.mailboxDepth.WithLabelValues(actorID).Set(float64(depth))
}

func (m *actorMetrics) TasksInflight(actorID string, count int) {
	m.schedulerInflight.WithLabelValues(actorID).Set(float64(count))
}

func (m *actorMetrics) TaskDuration() metrics.Timer {
	return newTimer(m.schedulerTaskDuration)
}

func (m *actorMetrics) TaskCompleted(success bool) {
	m.schedulerTasksTotal.WithLabelValues(boolToStr(success)).Inc()
}

var _ actor.ActorMetrics = (*actorMetrics)(nil)
