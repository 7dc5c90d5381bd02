// Package metrics defines the small vendor-neutral instrumentation
// interfaces the runtime records against, so core packages stay decoupled
// from any metrics backend. adapters/prometheus provides a real
// implementation; the Nop constructors are the default everywhere.
package metrics

// Counter is a monotonically increasing metric.
type Counter interface {
	// Inc increments the counter by 1.
	Inc()
	// Add increments the counter by delta. delta must be >= 0.
	Add(delta float64)
}

// Gauge is a metric that can go up and down.
type Gauge interface {
	// Set sets the gauge to value.
	Set(value float64)
	// Inc increments the gauge by 1.
	Inc()
	// Dec decrements the gauge by 1.
	Dec()
}

// Timer measures one operation. Create it when the operation starts and
// call ObserveDuration when it completes to record the elapsed time.
type Timer interface {
	ObserveDuration()
}

// TimerFunc is a function that creates a new Timer. It allows the deferred
// timing pattern: defer m.EnvelopeDuration().ObserveDuration()
type TimerFunc func() Timer
