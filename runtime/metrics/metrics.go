// Package metrics exposes Prometheus collectors for the speech synthesizer
// agent. It does not serve them; callers register the collectors against
// whatever registry and HTTP exporter their process already runs.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "speechsynthesizer"

var (
	directiveQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "directive_queue_depth",
			Help:      "Number of Speak directives waiting for activation",
		},
	)

	directivesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "directives_total",
			Help:      "Total number of Speak directives handled, by outcome",
		},
		[]string{"outcome"}, // completed, cancelled, failed
	)

	playbackDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "playback_duration_seconds",
			Help:      "Duration of a single utterance's PLAYING state",
			Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"outcome"}, // finished, error, cancelled
	)

	focusAcquisitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "focus_acquisitions_total",
			Help:      "Total number of foreground focus acquisition attempts",
		},
		[]string{"status"}, // granted, rejected
	)

	eventsEmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_emitted_total",
			Help:      "Total number of outbound events emitted, by event name",
		},
		[]string{"name"},
	)

	allCollectors = []prometheus.Collector{
		directiveQueueDepth,
		directivesTotal,
		playbackDuration,
		focusAcquisitionsTotal,
		eventsEmittedTotal,
	}
)

// Register adds every collector in this package to reg. Safe to call with
// prometheus.DefaultRegisterer or a registry private to a single agent
// instance under test.
func Register(reg prometheus.Registerer) error {
	for _, c := range allCollectors {
		if err := reg.Register(c); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				_ = are
				continue
			}
			return err
		}
	}
	return nil
}

// SetQueueDepth reports the current number of pending (not-yet-activated)
// directives.
func SetQueueDepth(n int) {
	directiveQueueDepth.Set(float64(n))
}

// RecordDirectiveOutcome records the terminal outcome of one directive.
func RecordDirectiveOutcome(outcome string) {
	directivesTotal.WithLabelValues(outcome).Inc()
}

// RecordPlaybackDuration records how long an utterance spent PLAYING.
func RecordPlaybackDuration(outcome string, seconds float64) {
	playbackDuration.WithLabelValues(outcome).Observe(seconds)
}

// RecordFocusAcquisition records the result of a foreground focus request.
func RecordFocusAcquisition(status string) {
	focusAcquisitionsTotal.WithLabelValues(status).Inc()
}

// RecordEventEmitted records one outbound event by name.
func RecordEventEmitted(name string) {
	eventsEmittedTotal.WithLabelValues(name).Inc()
}
