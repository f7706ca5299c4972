// Package metrics exposes Prometheus collectors for mood ticks, sessions and
// the token relay.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "moodbooth"

var (
	ticksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Mood ticks processed",
		},
		[]string{"outcome"}, // outcome: detected, empty
	)

	calculatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculated_mood_total",
			Help:      "Instantaneous moods produced by fusion",
		},
		[]string{"mood"},
	)

	transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mood_transitions_total",
			Help:      "Accepted mood transitions",
		},
		[]string{"mood"},
	)

	sfxTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sfx_total",
			Help:      "Sound effects spotted in transcripts",
		},
		[]string{"tag"},
	)

	tickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Time spent sampling collaborators and running one tick",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Open mood sessions",
		},
	)

	tokenRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_requests_total",
			Help:      "Scribe token relay requests",
		},
		[]string{"status"}, // status: ok, limited, error
	)

	collaboratorErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_errors_total",
			Help:      "Failed calls to the detector, scorer or transcript source",
		},
		[]string{"collaborator"},
	)
)

var all = []prometheus.Collector{
	ticksTotal,
	calculatedTotal,
	transitionsTotal,
	sfxTotal,
	tickDuration,
	sessionsActive,
	tokenRequestsTotal,
	collaboratorErrorsTotal,
}

// Register adds every collector to reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range all {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RecordTick counts one tick. detected is false when no face was in frame.
func RecordTick(detected bool, calculated string, seconds float64) {
	if detected {
		ticksTotal.WithLabelValues("detected").Inc()
		calculatedTotal.WithLabelValues(calculated).Inc()
	} else {
		ticksTotal.WithLabelValues("empty").Inc()
	}
	tickDuration.Observe(seconds)
}

func RecordTransition(mood string) {
	transitionsTotal.WithLabelValues(mood).Inc()
}

func RecordSfx(tag string) {
	sfxTotal.WithLabelValues(tag).Inc()
}

func SessionOpened() { sessionsActive.Inc() }

func SessionClosed() { sessionsActive.Dec() }

func RecordTokenRequest(status string) {
	tokenRequestsTotal.WithLabelValues(status).Inc()
}

func RecordCollaboratorError(collaborator string) {
	collaboratorErrorsTotal.WithLabelValues(collaborator).Inc()
}
