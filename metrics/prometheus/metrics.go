// Package prometheus provides Prometheus metrics for the runtime.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "scenetalk"

var (
	// cameraStartsTotal counts acquisitions that reached the active phase.
	cameraStartsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "camera_starts_total",
			Help:      "Total number of camera streams that reached the active phase",
		},
	)

	// cameraStopsTotal counts released camera streams.
	cameraStopsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "camera_stops_total",
			Help:      "Total number of camera streams released",
		},
	)

	// cameraErrorsTotal counts terminal camera errors by classification.
	cameraErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "camera_errors_total",
			Help:      "Total number of terminal camera errors by code",
		},
		[]string{"code"},
	)

	// framesCapturedTotal counts successful still-frame captures.
	framesCapturedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_captured_total",
			Help:      "Total number of still frames captured",
		},
	)

	// analysisTotal counts analysis turns by kind and outcome.
	analysisTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_total",
			Help:      "Total number of analysis turns by kind and status",
		},
		[]string{"kind", "status"}, // status: success, error, dropped
	)

	// analysisDuration is a histogram of collaborator call duration.
	analysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Histogram of vision collaborator call duration in seconds",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"kind", "status"},
	)

	// speechUtterancesTotal counts started utterances.
	speechUtterancesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "speech_utterances_total",
			Help:      "Total number of speech utterances started",
		},
	)

	// speechCancellationsTotal counts cancelled utterances.
	speechCancellationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "speech_cancellations_total",
			Help:      "Total number of speech utterances cancelled",
		},
	)
)

// allMetrics lists every collector for registration.
var allMetrics = []prometheus.Collector{
	cameraStartsTotal,
	cameraStopsTotal,
	cameraErrorsTotal,
	framesCapturedTotal,
	analysisTotal,
	analysisDuration,
	speechUtterancesTotal,
	speechCancellationsTotal,
}

// RecordCameraStart records a camera stream reaching the active phase.
func RecordCameraStart() {
	cameraStartsTotal.Inc()
}

// RecordCameraStop records a camera stream release.
func RecordCameraStop() {
	cameraStopsTotal.Inc()
}

// RecordCameraError records a terminal camera error.
func RecordCameraError(code string) {
	cameraErrorsTotal.WithLabelValues(code).Inc()
}

// RecordFrameCaptured records a successful still-frame capture.
func RecordFrameCaptured() {
	framesCapturedTotal.Inc()
}

// RecordAnalysis records an analysis turn outcome with its duration.
func RecordAnalysis(kind, status string, durationSeconds float64) {
	analysisTotal.WithLabelValues(kind, status).Inc()
	analysisDuration.WithLabelValues(kind, status).Observe(durationSeconds)
}

// RecordAnalysisDropped records a rejected or discarded analysis turn.
func RecordAnalysisDropped(kind string) {
	analysisTotal.WithLabelValues(kind, statusDropped).Inc()
}

// RecordSpeechStart records a started utterance.
func RecordSpeechStart() {
	speechUtterancesTotal.Inc()
}

// RecordSpeechCancel records a cancelled utterance.
func RecordSpeechCancel() {
	speechCancellationsTotal.Inc()
}
