package prometheus

import (
	"github.com/scenetalk/runtime/events"
)

// Status constants for metric labels.
const (
	statusSuccess = "success"
	statusError   = "error"
	statusDropped = "dropped"
)

// MetricsListener records runtime events as Prometheus metrics.
// It implements the events.Listener signature and should be registered
// with an EventBus using SubscribeAll.
type MetricsListener struct{}

// NewMetricsListener creates a new MetricsListener.
func NewMetricsListener() *MetricsListener {
	return &MetricsListener{}
}

// Handle processes an event and records relevant metrics.
// This method is designed to be used with EventBus.SubscribeAll.
func (l *MetricsListener) Handle(event *events.Event) {
	switch event.Type {
	case events.EventCameraStarted:
		RecordCameraStart()
	case events.EventCameraStopped:
		RecordCameraStop()
	case events.EventCameraError:
		l.handleCameraError(event)
	case events.EventFrameCaptured:
		RecordFrameCaptured()
	case events.EventAnalysisCompleted:
		l.handleAnalysisCompleted(event)
	case events.EventAnalysisFailed:
		l.handleAnalysisFailed(event)
	case events.EventAnalysisDropped:
		l.handleAnalysisDropped(event)
	case events.EventSpeechStarted:
		RecordSpeechStart()
	case events.EventSpeechCancelled:
		RecordSpeechCancel()
	default:
		// Ignore events that don't have metrics
	}
}

func (l *MetricsListener) handleCameraError(event *events.Event) {
	if data, ok := event.Data.(events.CameraErrorData); ok {
		RecordCameraError(string(data.Code))
	}
}

func (l *MetricsListener) handleAnalysisCompleted(event *events.Event) {
	if data, ok := event.Data.(events.AnalysisCompletedData); ok {
		RecordAnalysis(string(data.Kind), statusSuccess, data.Duration.Seconds())
	}
}

func (l *MetricsListener) handleAnalysisFailed(event *events.Event) {
	if data, ok := event.Data.(events.AnalysisFailedData); ok {
		RecordAnalysis(string(data.Kind), statusError, data.Duration.Seconds())
	}
}

func (l *MetricsListener) handleAnalysisDropped(event *events.Event) {
	if data, ok := event.Data.(events.AnalysisDroppedData); ok {
		RecordAnalysisDropped(string(data.Kind))
	}
}
