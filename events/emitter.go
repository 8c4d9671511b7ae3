package events

import (
	"time"

	"github.com/scenetalk/runtime/types"
)

// Emitter provides helpers for publishing runtime events with shared metadata.
// A nil Emitter is valid and drops every event.
type Emitter struct {
	bus       *EventBus
	sessionID string
}

// NewEmitter creates a new event emitter.
func NewEmitter(bus *EventBus, sessionID string) *Emitter {
	return &Emitter{
		bus:       bus,
		sessionID: sessionID,
	}
}

// emit publishes an event with shared context fields.
func (e *Emitter) emit(eventType EventType, data EventData) {
	if e == nil || e.bus == nil {
		return
	}

	event := &Event{
		Type:      eventType,
		Timestamp: time.Now(),
		SessionID: e.sessionID,
		Data:      data,
	}

	e.bus.Publish(event)
}

// PermissionResolved emits the camera.permission event.
func (e *Emitter) PermissionResolved(granted bool) {
	e.emit(EventCameraPermission, CameraPermissionData{Granted: granted})
}

// CameraStarted emits the camera.started event.
func (e *Emitter) CameraStarted(facing types.FacingMode) {
	e.emit(EventCameraStarted, CameraStartedData{Facing: facing})
}

// CameraStopped emits the camera.stopped event.
func (e *Emitter) CameraStopped() {
	e.emit(EventCameraStopped, CameraStoppedData{})
}

// CameraError emits the camera.error event.
func (e *Emitter) CameraError(code types.ErrorCode, message string) {
	e.emit(EventCameraError, CameraErrorData{Code: code, Message: message})
}

// FrameCaptured emits the camera.frame_captured event.
func (e *Emitter) FrameCaptured(sizeBytes int) {
	e.emit(EventFrameCaptured, FrameCapturedData{SizeBytes: sizeBytes})
}

// AnalysisStarted emits the analysis.started event.
func (e *Emitter) AnalysisStarted(kind AnalysisKind, hasImage bool) {
	e.emit(EventAnalysisStarted, AnalysisStartedData{Kind: kind, HasImage: hasImage})
}

// AnalysisCompleted emits the analysis.completed event.
func (e *Emitter) AnalysisCompleted(kind AnalysisKind, duration time.Duration, answerChars int) {
	e.emit(EventAnalysisCompleted, AnalysisCompletedData{
		Kind:        kind,
		Duration:    duration,
		AnswerChars: answerChars,
	})
}

// AnalysisFailed emits the analysis.failed event.
func (e *Emitter) AnalysisFailed(kind AnalysisKind, duration time.Duration, err error) {
	e.emit(EventAnalysisFailed, AnalysisFailedData{Kind: kind, Duration: duration, Error: err})
}

// AnalysisDropped emits the analysis.dropped event.
func (e *Emitter) AnalysisDropped(kind AnalysisKind, reason string) {
	e.emit(EventAnalysisDropped, AnalysisDroppedData{Kind: kind, Reason: reason})
}

// SpeechStarted emits the speech.started event.
func (e *Emitter) SpeechStarted(chars int) {
	e.emit(EventSpeechStarted, SpeechStartedData{Chars: chars})
}

// SpeechCancelled emits the speech.cancelled event.
func (e *Emitter) SpeechCancelled() {
	e.emit(EventSpeechCancelled, SpeechCancelledData{})
}
