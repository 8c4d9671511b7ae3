package events

import (
	"time"

	"github.com/scenetalk/runtime/types"
)

// EventType identifies the kind of runtime event.
type EventType string

// Camera lifecycle events.
const (
	EventCameraPermission EventType = "camera.permission"
	EventCameraStarted    EventType = "camera.started"
	EventCameraStopped    EventType = "camera.stopped"
	EventCameraError      EventType = "camera.error"
	EventFrameCaptured    EventType = "camera.frame_captured"
)

// Analysis lifecycle events.
const (
	EventAnalysisStarted   EventType = "analysis.started"
	EventAnalysisCompleted EventType = "analysis.completed"
	EventAnalysisFailed    EventType = "analysis.failed"
	EventAnalysisDropped   EventType = "analysis.dropped"
)

// Speech output events.
const (
	EventSpeechStarted   EventType = "speech.started"
	EventSpeechCancelled EventType = "speech.cancelled"
)

// AnalysisKind distinguishes user-asked questions from unprompted
// scene-summary turns.
type AnalysisKind string

const (
	AnalysisQuestion AnalysisKind = "question"
	AnalysisScene    AnalysisKind = "scene"
)

// EventData is the type-specific payload attached to an Event.
type EventData any

// Event is a single runtime observability event.
type Event struct {
	Type      EventType
	Timestamp time.Time
	SessionID string
	Data      EventData
}

// CameraPermissionData is attached to camera.permission events.
type CameraPermissionData struct {
	Granted bool
}

// CameraStartedData is attached to camera.started events.
type CameraStartedData struct {
	Facing types.FacingMode
}

// CameraStoppedData is attached to camera.stopped events.
type CameraStoppedData struct{}

// CameraErrorData is attached to camera.error events.
type CameraErrorData struct {
	Code    types.ErrorCode
	Message string
}

// FrameCapturedData is attached to camera.frame_captured events.
type FrameCapturedData struct {
	SizeBytes int
}

// AnalysisStartedData is attached to analysis.started events.
type AnalysisStartedData struct {
	Kind     AnalysisKind
	HasImage bool
}

// AnalysisCompletedData is attached to analysis.completed events.
type AnalysisCompletedData struct {
	Kind        AnalysisKind
	Duration    time.Duration
	AnswerChars int
}

// AnalysisFailedData is attached to analysis.failed events.
type AnalysisFailedData struct {
	Kind     AnalysisKind
	Duration time.Duration
	Error    error
}

// AnalysisDroppedData is attached to analysis.dropped events.
// Reason is "busy" for single-flight rejections and "superseded" for
// results discarded by a generation mismatch.
type AnalysisDroppedData struct {
	Kind   AnalysisKind
	Reason string
}

// SpeechStartedData is attached to speech.started events.
type SpeechStartedData struct {
	Chars int
}

// SpeechCancelledData is attached to speech.cancelled events.
type SpeechCancelledData struct{}
