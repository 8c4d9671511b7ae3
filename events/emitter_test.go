package events

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/scenetalk/runtime/types"
)

func TestEmitterAttachesSessionMetadata(t *testing.T) {
	t.Parallel()

	bus := NewEventBus()
	emitter := NewEmitter(bus, "session-42")

	var mu sync.Mutex
	var got *Event
	var wg sync.WaitGroup
	wg.Add(1)

	bus.Subscribe(EventCameraStarted, func(e *Event) {
		mu.Lock()
		got = e
		mu.Unlock()
		wg.Done()
	})

	emitter.CameraStarted(types.FacingFront)

	if !waitForWG(&wg, 200*time.Millisecond) {
		t.Fatal("timed out waiting for event")
	}

	mu.Lock()
	defer mu.Unlock()
	if got.SessionID != "session-42" {
		t.Errorf("expected session-42, got %q", got.SessionID)
	}
	if got.Timestamp.IsZero() {
		t.Error("expected a timestamp")
	}
	data, ok := got.Data.(CameraStartedData)
	if !ok {
		t.Fatalf("unexpected data type %T", got.Data)
	}
	if data.Facing != types.FacingFront {
		t.Errorf("expected front, got %q", data.Facing)
	}
}

func TestEmitterAnalysisPayloads(t *testing.T) {
	t.Parallel()

	bus := NewEventBus()
	emitter := NewEmitter(bus, "s")

	var mu sync.Mutex
	events := make(map[EventType]*Event)
	var wg sync.WaitGroup
	wg.Add(3)

	bus.SubscribeAll(func(e *Event) {
		mu.Lock()
		events[e.Type] = e
		mu.Unlock()
		wg.Done()
	})

	emitter.AnalysisCompleted(AnalysisQuestion, 250*time.Millisecond, 42)
	emitter.AnalysisFailed(AnalysisScene, time.Second, errors.New("timeout"))
	emitter.AnalysisDropped(AnalysisQuestion, "busy")

	if !waitForWG(&wg, 200*time.Millisecond) {
		t.Fatal("timed out waiting for events")
	}

	mu.Lock()
	defer mu.Unlock()

	completed := events[EventAnalysisCompleted].Data.(AnalysisCompletedData)
	if completed.Kind != AnalysisQuestion || completed.AnswerChars != 42 {
		t.Errorf("unexpected completed payload: %+v", completed)
	}

	failed := events[EventAnalysisFailed].Data.(AnalysisFailedData)
	if failed.Error == nil || failed.Kind != AnalysisScene {
		t.Errorf("unexpected failed payload: %+v", failed)
	}

	dropped := events[EventAnalysisDropped].Data.(AnalysisDroppedData)
	if dropped.Reason != "busy" {
		t.Errorf("unexpected dropped payload: %+v", dropped)
	}
}

func TestEmitterNilSafe(t *testing.T) {
	t.Parallel()

	var emitter *Emitter
	emitter.CameraStarted(types.FacingBack)
	emitter.CameraStopped()
	emitter.CameraError(types.ErrCodeAborted, "boom")
	emitter.AnalysisDropped(AnalysisScene, "busy")
	emitter.SpeechCancelled()

	// Emitter with no bus is also a no-op.
	NewEmitter(nil, "s").FrameCaptured(10)
}
