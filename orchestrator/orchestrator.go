// Package orchestrator turns a live frame plus a user question into exactly
// one in-flight vision call, threads conversation history, and drives speech
// output of the answer.
//
// Concurrency policy: manual asks that arrive while a call is in flight get
// a visible "busy" assistant message and make no collaborator call;
// scheduler-triggered scene analysis is silently dropped. Two calls never
// overlap. Failures are terminal for their turn and are never retried.
package orchestrator

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	"github.com/scenetalk/runtime/events"
	"github.com/scenetalk/runtime/history"
	"github.com/scenetalk/runtime/logger"
	"github.com/scenetalk/runtime/telemetry"
	"github.com/scenetalk/runtime/types"
	"github.com/scenetalk/runtime/vision"
)

const (
	// busyReply is appended for a manual ask while a call is in flight.
	busyReply = "I'm still working on the previous question. Give me a moment."

	// errorNotice is the short spoken message for a failed turn.
	errorNotice = "Sorry, I couldn't analyze that."

	// maxErrorChars bounds the error summary recorded in the transcript.
	maxErrorChars = 200
)

// CameraControl is the narrow capability the orchestrator holds on the
// camera session: read the phase and capture a frame. It deliberately
// exposes no lifecycle mutation.
type CameraControl interface {
	Phase() types.Phase
	CaptureFrame() []byte
}

// Speaker is the speech output resource. Speak cancels any utterance
// already playing.
type Speaker interface {
	Speak(text string)
	CancelAll()
}

// Config configures an Orchestrator.
type Config struct {
	// Camera provides frame capture. Optional; without it every turn uses
	// the history-image fallback.
	Camera CameraControl

	// Provider is the vision collaborator. Required.
	Provider vision.Provider

	// History is the transcript store. Required.
	History history.Store

	// Speech is the speech output resource. Optional.
	Speech Speaker

	// Emitter publishes analysis lifecycle events. Optional.
	Emitter *events.Emitter

	// Tracer traces analysis turns. Defaults to the global OTel tracer.
	Tracer trace.Tracer
}

// Orchestrator owns the conversation and enforces single-flight vision calls.
type Orchestrator struct {
	camera   CameraControl
	provider vision.Provider
	store    history.Store
	speech   Speaker
	emitter  *events.Emitter
	tracer   trace.Tracer

	// sem is the single-flight guard: at most one analysis holds it.
	sem *semaphore.Weighted

	// busy mirrors sem for observation; it is authoritative for nothing.
	busy atomic.Bool

	// gen tags each analysis so a result that resolves after Invalidate
	// (camera stopped, conversation cleared) is discarded.
	gen atomic.Uint64
}

// New creates an Orchestrator.
func New(cfg Config) *Orchestrator {
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = telemetry.Tracer(nil)
	}
	return &Orchestrator{
		camera:   cfg.Camera,
		provider: cfg.Provider,
		store:    cfg.History,
		speech:   cfg.Speech,
		emitter:  cfg.Emitter,
		tracer:   tracer,
		sem:      semaphore.NewWeighted(1),
	}
}

// Busy reports whether an analysis call is in flight.
func (o *Orchestrator) Busy() bool {
	return o.busy.Load()
}

// Invalidate discards the result of any in-flight analysis. The owner calls
// it when the camera stops so a stale answer is not appended against a scene
// that is no longer visible. The underlying call runs to completion; only
// its result is ignored.
func (o *Orchestrator) Invalidate() {
	o.gen.Add(1)
}

// Ask runs one question turn. The user message is appended optimistically
// before anything else; collaborator failures land in the transcript as an
// error-flagged assistant message, so the returned error is non-nil only
// when the transcript store itself fails.
func (o *Orchestrator) Ask(ctx context.Context, question string) error {
	// History threaded to the collaborator is the sequence prior to this
	// turn; the question itself travels in the request.
	prior, err := o.store.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot history: %w", err)
	}

	userMsg := types.ChatMessage{
		ID:        uuid.NewString(),
		Role:      types.RoleUser,
		Text:      question,
		Timestamp: time.Now(),
	}
	if err := o.store.Append(ctx, userMsg); err != nil {
		return fmt.Errorf("append question: %w", err)
	}

	if !o.sem.TryAcquire(1) {
		o.emitter.AnalysisDropped(events.AnalysisQuestion, "busy")
		logger.Debug("question rejected: analysis in flight")
		return o.appendAssistant(ctx, busyReply, false, nil)
	}
	defer o.sem.Release(1)
	o.busy.Store(true)
	defer o.busy.Store(false)

	gen := o.gen.Load()
	image := o.selectImage(ctx)

	ctx, span := o.tracer.Start(ctx, "analysis.question", trace.WithAttributes(
		attribute.Bool("has_image", image != nil),
		attribute.Int("history_len", len(prior)),
	))
	defer span.End()

	o.emitter.AnalysisStarted(events.AnalysisQuestion, image != nil)
	logger.VisionCall(o.provider.Name(), string(events.AnalysisQuestion), image != nil, len(prior))

	start := time.Now()
	resp, err := o.provider.Query(ctx, &vision.QueryRequest{
		Question: question,
		Image:    image,
		History:  prior,
	})
	elapsed := time.Since(start)

	if o.gen.Load() != gen {
		// Superseded while in flight; ignore the result entirely.
		o.emitter.AnalysisDropped(events.AnalysisQuestion, "superseded")
		logger.Debug("discarding stale analysis result", "kind", "question")
		return nil
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		o.emitter.AnalysisFailed(events.AnalysisQuestion, elapsed, err)
		logger.VisionError(o.provider.Name(), string(events.AnalysisQuestion), err)
		if aerr := o.appendAssistant(ctx, truncateError(err), true, nil); aerr != nil {
			return aerr
		}
		o.speak(errorNotice)
		return nil
	}

	o.emitter.AnalysisCompleted(events.AnalysisQuestion, elapsed, len(resp.Answer))
	logger.VisionResponse(o.provider.Name(), string(events.AnalysisQuestion), len(resp.Answer), elapsed.Milliseconds())
	if err := o.appendAssistant(ctx, resp.Answer, false, nil); err != nil {
		return err
	}
	o.speak(resp.Answer)
	return nil
}

// AnalyzeScene runs one unprompted scene-summary turn over frame. It is
// silently dropped while another analysis is in flight. On success the
// assistant message carries the frame so later questions have fresh visual
// context through the history-image fallback. Failures are logged and
// surfaced as events only; unprompted turns never put error messages in
// front of the user.
func (o *Orchestrator) AnalyzeScene(ctx context.Context, frame []byte) error {
	if len(frame) == 0 {
		return nil
	}

	if !o.sem.TryAcquire(1) {
		o.emitter.AnalysisDropped(events.AnalysisScene, "busy")
		return nil
	}
	defer o.sem.Release(1)
	o.busy.Store(true)
	defer o.busy.Store(false)

	gen := o.gen.Load()

	ctx, span := o.tracer.Start(ctx, "analysis.scene")
	defer span.End()

	o.emitter.AnalysisStarted(events.AnalysisScene, true)
	logger.VisionCall(o.provider.Name(), string(events.AnalysisScene), true, 0)

	start := time.Now()
	resp, err := o.provider.Summarize(ctx, &vision.SummarizeRequest{Image: frame})
	elapsed := time.Since(start)

	if o.gen.Load() != gen {
		o.emitter.AnalysisDropped(events.AnalysisScene, "superseded")
		logger.Debug("discarding stale analysis result", "kind", "scene")
		return nil
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "summarize failed")
		o.emitter.AnalysisFailed(events.AnalysisScene, elapsed, err)
		logger.VisionError(o.provider.Name(), string(events.AnalysisScene), err)
		return nil
	}

	o.emitter.AnalysisCompleted(events.AnalysisScene, elapsed, len(resp.Summary))
	logger.VisionResponse(o.provider.Name(), string(events.AnalysisScene), len(resp.Summary), elapsed.Milliseconds())
	if err := o.appendAssistant(ctx, resp.Summary, false, frame); err != nil {
		return err
	}
	o.speak(resp.Summary)
	return nil
}

// selectImage picks the frame accompanying this turn: a live capture when
// the camera is active, otherwise the most recent image already in history
// (so a question can still be answered about the last-seen scene), otherwise
// nothing — the collaborator answers from conversation text alone.
func (o *Orchestrator) selectImage(ctx context.Context) []byte {
	if o.camera != nil && o.camera.Phase() == types.PhaseActive {
		if frame := o.camera.CaptureFrame(); frame != nil {
			// Backfill the optimistically appended user message so the
			// transcript keeps the frame this turn was answered from.
			if err := o.store.BackfillImage(ctx, frame); err != nil {
				logger.Warn("image backfill failed", "error", err)
			}
			return frame
		}
	}

	image, err := o.store.LastImage(ctx)
	if err != nil {
		logger.Warn("history image lookup failed", "error", err)
		return nil
	}
	return image
}

func (o *Orchestrator) appendAssistant(ctx context.Context, text string, isError bool, image []byte) error {
	msg := types.ChatMessage{
		ID:        uuid.NewString(),
		Role:      types.RoleAssistant,
		Text:      text,
		Image:     image,
		IsError:   isError,
		Timestamp: time.Now(),
	}
	if err := o.store.Append(ctx, msg); err != nil {
		return fmt.Errorf("append answer: %w", err)
	}
	return nil
}

func (o *Orchestrator) speak(text string) {
	if o.speech != nil {
		o.speech.Speak(text)
	}
}

func truncateError(err error) string {
	text := err.Error()
	if len(text) <= maxErrorChars {
		return text
	}
	// Back off to a rune boundary so the cut never leaves invalid UTF-8
	// in the transcript.
	cut := maxErrorChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "…"
}
