package speech

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenetalk/runtime/events"
)

type stubSynthesizer struct {
	mu    sync.Mutex
	texts []string
	err   error

	// block, when non-nil, holds Synthesize until cancelled or released.
	block chan struct{}
}

func (s *stubSynthesizer) Name() string { return "stub" }

func (s *stubSynthesizer) Synthesize(ctx context.Context, text string, _ SynthesisConfig) (io.ReadCloser, error) {
	s.mu.Lock()
	s.texts = append(s.texts, text)
	s.mu.Unlock()

	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader("audio:" + text)), nil
}

func (s *stubSynthesizer) synthesized() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.texts))
	copy(out, s.texts)
	return out
}

type stubPlayer struct {
	mu     sync.Mutex
	played []string
}

func (p *stubPlayer) Play(ctx context.Context, audio io.Reader) error {
	data, err := io.ReadAll(audio)
	if err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	p.mu.Lock()
	p.played = append(p.played, string(data))
	p.mu.Unlock()
	return nil
}

func (p *stubPlayer) playedAll() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.played))
	copy(out, p.played)
	return out
}

func TestOutput_SpeakAndPlay(t *testing.T) {
	synth := &stubSynthesizer{}
	player := &stubPlayer{}
	o := NewOutput(synth, player, DefaultSynthesisConfig(), nil)

	o.Speak("hello there")
	o.Close()

	assert.Equal(t, []string{"hello there"}, synth.synthesized())
	assert.Equal(t, []string{"audio:hello there"}, player.playedAll())
}

func TestOutput_EmptyTextNoop(t *testing.T) {
	synth := &stubSynthesizer{}
	o := NewOutput(synth, &stubPlayer{}, DefaultSynthesisConfig(), nil)

	o.Speak("")
	o.Close()

	assert.Empty(t, synth.synthesized())
}

func TestOutput_NewUtteranceCancelsPrevious(t *testing.T) {
	synth := &stubSynthesizer{block: make(chan struct{})}
	player := &stubPlayer{}
	o := NewOutput(synth, player, DefaultSynthesisConfig(), nil)

	o.Speak("first")
	// The first synthesis is blocked; the second cancels it.
	for len(synth.synthesized()) == 0 {
		time.Sleep(time.Millisecond)
	}
	o.Speak("second")
	close(synth.block)
	o.Close()

	require.Equal(t, []string{"first", "second"}, synth.synthesized())
	// Only the second utterance reaches the player.
	assert.Equal(t, []string{"audio:second"}, player.playedAll())
}

func TestOutput_CancelAll(t *testing.T) {
	synth := &stubSynthesizer{block: make(chan struct{})}
	player := &stubPlayer{}
	o := NewOutput(synth, player, DefaultSynthesisConfig(), nil)

	o.Speak("doomed")
	for len(synth.synthesized()) == 0 {
		time.Sleep(time.Millisecond)
	}
	o.CancelAll()
	o.Close()

	assert.Empty(t, player.playedAll())

	// Idempotent on an idle output.
	o.CancelAll()
}

func TestOutput_SynthesisFailureSwallowed(t *testing.T) {
	synth := &stubSynthesizer{err: errors.New("backend down")}
	player := &stubPlayer{}
	o := NewOutput(synth, player, DefaultSynthesisConfig(), nil)

	o.Speak("hello")
	o.Close()

	assert.Empty(t, player.playedAll())
}

func TestOutput_NilSynthesizerNoop(t *testing.T) {
	o := NewOutput(nil, &stubPlayer{}, DefaultSynthesisConfig(), nil)
	o.Speak("hello")
	o.Close()
}

func TestOutput_NilPlayerDiscardsAudio(t *testing.T) {
	synth := &stubSynthesizer{}
	o := NewOutput(synth, nil, DefaultSynthesisConfig(), nil)

	o.Speak("hello")
	o.Close()

	assert.Equal(t, []string{"hello"}, synth.synthesized())
}

// waitIdle waits for the in-flight utterance to finish and release its
// cancel slot.
func waitIdle(t *testing.T, o *Output) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		o.mu.Lock()
		idle := o.cancel == nil
		o.mu.Unlock()
		if idle {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("utterance did not finish")
}

func TestOutput_FinishedUtteranceNotCancelled(t *testing.T) {
	synth := &stubSynthesizer{}
	player := &stubPlayer{}

	bus := events.NewEventBus()
	var cancelled atomic.Int32
	bus.Subscribe(events.EventSpeechCancelled, func(*events.Event) {
		cancelled.Add(1)
	})
	o := NewOutput(synth, player, DefaultSynthesisConfig(), events.NewEmitter(bus, "test-session"))

	o.Speak("first")
	waitIdle(t, o)
	// The previous utterance finished on its own; speaking again must
	// not report a cancellation.
	o.Speak("second")
	waitIdle(t, o)
	o.CancelAll()
	o.Close()

	assert.Equal(t, []string{"audio:first", "audio:second"}, player.playedAll())

	// Event delivery is asynchronous; give a stray one time to arrive.
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, cancelled.Load())
}

func TestOutput_SpeakAfterCloseNoop(t *testing.T) {
	synth := &stubSynthesizer{}
	o := NewOutput(synth, &stubPlayer{}, DefaultSynthesisConfig(), nil)

	o.Close()
	o.Speak("too late")
	o.Close()

	assert.Empty(t, synth.synthesized())
}

func TestSynthesisError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewSynthesisError("stub", "request failed", cause, true)

	assert.Equal(t, "stub: request failed: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, err.Retryable)

	bare := NewSynthesisError("stub", "bad voice", nil, false)
	assert.Equal(t, "stub: bad voice", bare.Error())
}
