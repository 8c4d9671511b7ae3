package speech

import (
	"context"
	"errors"
	"sync"

	"github.com/scenetalk/runtime/events"
	"github.com/scenetalk/runtime/logger"
)

// Output is the single speech resource. Only one utterance may play at a
// time; a new Speak cancels the previous utterance unconditionally
// (last-answer-wins). Speak is fire-and-forget: synthesis and playback
// failures are logged, never surfaced to the caller.
type Output struct {
	synth   Synthesizer
	player  Player
	config  SynthesisConfig
	emitter *events.Emitter

	mu     sync.Mutex
	cancel context.CancelFunc
	gen    uint64
	closed bool
	wg     sync.WaitGroup
}

// NewOutput creates the speech output resource.
func NewOutput(synth Synthesizer, player Player, config SynthesisConfig, emitter *events.Emitter) *Output {
	return &Output{
		synth:   synth,
		player:  player,
		config:  config,
		emitter: emitter,
	}
}

// Speak synthesizes and plays text, cancelling any utterance already in
// flight. Empty text is a no-op, and so is speaking after Close.
func (o *Output) Speak(text string) {
	if text == "" || o.synth == nil {
		return
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.cancelLocked()
	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel
	o.gen++
	gen := o.gen
	o.wg.Add(1)
	o.mu.Unlock()

	o.emitter.SpeechStarted(len(text))

	go func() {
		defer o.wg.Done()
		defer o.finish(gen, cancel)

		audio, err := o.synth.Synthesize(ctx, text, o.config)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Warn("speech synthesis failed", "provider", o.synth.Name(), "error", err)
			}
			return
		}
		defer func() { _ = audio.Close() }()

		if o.player == nil {
			return
		}
		if err := o.player.Play(ctx, audio); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("speech playback failed", "error", err)
		}
	}()
}

// finish releases the utterance's context and clears the stored cancel,
// unless a newer utterance has already replaced it. Without the
// generation check a finished utterance would leave a spent CancelFunc
// behind, and the next Speak would emit a cancellation for nothing.
func (o *Output) finish(gen uint64, cancel context.CancelFunc) {
	cancel()
	o.mu.Lock()
	if o.gen == gen {
		o.cancel = nil
	}
	o.mu.Unlock()
}

// cancelLocked stops the in-flight utterance, if any. Caller holds o.mu.
func (o *Output) cancelLocked() {
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
		o.emitter.SpeechCancelled()
	}
}

// CancelAll stops the current utterance, if any.
func (o *Output) CancelAll() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancelLocked()
}

// Close cancels any utterance and waits for the playback goroutine to
// exit. The closed flag keeps a concurrent Speak from adding to the
// wait group once Wait has started; Speak after Close is a no-op.
func (o *Output) Close() {
	o.mu.Lock()
	o.closed = true
	o.cancelLocked()
	o.mu.Unlock()
	o.wg.Wait()
}
