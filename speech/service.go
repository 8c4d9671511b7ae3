// Package speech wraps text-to-speech behind a single owned output resource
// with cancel-on-new-utterance semantics.
package speech

import (
	"context"
	"errors"
	"io"
)

// Audio format names.
const (
	FormatMP3 = "mp3"
	FormatPCM = "pcm"
	FormatWAV = "wav"
)

// Common speech errors.
var (
	// ErrEmptyText is returned when attempting to synthesize empty text.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrSynthesisFailed is returned when synthesis fails.
	ErrSynthesisFailed = errors.New("speech synthesis failed")
)

// Synthesizer converts text to speech audio.
// This interface abstracts different TTS backends so the output resource can
// use any provider interchangeably.
type Synthesizer interface {
	// Name returns the provider identifier (for logging/debugging).
	Name() string

	// Synthesize converts text to audio.
	// Returns a reader for streaming audio data.
	// The caller is responsible for closing the reader.
	Synthesize(ctx context.Context, text string, config SynthesisConfig) (io.ReadCloser, error)
}

// Player consumes synthesized audio. Implementations bridge to the platform
// audio output; playback is fire-and-forget from the orchestrator's view.
type Player interface {
	// Play renders the audio stream. It returns when playback finishes or
	// ctx is cancelled.
	Play(ctx context.Context, audio io.Reader) error
}

// SynthesisConfig configures text-to-speech synthesis.
type SynthesisConfig struct {
	// Voice is the voice ID to use for synthesis.
	Voice string

	// Format is the output audio format. Default is MP3.
	Format string

	// Speed is the speech rate multiplier (0.25-4.0, default 1.0).
	Speed float64

	// Language is the language code for synthesis (e.g., "en-US").
	// Optional for most backends.
	Language string
}

// DefaultSynthesisConfig returns sensible defaults for synthesis.
func DefaultSynthesisConfig() SynthesisConfig {
	return SynthesisConfig{
		Format: FormatMP3,
		Speed:  1.0,
	}
}

// SynthesisError provides detailed error information from TTS backends.
type SynthesisError struct {
	// Provider is the backend that returned the error.
	Provider string

	// Message is the error message.
	Message string

	// Cause is the underlying error (if any).
	Cause error

	// Retryable indicates if the error is transient and retry may succeed.
	Retryable bool
}

// Error implements the error interface.
func (e *SynthesisError) Error() string {
	if e.Cause != nil {
		return e.Provider + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Provider + ": " + e.Message
}

// Unwrap returns the underlying error.
func (e *SynthesisError) Unwrap() error {
	return e.Cause
}

// NewSynthesisError creates a new SynthesisError.
func NewSynthesisError(provider, message string, cause error, retryable bool) *SynthesisError {
	return &SynthesisError{
		Provider:  provider,
		Message:   message,
		Cause:     cause,
		Retryable: retryable,
	}
}
