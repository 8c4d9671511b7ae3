// Package history stores the conversation transcript.
//
// The transcript is append-only with a single documented exception:
// BackfillImage may attach an image to the most recent user message after
// an asynchronous capture resolves, so the turn that was answered from a
// frame keeps that frame.
package history

import (
	"context"
	"errors"

	"github.com/scenetalk/runtime/types"
)

// Common store errors.
var (
	// ErrInvalidMessage is returned when appending a message without an ID or role.
	ErrInvalidMessage = errors.New("invalid message")
)

// Store defines the interface for conversation transcript storage.
type Store interface {
	// Append adds a message to the end of the transcript.
	Append(ctx context.Context, msg types.ChatMessage) error

	// Messages returns every message in conversation order.
	Messages(ctx context.Context) ([]types.ChatMessage, error)

	// Snapshot returns the role+text projection of the transcript, in
	// order, for threading into a collaborator call. Images are excluded.
	Snapshot(ctx context.Context) ([]types.HistoryEntry, error)

	// LastImage returns the most recent image anywhere in the transcript,
	// or nil if no message carries one.
	LastImage(ctx context.Context) ([]byte, error)

	// BackfillImage attaches image to the most recent user message that
	// does not already carry one. It is a no-op when no such message
	// exists. This is the single permitted mutation of an appended message.
	BackfillImage(ctx context.Context, image []byte) error

	// Clear removes every message.
	Clear(ctx context.Context) error
}

// cloneMessage returns a deep copy so callers cannot mutate stored state.
func cloneMessage(msg types.ChatMessage) types.ChatMessage {
	out := msg
	if msg.Image != nil {
		out.Image = make([]byte, len(msg.Image))
		copy(out.Image, msg.Image)
	}
	return out
}
