// Package vision defines the external vision-chat collaborator interface.
//
// The collaborator exposes two calls: Query answers a question about an
// optional image with prior conversation context, and Summarize produces an
// unprompted description of a scene. Both are single opaque asynchronous
// request/response operations; no retry policy is imposed here — a failure
// is surfaced to the caller immediately.
package vision

import (
	"context"
	"errors"

	"github.com/scenetalk/runtime/types"
)

// ErrEmptyQuestion is returned when Query is called without a question.
var ErrEmptyQuestion = errors.New("question cannot be empty")

// ErrEmptyImage is returned when Summarize is called without an image.
var ErrEmptyImage = errors.New("image cannot be empty")

// QueryRequest is a question about the current or last-seen scene.
type QueryRequest struct {
	// Question is the user's question text.
	Question string `json:"question"`

	// Image is the frame accompanying this turn, if any.
	Image []byte `json:"image,omitempty"`

	// History is the prior message sequence, role+text only.
	History []types.HistoryEntry `json:"history,omitempty"`
}

// QueryResponse is the collaborator's answer.
type QueryResponse struct {
	Answer string `json:"answer"`
}

// SummarizeRequest asks for an unprompted description of a scene.
type SummarizeRequest struct {
	Image []byte `json:"image"`
}

// SummarizeResponse is the scene description.
type SummarizeResponse struct {
	Summary string `json:"summary"`
}

// Provider is the vision-chat collaborator contract.
type Provider interface {
	// Name returns the provider identifier (for logging/debugging).
	Name() string

	// Query answers a question, optionally grounded on an image and prior
	// conversation history.
	Query(ctx context.Context, req *QueryRequest) (*QueryResponse, error)

	// Summarize describes a scene without a user question.
	Summarize(ctx context.Context, req *SummarizeRequest) (*SummarizeResponse, error)
}
