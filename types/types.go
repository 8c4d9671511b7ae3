// Package types defines the canonical data model shared across the runtime:
// chat messages, camera lifecycle enums, and the error taxonomy.
package types

import "time"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// FacingMode selects which physical lens a camera stream should prefer.
type FacingMode string

const (
	FacingFront FacingMode = "front"
	FacingBack  FacingMode = "back"
)

// Opposite returns the other lens.
func (f FacingMode) Opposite() FacingMode {
	if f == FacingFront {
		return FacingBack
	}
	return FacingFront
}

// Valid reports whether f is a known facing mode.
func (f FacingMode) Valid() bool {
	return f == FacingFront || f == FacingBack
}

// Permission is the result of the last camera permission probe.
type Permission string

const (
	PermissionUnknown Permission = "unknown"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Phase identifies where a camera session is in its lifecycle.
type Phase string

const (
	PhaseIdle               Phase = "idle"
	PhaseCheckingPermission Phase = "checking_permission"
	PhaseAcquiring          Phase = "acquiring"
	PhaseActive             Phase = "active"
	PhaseSwitchingMode      Phase = "switching_mode"
	PhaseReleasing          Phase = "releasing"
	PhaseError              Phase = "error"
)

// ChatMessage is a single entry in the conversation transcript.
//
// Messages are append-only. The single permitted late mutation is attaching
// an Image to the most recent user message after an asynchronous capture
// resolves (see history.Store.BackfillImage).
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Image     []byte    `json:"image,omitempty"`
	IsError   bool      `json:"is_error,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// HistoryEntry is the role+text projection of a ChatMessage that is sent to
// the vision collaborator. Images are excluded to bound payload size.
type HistoryEntry struct {
	Role string `json:"role"`
	Text string `json:"text"`
}
