package camera

import (
	"context"

	"github.com/scenetalk/runtime/capture"
	"github.com/scenetalk/runtime/types"
)

// MediaDevice abstracts the platform camera service.
type MediaDevice interface {
	// GetUserMedia requests a hardware stream preferring the given facing
	// mode. A denied permission surfaces as an error here; it is
	// indistinguishable from a missing camera except by classification.
	GetUserMedia(ctx context.Context, facing types.FacingMode) (StreamHandle, error)
}

// StreamHandle is a live hardware stream. It is exclusively owned by the
// Session that acquired it; no other component may stop its tracks.
type StreamHandle interface {
	// Play binds the stream to its renderable surface and starts playback.
	Play(ctx context.Context) error

	// Surface returns the renderable surface backed by this stream.
	Surface() capture.Surface

	// StopAllTracks stops every track on this handle. It is idempotent.
	StopAllTracks()
}
