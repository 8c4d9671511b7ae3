package camera

import (
	"errors"

	"github.com/scenetalk/runtime/types"
)

// Hardware error sentinels. MediaDevice implementations wrap their platform
// failures with these so the session can classify them.
var (
	// ErrNotAllowed indicates the user or platform denied camera access.
	ErrNotAllowed = errors.New("camera access not allowed")

	// ErrNotFound indicates no camera device is present.
	ErrNotFound = errors.New("no camera device found")

	// ErrDeviceInUse indicates the camera is held by another application.
	ErrDeviceInUse = errors.New("camera already in use")

	// ErrOverconstrained indicates the requested facing mode cannot be
	// satisfied by any available device.
	ErrOverconstrained = errors.New("camera constraints cannot be satisfied")

	// ErrAborted indicates the acquisition was interrupted by the platform.
	ErrAborted = errors.New("camera acquisition aborted")

	// ErrPlayback indicates the stream was obtained but playback could not
	// start.
	ErrPlayback = errors.New("video playback failed")
)

// Classify maps a hardware error onto the error taxonomy. Unrecognized
// errors classify as aborted.
func Classify(err error) types.ErrorCode {
	switch {
	case errors.Is(err, ErrNotAllowed):
		return types.ErrCodePermissionDenied
	case errors.Is(err, ErrNotFound):
		return types.ErrCodeDeviceNotFound
	case errors.Is(err, ErrDeviceInUse):
		return types.ErrCodeDeviceBusy
	case errors.Is(err, ErrOverconstrained):
		return types.ErrCodeConstraintUnsatisfied
	case errors.Is(err, ErrPlayback):
		return types.ErrCodePlaybackFailed
	default:
		return types.ErrCodeAborted
	}
}
