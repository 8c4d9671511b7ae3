// Package camera owns the hardware stream lifecycle: permission probing,
// acquisition, facing-mode switches, and release.
//
// The session is an explicit state machine driven by a single event-loop
// goroutine. External calls and asynchronous hardware completions are both
// delivered to that loop as queued commands, so every transition — including
// its cleanup — runs serialized. Each acquisition is tagged with a
// monotonically increasing generation id; a completion whose generation no
// longer matches releases its own handle and touches nothing else.
package camera

import (
	"context"
	"fmt"
	"sync"

	"github.com/scenetalk/runtime/capture"
	"github.com/scenetalk/runtime/events"
	"github.com/scenetalk/runtime/logger"
	"github.com/scenetalk/runtime/types"
)

// commandBuffer sizes the event queue. Completions never outnumber the
// in-flight operations that produced them, so a small buffer suffices.
const commandBuffer = 16

// Config configures a Session.
type Config struct {
	// Device is the platform camera service. Required.
	Device MediaDevice

	// Capturer encodes still frames. A default capturer is used when nil.
	Capturer *capture.FrameCapturer

	// Emitter publishes lifecycle events. Optional.
	Emitter *events.Emitter

	// Facing is the initial facing mode. Default: back.
	Facing types.FacingMode
}

// Session owns at most one live camera stream and walks it through the
// lifecycle phases. All exported methods are safe for concurrent use.
type Session struct {
	device   MediaDevice
	capturer *capture.FrameCapturer
	emitter  *events.Emitter

	cmds      chan func()
	closed    chan struct{}
	closeOnce sync.Once
	ctx       context.Context
	cancel    context.CancelFunc

	// Loop-owned state. Only the run loop goroutine may touch these.
	phase      types.Phase
	permission types.Permission
	probed     bool
	desired    bool
	facing     types.FacingMode
	handle     StreamHandle
	gen        uint64
	lastError  *types.ErrorInfo

	// Read-side snapshot maintained by the loop after every command.
	mu   sync.RWMutex
	snap state
}

type state struct {
	phase      types.Phase
	permission types.Permission
	facing     types.FacingMode
	desired    bool
	lastError  *types.ErrorInfo
}

// NewSession creates a session and starts its event loop.
func NewSession(cfg Config) *Session {
	if cfg.Capturer == nil {
		cfg.Capturer = capture.New(capture.Config{})
	}
	if !cfg.Facing.Valid() {
		cfg.Facing = types.FacingBack
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		device:     cfg.Device,
		capturer:   cfg.Capturer,
		emitter:    cfg.Emitter,
		cmds:       make(chan func(), commandBuffer),
		closed:     make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
		phase:      types.PhaseIdle,
		permission: types.PermissionUnknown,
		facing:     cfg.Facing,
	}
	s.snap = state{phase: s.phase, permission: s.permission, facing: s.facing}

	go s.run()
	return s
}

func (s *Session) run() {
	for {
		select {
		case fn := <-s.cmds:
			fn()
			s.publishState()
		case <-s.closed:
			s.teardown()
			s.publishState()
			return
		}
	}
}

// post queues fn onto the event loop. It reports false once the session is
// closed; callers owning a handle must release it themselves in that case.
func (s *Session) post(fn func()) bool {
	select {
	case s.cmds <- fn:
		return true
	case <-s.closed:
		return false
	}
}

func (s *Session) publishState() {
	s.mu.Lock()
	s.snap = state{
		phase:      s.phase,
		permission: s.permission,
		facing:     s.facing,
		desired:    s.desired,
		lastError:  s.lastError,
	}
	s.mu.Unlock()
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() types.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.phase
}

// Permission returns the result of the last permission probe.
func (s *Session) Permission() types.Permission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.permission
}

// FacingMode returns the currently preferred lens.
func (s *Session) FacingMode() types.FacingMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.facing
}

// DesiredActive returns the externally requested target state.
func (s *Session) DesiredActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.desired
}

// LastError returns the most recent terminal error, or nil.
func (s *Session) LastError() *types.ErrorInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.lastError
}

// SetDesiredActive records the requested target state and drives the state
// machine toward it. It is idempotent: re-entry while already in the
// requested state is a no-op except that it re-satisfies pending
// started/stopped notifications.
func (s *Session) SetDesiredActive(active bool) {
	s.post(func() { s.setDesiredActive(active) })
}

// ToggleFacingMode flips the preferred lens. While the session is mid
// transition (acquiring, switching, or releasing) the toggle fails silently:
// logged, no state change, no hardware call. When the session is active the
// current tracks are stopped and the stream is re-acquired with the new
// facing mode.
func (s *Session) ToggleFacingMode() {
	s.post(func() { s.toggleFacingMode() })
}

// CaptureFrame returns a still-image encoding of the current frame, or nil
// when the session is not active or the surface has not decoded yet.
func (s *Session) CaptureFrame() []byte {
	res := make(chan []byte, 1)
	if !s.post(func() { res <- s.captureFrame() }) {
		return nil
	}
	select {
	case frame := <-res:
		return frame
	case <-s.closed:
		return nil
	}
}

// ResetPermission returns the permission probe to its initial state so a
// later SetDesiredActive(true) re-probes. Intended for the application shell
// to call after the user changes platform permission settings.
func (s *Session) ResetPermission() {
	s.post(func() {
		s.permission = types.PermissionUnknown
		s.probed = false
		s.lastError = nil
	})
}

// Close tears the session down, stopping any live tracks. The session must
// not be used afterwards.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
}

func (s *Session) teardown() {
	s.cancel()
	if s.handle != nil {
		s.handle.StopAllTracks()
		s.handle = nil
	}
	s.gen++
	s.setPhase(types.PhaseIdle)
	s.desired = false
}

func (s *Session) setPhase(to types.Phase) {
	if s.phase == to {
		return
	}
	logger.CameraTransition(string(s.phase), string(to), s.gen)
	s.phase = to
}

func (s *Session) setDesiredActive(active bool) {
	s.desired = active

	if active {
		switch s.phase {
		case types.PhaseActive:
			// Absorbed; re-satisfy a pending started notification.
			s.emitter.CameraStarted(s.facing)
		case types.PhaseCheckingPermission, types.PhaseAcquiring, types.PhaseSwitchingMode:
			// Absorbed; the in-flight transition already honors desired.
		case types.PhaseIdle:
			s.ensureActive()
		}
		return
	}

	switch s.phase {
	case types.PhaseActive:
		s.release()
	case types.PhaseIdle:
		// Absorbed; re-satisfy a pending stopped notification.
		s.emitter.CameraStopped()
	default:
		// Acquiring/SwitchingMode: the in-flight acquisition completes
		// first, then handleAcquireDone releases it immediately.
	}
}

func (s *Session) ensureActive() {
	switch s.permission {
	case types.PermissionDenied:
		// Blocked until an external re-probe resets permission.
		logger.Warn("camera start blocked: permission denied")
	case types.PermissionUnknown:
		s.startProbe()
	case types.PermissionGranted:
		s.startAcquire(types.PhaseAcquiring)
	}
}

// startProbe requests and immediately releases a stream to resolve the
// permission state. It runs at most once per process lifetime.
func (s *Session) startProbe() {
	if s.probed {
		return
	}
	s.setPhase(types.PhaseCheckingPermission)

	facing := s.facing
	go func() {
		handle, err := s.device.GetUserMedia(s.ctx, facing)
		if handle != nil {
			handle.StopAllTracks()
		}
		s.post(func() { s.handleProbeDone(err) })
	}()
}

func (s *Session) handleProbeDone(err error) {
	s.probed = true
	s.setPhase(types.PhaseIdle)

	if err != nil {
		s.permission = types.PermissionDenied
		s.desired = false
		s.emitter.PermissionResolved(false)
		s.fail(Classify(err), err)
		return
	}

	s.permission = types.PermissionGranted
	s.emitter.PermissionResolved(true)
	if s.desired {
		s.startAcquire(types.PhaseAcquiring)
	}
}

// startAcquire requests a stream with the current facing mode. The phase is
// PhaseAcquiring for a fresh start and PhaseSwitchingMode for a lens switch.
func (s *Session) startAcquire(phase types.Phase) {
	s.gen++
	gen := s.gen
	s.setPhase(phase)

	facing := s.facing
	go func() {
		handle, err := s.device.GetUserMedia(s.ctx, facing)
		if err == nil {
			if perr := handle.Play(s.ctx); perr != nil {
				err = fmt.Errorf("%w: %v", ErrPlayback, perr)
			}
		}
		if !s.post(func() { s.handleAcquireDone(gen, handle, err) }) {
			if handle != nil {
				handle.StopAllTracks()
			}
		}
	}()
}

func (s *Session) handleAcquireDone(gen uint64, handle StreamHandle, err error) {
	if gen != s.gen {
		// Superseded. This completion owns only the handle it produced;
		// it must never stop a later generation's tracks.
		if handle != nil {
			handle.StopAllTracks()
		}
		logger.Debug("discarding superseded acquisition", "generation", gen, "current", s.gen)
		return
	}

	if err != nil {
		// Release any partial handle (playback rejected after acquisition).
		if handle != nil {
			handle.StopAllTracks()
		}
		s.handle = nil
		s.desired = false
		code := Classify(err)
		if code == types.ErrCodePermissionDenied {
			// Revoked mid flight; block further attempts until re-probe.
			s.permission = types.PermissionDenied
		}
		s.setPhase(types.PhaseIdle)
		s.fail(code, err)
		return
	}

	if !s.desired {
		// Deactivated mid acquisition: the acquisition still completed,
		// release it immediately rather than leak it.
		handle.StopAllTracks()
		s.handle = nil
		s.setPhase(types.PhaseIdle)
		s.emitter.CameraStopped()
		return
	}

	s.handle = handle
	s.lastError = nil
	s.setPhase(types.PhaseActive)
	s.emitter.CameraStarted(s.facing)
}

func (s *Session) toggleFacingMode() {
	switch s.phase {
	case types.PhaseAcquiring, types.PhaseSwitchingMode, types.PhaseReleasing:
		logger.Warn("facing mode toggle ignored", "phase", string(s.phase))
		return
	}

	s.facing = s.facing.Opposite()
	logger.Info("facing mode set", "facing", string(s.facing))

	if s.phase != types.PhaseActive {
		return
	}

	// Stop the current tracks before re-acquiring; the stopped handle stays
	// bound until the replacement arrives. desiredActive remains true.
	s.handle.StopAllTracks()
	s.startAcquire(types.PhaseSwitchingMode)
}

func (s *Session) release() {
	s.setPhase(types.PhaseReleasing)
	if s.handle != nil {
		s.handle.StopAllTracks()
		s.handle = nil
	}
	s.gen++
	s.setPhase(types.PhaseIdle)
	s.emitter.CameraStopped()
}

func (s *Session) captureFrame() []byte {
	if s.phase != types.PhaseActive || s.handle == nil {
		return nil
	}
	frame := s.capturer.Capture(s.handle.Surface())
	if frame != nil {
		s.emitter.FrameCaptured(len(frame))
	}
	return frame
}

func (s *Session) fail(code types.ErrorCode, err error) {
	info := types.NewErrorInfo(code, err)
	s.lastError = info
	logger.Error("camera error", "code", string(code), "error", err)
	s.emitter.CameraError(code, info.Message)
}
