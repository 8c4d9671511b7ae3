// Package scheduler drives periodic unprompted scene analysis while the
// camera is active.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/scenetalk/runtime/logger"
	"github.com/scenetalk/runtime/types"
)

// DefaultPeriod is the auto-capture interval used when none is configured.
const DefaultPeriod = 10 * time.Second

// Camera is what the scheduler needs from the camera session.
type Camera interface {
	Phase() types.Phase
	CaptureFrame() []byte
}

// Analyzer consumes captured frames. AnalyzeScene must tolerate being
// called while busy; the scheduler checks Busy first only to avoid wasted
// captures.
type Analyzer interface {
	Busy() bool
	AnalyzeScene(ctx context.Context, frame []byte) error
}

// AutoCapture periodically captures a frame and hands it to the analyzer.
// A tick is skipped while the camera is not active, while the analyzer is
// busy, or when less than half the period has elapsed since the last
// successful capture — the debounce that prevents burst captures right
// after the busy flag clears.
type AutoCapture struct {
	camera   Camera
	analyzer Analyzer
	period   time.Duration

	mu          sync.Mutex
	lastCapture time.Time

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates an AutoCapture with the given period (DefaultPeriod if zero).
func New(camera Camera, analyzer Analyzer, period time.Duration) *AutoCapture {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &AutoCapture{
		camera:   camera,
		analyzer: analyzer,
		period:   period,
		stop:     make(chan struct{}),
	}
}

// Start begins the capture loop. It returns immediately; the loop runs
// until Stop is called or ctx is cancelled.
func (a *AutoCapture) Start(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ticker := time.NewTicker(a.period)
		defer ticker.Stop()

		for {
			select {
			case now := <-ticker.C:
				a.tick(ctx, now)
			case <-ctx.Done():
				return
			case <-a.stop:
				return
			}
		}
	}()
}

// Stop halts the capture loop and waits for it to exit.
func (a *AutoCapture) Stop() {
	a.stopOnce.Do(func() {
		close(a.stop)
	})
	a.wg.Wait()
}

// tick runs one qualifying check. It reports whether a frame was handed to
// the analyzer.
func (a *AutoCapture) tick(ctx context.Context, now time.Time) bool {
	if a.camera.Phase() != types.PhaseActive {
		return false
	}
	if a.analyzer.Busy() {
		return false
	}

	a.mu.Lock()
	debounced := !a.lastCapture.IsZero() && now.Sub(a.lastCapture) < a.period/2
	a.mu.Unlock()
	if debounced {
		return false
	}

	frame := a.camera.CaptureFrame()
	if frame == nil {
		return false
	}

	a.mu.Lock()
	a.lastCapture = now
	a.mu.Unlock()

	if err := a.analyzer.AnalyzeScene(ctx, frame); err != nil {
		logger.Warn("auto analysis failed", "error", err)
	}
	return true
}
