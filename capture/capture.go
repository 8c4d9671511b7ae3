// Package capture renders live video surfaces into still JPEG frames.
package capture

import (
	"bytes"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"

	"github.com/scenetalk/runtime/logger"
)

// Default configuration values.
const (
	DefaultQuality   = 85
	DefaultMaxWidth  = 1024
	DefaultMaxHeight = 1024
)

// Surface is a renderable video surface backed by a live stream.
type Surface interface {
	// Bounds returns the surface's current decoded dimensions in pixels.
	// Both are zero until the stream has produced its first frame.
	Bounds() (width, height int)

	// Frame returns the current frame, or nil if none has been decoded.
	Frame() image.Image
}

// Config configures frame encoding.
type Config struct {
	// Quality is the JPEG encoding quality (1-100). Default: 85.
	Quality int

	// MaxWidth is the maximum output width in pixels (0 = DefaultMaxWidth).
	MaxWidth int

	// MaxHeight is the maximum output height in pixels (0 = DefaultMaxHeight).
	MaxHeight int
}

// FrameCapturer encodes the current contents of a video surface as a
// compressed still image. It holds no state beyond its configuration.
type FrameCapturer struct {
	cfg Config
}

// New creates a FrameCapturer, filling in defaults for zero config fields.
func New(cfg Config) *FrameCapturer {
	if cfg.Quality <= 0 || cfg.Quality > 100 {
		cfg.Quality = DefaultQuality
	}
	if cfg.MaxWidth <= 0 {
		cfg.MaxWidth = DefaultMaxWidth
	}
	if cfg.MaxHeight <= 0 {
		cfg.MaxHeight = DefaultMaxHeight
	}
	return &FrameCapturer{cfg: cfg}
}

// Capture renders the surface's current frame into a JPEG at the configured
// quality, downscaling to fit the configured bounds with aspect preserved.
//
// It returns nil (not an error) when the surface reports zero dimensions or
// has no decoded frame yet. That is an expected transient during stream
// startup and is never surfaced to the user.
func (c *FrameCapturer) Capture(s Surface) []byte {
	if s == nil {
		return nil
	}

	width, height := s.Bounds()
	if width <= 0 || height <= 0 {
		logger.Debug("capture skipped: surface not decoded yet")
		return nil
	}

	img := s.Frame()
	if img == nil {
		logger.Debug("capture skipped: no frame available")
		return nil
	}

	targetW, targetH := fitWithin(width, height, c.cfg.MaxWidth, c.cfg.MaxHeight)
	if targetW < width || targetH < height {
		dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.cfg.Quality}); err != nil {
		logger.Warn("frame encode failed", "error", err)
		return nil
	}
	return buf.Bytes()
}

// fitWithin scales (width, height) down to fit (maxW, maxH), preserving the
// aspect ratio. Dimensions already within bounds are returned unchanged.
func fitWithin(width, height, maxW, maxH int) (int, int) {
	if width <= maxW && height <= maxH {
		return width, height
	}

	scaleW := float64(maxW) / float64(width)
	scaleH := float64(maxH) / float64(height)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}

	targetW := int(float64(width) * scale)
	targetH := int(float64(height) * scale)
	if targetW < 1 {
		targetW = 1
	}
	if targetH < 1 {
		targetH = 1
	}
	return targetW, targetH
}
