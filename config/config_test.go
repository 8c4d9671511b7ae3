package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "back", cfg.Camera.Facing)
	assert.Equal(t, 85, cfg.Capture.Quality)
	assert.False(t, cfg.AutoCapture.Enabled)
	assert.Equal(t, 10*time.Second, cfg.AutoCapture.Period())
	assert.Equal(t, 60*time.Second, cfg.Vision.Timeout())
	assert.Equal(t, BackendMemory, cfg.History.Backend)
}

func TestParse_OverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
camera:
  facing: front
capture:
  quality: 70
  max_width: 800
auto_capture:
  enabled: true
  period_seconds: 30
vision:
  endpoint: https://vision.example.com
  api_key: secret
  requests_per_second: 2.5
history:
  backend: redis
  redis_addr: localhost:6379
  conversation_id: conv-7
`))
	require.NoError(t, err)

	assert.Equal(t, "front", cfg.Camera.Facing)
	assert.Equal(t, 70, cfg.Capture.Quality)
	// Unset fields keep their defaults.
	assert.Equal(t, 1024, cfg.Capture.MaxHeight)
	assert.Equal(t, 30*time.Second, cfg.AutoCapture.Period())
	assert.Equal(t, "https://vision.example.com", cfg.Vision.Endpoint)
	assert.Equal(t, 2.5, cfg.Vision.RequestsPerSecond)
	assert.Equal(t, BackendRedis, cfg.History.Backend)
	assert.Equal(t, "conv-7", cfg.History.ConversationID)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad facing", "camera:\n  facing: sideways\n"},
		{"quality too high", "capture:\n  quality: 101\n"},
		{"quality zero", "capture:\n  quality: 0\n"},
		{"auto capture without period", "auto_capture:\n  enabled: true\n  period_seconds: 0\n"},
		{"unknown backend", "history:\n  backend: dynamo\n"},
		{"redis without addr", "history:\n  backend: redis\n"},
		{"malformed yaml", "camera: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("camera:\n  facing: front\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "front", cfg.Camera.Facing)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
