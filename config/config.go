// Package config loads runtime configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/scenetalk/runtime/types"
)

// History backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the full runtime configuration.
type Config struct {
	Camera      CameraConfig      `yaml:"camera"`
	Capture     CaptureConfig     `yaml:"capture"`
	AutoCapture AutoCaptureConfig `yaml:"auto_capture"`
	Vision      VisionConfig      `yaml:"vision"`
	Speech      SpeechConfig      `yaml:"speech"`
	History     HistoryConfig     `yaml:"history"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}

// CameraConfig configures the camera session.
type CameraConfig struct {
	// Facing is the initial lens preference: "front" or "back".
	Facing string `yaml:"facing"`
}

// CaptureConfig configures frame encoding.
type CaptureConfig struct {
	Quality   int `yaml:"quality"`
	MaxWidth  int `yaml:"max_width"`
	MaxHeight int `yaml:"max_height"`
}

// AutoCaptureConfig configures the periodic scene analysis loop.
type AutoCaptureConfig struct {
	Enabled       bool `yaml:"enabled"`
	PeriodSeconds int  `yaml:"period_seconds"`
}

// Period returns the configured interval as a duration.
func (c AutoCaptureConfig) Period() time.Duration {
	return time.Duration(c.PeriodSeconds) * time.Second
}

// VisionConfig configures the vision collaborator client.
type VisionConfig struct {
	Endpoint          string  `yaml:"endpoint"`
	APIKey            string  `yaml:"api_key"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// Timeout returns the configured request timeout as a duration.
func (c VisionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SpeechConfig configures speech synthesis.
type SpeechConfig struct {
	Endpoint string  `yaml:"endpoint"`
	APIKey   string  `yaml:"api_key"`
	Voice    string  `yaml:"voice"`
	Format   string  `yaml:"format"`
	Speed    float64 `yaml:"speed"`
}

// HistoryConfig configures the transcript store.
type HistoryConfig struct {
	Backend        string `yaml:"backend"`
	RedisAddr      string `yaml:"redis_addr"`
	RedisPrefix    string `yaml:"redis_prefix"`
	ConversationID string `yaml:"conversation_id"`
	TTLHours       int    `yaml:"ttl_hours"`
}

// TelemetryConfig configures tracing export.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

// Default returns the configuration used when no file overrides it.
func Default() Config {
	return Config{
		Camera: CameraConfig{
			Facing: string(types.FacingBack),
		},
		Capture: CaptureConfig{
			Quality:   85,
			MaxWidth:  1024,
			MaxHeight: 1024,
		},
		AutoCapture: AutoCaptureConfig{
			Enabled:       false,
			PeriodSeconds: 10,
		},
		Vision: VisionConfig{
			TimeoutSeconds: 60,
		},
		Speech: SpeechConfig{
			Format: "mp3",
			Speed:  1.0,
		},
		History: HistoryConfig{
			Backend:  BackendMemory,
			TTLHours: 24,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "scenetalk",
		},
	}
}

// Load reads and parses the YAML configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse unmarshals YAML configuration over the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field ranges and enums.
func (c *Config) Validate() error {
	if !types.FacingMode(c.Camera.Facing).Valid() {
		return fmt.Errorf("camera.facing must be %q or %q, got %q",
			types.FacingFront, types.FacingBack, c.Camera.Facing)
	}
	if c.Capture.Quality < 1 || c.Capture.Quality > 100 {
		return fmt.Errorf("capture.quality must be between 1 and 100, got %d", c.Capture.Quality)
	}
	if c.AutoCapture.Enabled && c.AutoCapture.PeriodSeconds <= 0 {
		return fmt.Errorf("auto_capture.period_seconds must be positive when enabled")
	}
	if c.History.Backend != BackendMemory && c.History.Backend != BackendRedis {
		return fmt.Errorf("history.backend must be %q or %q, got %q",
			BackendMemory, BackendRedis, c.History.Backend)
	}
	if c.History.Backend == BackendRedis && c.History.RedisAddr == "" {
		return fmt.Errorf("history.redis_addr is required for the redis backend")
	}
	return nil
}
