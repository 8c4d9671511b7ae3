package logger

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestSetLevel(t *testing.T) {
	for _, level := range []slog.Level{
		slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError,
	} {
		SetLevel(level)
		if DefaultLogger == nil {
			t.Errorf("expected DefaultLogger to be set at level %v", level)
		}
	}
}

func TestSetVerbose(t *testing.T) {
	SetVerbose(true)
	if DefaultLogger == nil {
		t.Error("expected DefaultLogger to be set after SetVerbose(true)")
	}

	SetVerbose(false)
	if DefaultLogger == nil {
		t.Error("expected DefaultLogger to be set after SetVerbose(false)")
	}
}

func TestLoggingHelpersDoNotPanic(t *testing.T) {
	Debug("debug message", "key", "value")
	Info("info message", "key", "value")
	Warn("warn message", "key", "value")
	Error("error message", "error", errors.New("boom"))

	CameraTransition("idle", "acquiring", 3)
	VisionCall("http", "question", true, 4)
	VisionResponse("http", "question", 120, 450)
	VisionError("http", "scene", errors.New("timeout"))
}

func TestRedactSensitiveData(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "openai style key",
			input: "calling with sk-abcdefghijklmnopqrstuvwxyz0123456789",
			want:  "calling with sk-a...[REDACTED]",
		},
		{
			name:  "bearer token",
			input: "Authorization: Bearer my-secret-token",
			want:  "Authorization: Bearer [REDACTED]",
		},
		{
			name:  "no sensitive data",
			input: "just a normal log line",
			want:  "just a normal log line",
		},
		{
			name:  "short key left alone",
			input: "sk-short",
			want:  "sk-short",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RedactSensitiveData(tt.input)
			if got != tt.want {
				t.Errorf("RedactSensitiveData(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	redacted := RedactSensitiveData("Bearer abc123 and sk-abcdefghijklmnopqrstuvwxyz0123456789")
	if strings.Contains(redacted, "abcdefghijklmnop") {
		t.Errorf("expected key body removed, got %q", redacted)
	}
}
