package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// Default timeout for synthesis requests.
	defaultHTTPTimeout = 60 * time.Second

	synthesizePath = "/v1/speech/synthesize"

	// HTTP status code threshold for server errors.
	serverErrorThreshold = 500

	// maxErrorBodyBytes bounds how much of an error response is read.
	maxErrorBodyBytes = 4096
)

// HTTPSynthesizer implements Synthesizer against a JSON-over-HTTP TTS
// service that returns the audio stream in the response body.
type HTTPSynthesizer struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// HTTPOption configures the HTTP synthesizer.
type HTTPOption func(*HTTPSynthesizer)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPSynthesizer) {
		s.client = client
	}
}

// NewHTTPSynthesizer creates an HTTP-backed synthesizer.
func NewHTTPSynthesizer(baseURL, apiKey string, opts ...HTTPOption) *HTTPSynthesizer {
	s := &HTTPSynthesizer{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the provider identifier.
func (s *HTTPSynthesizer) Name() string {
	return "http"
}

// synthesizeRequest is the request body for the TTS service.
type synthesizeRequest struct {
	Text     string  `json:"text"`
	Voice    string  `json:"voice,omitempty"`
	Format   string  `json:"format,omitempty"`
	Speed    float64 `json:"speed,omitempty"`
	Language string  `json:"language,omitempty"`
}

// Synthesize converts text to audio. The returned reader streams the
// response body; the caller must close it.
func (s *HTTPSynthesizer) Synthesize(
	ctx context.Context, text string, config SynthesisConfig,
) (io.ReadCloser, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	body, err := json.Marshal(synthesizeRequest{
		Text:     text,
		Voice:    config.Voice,
		Format:   config.Format,
		Speed:    config.Speed,
		Language: config.Language,
	})
	if err != nil {
		return nil, NewSynthesisError(s.Name(), "marshal request", err, false)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+synthesizePath, bytes.NewReader(body))
	if err != nil {
		return nil, NewSynthesisError(s.Name(), "build request", err, false)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, NewSynthesisError(s.Name(), "request failed", err, true)
	}

	if resp.StatusCode != http.StatusOK {
		defer func() { _ = resp.Body.Close() }()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		retryable := resp.StatusCode >= serverErrorThreshold
		msg := fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(raw))
		return nil, NewSynthesisError(s.Name(), msg, ErrSynthesisFailed, retryable)
	}

	return resp.Body, nil
}
