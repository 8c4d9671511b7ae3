// This file contains the WebSocket streaming synthesizer. Streaming keeps
// first-byte latency low so a cancelled utterance wastes little synthesis.
package speech

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// defaultDialTimeout bounds WebSocket connection establishment.
	defaultDialTimeout = 10 * time.Second
)

// StreamSynthesizer implements Synthesizer over a WebSocket TTS service
// that responds with a sequence of base64 audio chunk messages.
type StreamSynthesizer struct {
	wsURL  string
	apiKey string
	dialer *websocket.Dialer
}

// StreamOption configures the stream synthesizer.
type StreamOption func(*StreamSynthesizer)

// WithDialer sets a custom WebSocket dialer.
func WithDialer(dialer *websocket.Dialer) StreamOption {
	return func(s *StreamSynthesizer) {
		s.dialer = dialer
	}
}

// NewStreamSynthesizer creates a WebSocket-backed synthesizer.
func NewStreamSynthesizer(wsURL, apiKey string, opts ...StreamOption) *StreamSynthesizer {
	s := &StreamSynthesizer{
		wsURL:  wsURL,
		apiKey: apiKey,
		dialer: &websocket.Dialer{HandshakeTimeout: defaultDialTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the provider identifier.
func (s *StreamSynthesizer) Name() string {
	return "stream"
}

// streamRequest is the synthesis request sent over the WebSocket.
type streamRequest struct {
	Text     string  `json:"text"`
	Voice    string  `json:"voice,omitempty"`
	Format   string  `json:"format,omitempty"`
	Speed    float64 `json:"speed,omitempty"`
	Language string  `json:"language,omitempty"`
}

// streamResponse is one message from the WebSocket service.
type streamResponse struct {
	Audio string `json:"audio,omitempty"` // base64 chunk
	Done  bool   `json:"done,omitempty"`
	Error string `json:"error,omitempty"`
}

// Synthesize converts text to audio over a streaming WebSocket connection.
// The returned reader yields audio bytes as chunks arrive; closing it tears
// down the connection.
func (s *StreamSynthesizer) Synthesize(
	ctx context.Context, text string, config SynthesisConfig,
) (io.ReadCloser, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	header := http.Header{}
	if s.apiKey != "" {
		header.Set("Authorization", "Bearer "+s.apiKey)
	}

	conn, resp, err := s.dialer.DialContext(ctx, s.wsURL, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, NewSynthesisError(s.Name(), "websocket connection failed", err, true)
	}

	req := streamRequest{
		Text:     text,
		Voice:    config.Voice,
		Format:   config.Format,
		Speed:    config.Speed,
		Language: config.Language,
	}
	if err := conn.WriteJSON(req); err != nil {
		_ = conn.Close()
		return nil, NewSynthesisError(s.Name(), "failed to send request", err, true)
	}

	pr, pw := io.Pipe()
	go s.readStream(ctx, conn, pw)
	return pr, nil
}

// readStream pumps audio chunks from the connection into the pipe until the
// service reports completion, an error occurs, or ctx is cancelled.
func (s *StreamSynthesizer) readStream(ctx context.Context, conn *websocket.Conn, pw *io.PipeWriter) {
	defer func() { _ = conn.Close() }()

	for {
		if ctx.Err() != nil {
			_ = pw.CloseWithError(ctx.Err())
			return
		}

		var resp streamResponse
		if err := conn.ReadJSON(&resp); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				_ = pw.Close()
			} else {
				_ = pw.CloseWithError(err)
			}
			return
		}

		if resp.Error != "" {
			_ = pw.CloseWithError(NewSynthesisError(s.Name(), resp.Error, ErrSynthesisFailed, false))
			return
		}

		if resp.Audio != "" {
			chunk, err := base64.StdEncoding.DecodeString(resp.Audio)
			if err != nil {
				_ = pw.CloseWithError(NewSynthesisError(s.Name(), "malformed audio chunk", err, false))
				return
			}
			if _, err := pw.Write(chunk); err != nil {
				// Reader side closed; stop pumping.
				return
			}
		}

		if resp.Done {
			_ = pw.Close()
			return
		}
	}
}
