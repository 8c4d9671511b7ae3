package speech

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSynthesizer_Synthesize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, synthesizePath, r.URL.Path)
		assert.Equal(t, "Bearer tts-key", r.Header.Get("Authorization"))

		var req synthesizeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello world", req.Text)
		assert.Equal(t, "voice-1", req.Voice)
		assert.Equal(t, FormatMP3, req.Format)

		_, _ = w.Write([]byte("binary-audio"))
	}))
	defer server.Close()

	s := NewHTTPSynthesizer(server.URL, "tts-key")
	audio, err := s.Synthesize(context.Background(), "hello world", SynthesisConfig{
		Voice:  "voice-1",
		Format: FormatMP3,
		Speed:  1.0,
	})
	require.NoError(t, err)
	defer func() { _ = audio.Close() }()

	data, err := io.ReadAll(audio)
	require.NoError(t, err)
	assert.Equal(t, "binary-audio", string(data))
}

func TestHTTPSynthesizer_EmptyText(t *testing.T) {
	s := NewHTTPSynthesizer("http://unused", "")
	_, err := s.Synthesize(context.Background(), "", DefaultSynthesisConfig())
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestHTTPSynthesizer_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("synthesis backend down"))
	}))
	defer server.Close()

	s := NewHTTPSynthesizer(server.URL, "")
	_, err := s.Synthesize(context.Background(), "hello", DefaultSynthesisConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSynthesisFailed)

	var serr *SynthesisError
	require.True(t, errors.As(err, &serr))
	assert.True(t, serr.Retryable)
	assert.Contains(t, serr.Message, "HTTP 500")
}

func TestHTTPSynthesizer_ClientErrorNotRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("unknown voice"))
	}))
	defer server.Close()

	s := NewHTTPSynthesizer(server.URL, "")
	_, err := s.Synthesize(context.Background(), "hello", DefaultSynthesisConfig())
	require.Error(t, err)

	var serr *SynthesisError
	require.True(t, errors.As(err, &serr))
	assert.False(t, serr.Retryable)
	assert.Contains(t, serr.Message, "unknown voice")
}

func TestHTTPSynthesizer_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewHTTPSynthesizer(server.URL, "")
	_, err := s.Synthesize(ctx, "hello", DefaultSynthesisConfig())
	assert.Error(t, err)
}
