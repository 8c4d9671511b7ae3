package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/scenetalk/runtime/logger"
)

const (
	defaultHTTPTimeout = 60 * time.Second

	queryPath     = "/v1/vision/query"
	summarizePath = "/v1/vision/summarize"

	// maxErrorBodyBytes bounds how much of an error response is read.
	maxErrorBodyBytes = 4096
)

// HTTPProvider implements Provider against a JSON-over-HTTP vision service.
type HTTPProvider struct {
	endpoint string
	apiKey   string
	client   *http.Client
	limiter  *rate.Limiter
}

// HTTPOption configures an HTTPProvider.
type HTTPOption func(*HTTPProvider)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(p *HTTPProvider) {
		p.client = client
	}
}

// WithRateLimit caps outbound calls at rps requests per second. Calls that
// exceed the limit wait rather than fail.
func WithRateLimit(rps float64) HTTPOption {
	return func(p *HTTPProvider) {
		if rps > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// NewHTTPProvider creates a vision provider calling the service at endpoint.
func NewHTTPProvider(endpoint, apiKey string, opts ...HTTPOption) *HTTPProvider {
	p := &HTTPProvider{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider identifier.
func (p *HTTPProvider) Name() string {
	return "http"
}

// Query answers a question about an optional image with prior history.
func (p *HTTPProvider) Query(ctx context.Context, req *QueryRequest) (*QueryResponse, error) {
	if req == nil || req.Question == "" {
		return nil, ErrEmptyQuestion
	}

	var resp QueryResponse
	if err := p.post(ctx, queryPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Summarize describes a scene without a user question.
func (p *HTTPProvider) Summarize(ctx context.Context, req *SummarizeRequest) (*SummarizeResponse, error) {
	if req == nil || len(req.Image) == 0 {
		return nil, ErrEmptyImage
	}

	var resp SummarizeResponse
	if err := p.post(ctx, summarizePath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (p *HTTPProvider) post(ctx context.Context, path string, payload, out any) error {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("vision request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode != http.StatusOK {
		return parseHTTPError(httpResp.StatusCode, httpResp.Body)
	}

	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// parseHTTPError extracts a human-readable error from a vision service error
// response. The service returns JSON like {"message":"..."} on HTTP 4xx/5xx;
// falls back to the raw body if parsing fails.
func parseHTTPError(statusCode int, body io.Reader) error {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBodyBytes))
	if err != nil {
		logger.Debug("failed to read error body", "error", err)
	}

	var errResp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &errResp); err == nil && errResp.Message != "" {
		return fmt.Errorf("vision error (HTTP %d): %s", statusCode, errResp.Message)
	}
	return fmt.Errorf("vision error (HTTP %d): %s", statusCode, string(raw))
}
