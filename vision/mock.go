package vision

import (
	"context"
	"sync"
)

// MockProvider is a configurable Provider for tests. It records every
// request it receives; set QueryFunc/SummarizeFunc to control responses,
// block, or fail.
type MockProvider struct {
	mu         sync.Mutex
	queries    []QueryRequest
	summarizes []SummarizeRequest

	// QueryFunc, when set, handles Query calls.
	QueryFunc func(ctx context.Context, req *QueryRequest) (*QueryResponse, error)

	// SummarizeFunc, when set, handles Summarize calls.
	SummarizeFunc func(ctx context.Context, req *SummarizeRequest) (*SummarizeResponse, error)
}

// NewMockProvider creates a mock provider with canned default responses.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// Name returns the provider identifier.
func (m *MockProvider) Name() string {
	return "mock"
}

// Query records the request and delegates to QueryFunc if set.
func (m *MockProvider) Query(ctx context.Context, req *QueryRequest) (*QueryResponse, error) {
	m.mu.Lock()
	m.queries = append(m.queries, *req)
	m.mu.Unlock()

	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, req)
	}
	return &QueryResponse{Answer: "mock answer"}, nil
}

// Summarize records the request and delegates to SummarizeFunc if set.
func (m *MockProvider) Summarize(ctx context.Context, req *SummarizeRequest) (*SummarizeResponse, error) {
	m.mu.Lock()
	m.summarizes = append(m.summarizes, *req)
	m.mu.Unlock()

	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, req)
	}
	return &SummarizeResponse{Summary: "mock summary"}, nil
}

// Queries returns a copy of the recorded Query requests.
func (m *MockProvider) Queries() []QueryRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]QueryRequest, len(m.queries))
	copy(out, m.queries)
	return out
}

// Summarizes returns a copy of the recorded Summarize requests.
func (m *MockProvider) Summarizes() []SummarizeRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SummarizeRequest, len(m.summarizes))
	copy(out, m.summarizes)
	return out
}
