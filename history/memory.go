package history

import (
	"context"
	"sync"

	"github.com/scenetalk/runtime/types"
)

// MemoryStore provides an in-memory implementation of the Store interface.
// It is thread-safe and suitable for development, testing, and
// single-instance deployments. For distributed systems, use RedisStore.
type MemoryStore struct {
	mu       sync.RWMutex
	messages []types.ChatMessage
}

// NewMemoryStore creates a new in-memory transcript store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append adds a message to the end of the transcript.
func (s *MemoryStore) Append(ctx context.Context, msg types.ChatMessage) error {
	if msg.ID == "" || msg.Role == "" {
		return ErrInvalidMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, cloneMessage(msg))
	return nil
}

// Messages returns deep copies of every message in conversation order.
func (s *MemoryStore) Messages(ctx context.Context) ([]types.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.ChatMessage, len(s.messages))
	for i, msg := range s.messages {
		out[i] = cloneMessage(msg)
	}
	return out, nil
}

// Snapshot returns the role+text projection of the transcript.
func (s *MemoryStore) Snapshot(ctx context.Context) ([]types.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.HistoryEntry, len(s.messages))
	for i, msg := range s.messages {
		out[i] = types.HistoryEntry{Role: msg.Role, Text: msg.Text}
	}
	return out, nil
}

// LastImage returns the most recent image in the transcript, or nil.
func (s *MemoryStore) LastImage(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.messages) - 1; i >= 0; i-- {
		if len(s.messages[i].Image) > 0 {
			img := make([]byte, len(s.messages[i].Image))
			copy(img, s.messages[i].Image)
			return img, nil
		}
	}
	return nil, nil
}

// BackfillImage attaches image to the most recent user message without one.
func (s *MemoryStore) BackfillImage(ctx context.Context, image []byte) error {
	if len(image) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == types.RoleUser && len(s.messages[i].Image) == 0 {
			img := make([]byte, len(image))
			copy(img, image)
			s.messages[i].Image = img
			return nil
		}
	}
	return nil
}

// Clear removes every message.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	return nil
}
