package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/scenetalk/runtime/types"
)

const defaultTTLHours = 24

// RedisStore provides a Redis-backed implementation of the Store interface.
// Each message is stored as a JSON element of a Redis list, so appends are
// O(1) and the transcript survives process restarts. This implementation is
// suitable for distributed systems and production deployments.
type RedisStore struct {
	client         *redis.Client
	conversationID string
	ttl            time.Duration
	prefix         string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithTTL sets the time-to-live for the transcript. After this duration of
// inactivity the conversation is automatically deleted. Default is 24 hours.
// Set to 0 for no expiration.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for Redis keys. Default is "scenetalk".
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore creates a new Redis-backed transcript store for the given
// conversation.
//
// Example:
//
//	store := NewRedisStore(
//	    redis.NewClient(&redis.Options{Addr: "localhost:6379"}),
//	    "conv-42",
//	    WithTTL(24 * time.Hour),
//	)
func NewRedisStore(client *redis.Client, conversationID string, opts ...RedisOption) *RedisStore {
	store := &RedisStore{
		client:         client,
		conversationID: conversationID,
		ttl:            defaultTTLHours * time.Hour,
		prefix:         "scenetalk",
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *RedisStore) key() string {
	return fmt.Sprintf("%s:conversation:%s", s.prefix, s.conversationID)
}

// Append adds a message to the end of the transcript.
func (s *RedisStore) Append(ctx context.Context, msg types.ChatMessage) error {
	if msg.ID == "" || msg.Role == "" {
		return ErrInvalidMessage
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	key := s.key()
	if err := s.client.RPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return fmt.Errorf("refresh ttl: %w", err)
		}
	}
	return nil
}

// Messages returns every message in conversation order.
func (s *RedisStore) Messages(ctx context.Context) ([]types.ChatMessage, error) {
	raw, err := s.client.LRange(ctx, s.key(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	out := make([]types.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg types.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("unmarshal message: %w", err)
		}
		out = append(out, msg)
	}
	return out, nil
}

// Snapshot returns the role+text projection of the transcript.
func (s *RedisStore) Snapshot(ctx context.Context) ([]types.HistoryEntry, error) {
	messages, err := s.Messages(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]types.HistoryEntry, len(messages))
	for i, msg := range messages {
		out[i] = types.HistoryEntry{Role: msg.Role, Text: msg.Text}
	}
	return out, nil
}

// LastImage returns the most recent image in the transcript, or nil.
func (s *RedisStore) LastImage(ctx context.Context) ([]byte, error) {
	messages, err := s.Messages(ctx)
	if err != nil {
		return nil, err
	}

	for i := len(messages) - 1; i >= 0; i-- {
		if len(messages[i].Image) > 0 {
			return messages[i].Image, nil
		}
	}
	return nil, nil
}

// BackfillImage attaches image to the most recent user message without one.
func (s *RedisStore) BackfillImage(ctx context.Context, image []byte) error {
	if len(image) == 0 {
		return nil
	}

	key := s.key()
	raw, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("load messages: %w", err)
	}

	for i := len(raw) - 1; i >= 0; i-- {
		var msg types.ChatMessage
		if err := json.Unmarshal([]byte(raw[i]), &msg); err != nil {
			return fmt.Errorf("unmarshal message: %w", err)
		}
		if msg.Role != types.RoleUser || len(msg.Image) > 0 {
			continue
		}

		msg.Image = image
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshal message: %w", err)
		}
		if err := s.client.LSet(ctx, key, int64(i), data).Err(); err != nil {
			return fmt.Errorf("backfill image: %w", err)
		}
		return nil
	}
	return nil
}

// Clear removes the transcript.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("clear transcript: %w", err)
	}
	return nil
}
