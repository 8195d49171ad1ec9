// Package redis provides a Redis-backed session.Store for deployments where
// conversation history must survive the process or be shared between
// replicas. Histories are stored as JSON blobs under a configurable key
// prefix with an optional TTL.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hupe1980/agentchat/core"
	backend "github.com/redis/go-redis/v9"
)

// Store implements session.Store on top of Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option customizes a Store.
type Option func(*Store)

// WithPrefix sets the key prefix for session histories.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// WithTTL sets the expiration for session histories. Zero means no expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// New creates a Redis store connecting to the given address.
func New(addr, password string, db int, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "agentchat:session:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(sessionID string) string {
	return s.prefix + sessionID
}

// GetOrCreate implements session.Store.
func (s *Store) GetOrCreate(ctx context.Context, sessionID string) ([]core.Message, error) {
	val, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if err != nil {
		if err == backend.Nil {
			return []core.Message{}, nil
		}
		return nil, fmt.Errorf("failed to get session from redis: %w", err)
	}

	var history []core.Message
	if err := json.Unmarshal([]byte(val), &history); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session history: %w", err)
	}
	return history, nil
}

// ReplaceHistory implements session.Store.
func (s *Store) ReplaceHistory(ctx context.Context, sessionID string, history []core.Message) error {
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal session history: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session to redis: %w", err)
	}
	return nil
}

// Clear implements session.Store. Deleting an unknown key is a no-op.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear session in redis: %w", err)
	}
	return nil
}
