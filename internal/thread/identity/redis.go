package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionPrefix = "session:"

// SessionStore resolves session tokens to author ids against Redis.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(redisURL string) (*SessionStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &SessionStore{client: client}, nil
}

// NewSessionStoreWithClient wraps an existing Redis client.
func NewSessionStoreWithClient(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// CurrentAuthor reads the token from the context and looks it up. An absent
// token, an expired key or an unknown token all surface as ErrNoSession.
func (s *SessionStore) CurrentAuthor(ctx context.Context) (string, error) {
	token, ok := TokenFromContext(ctx)
	if !ok {
		return "", ErrNoSession
	}

	authorID, err := s.client.Get(ctx, sessionPrefix+token).Result()
	if err == redis.Nil {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("session lookup: %w", err)
	}
	return authorID, nil
}

// SaveSession stores a token for an author with a TTL. The service that owns
// login issues tokens; this is here so dev tooling and tests can mint them.
func (s *SessionStore) SaveSession(ctx context.Context, token, authorID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionPrefix+token, authorID, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// RevokeSession deletes a token.
func (s *SessionStore) RevokeSession(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionPrefix+token).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *SessionStore) Close() error {
	return s.client.Close()
}
