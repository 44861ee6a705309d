// Package credentials stores short-lived Zoom access tokens in Redis, keyed
// by host ID with an explicit TTL so a stale token surfaces as missing
// rather than being silently reused.
package credentials

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "credentials:zoom:"

// Store is a Redis-backed credential store.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewStore creates a credential store. Tokens expire after ttl.
func NewStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{client: client, ttl: ttl, logger: logger}
}

// Put stores a token under hostID, replacing any previous one and resetting
// the expiry.
func (s *Store) Put(ctx context.Context, hostID, token string) error {
	if err := s.client.Set(ctx, keyPrefix+hostID, token, s.ttl).Err(); err != nil {
		return fmt.Errorf("set credential: %w", err)
	}
	s.logger.Debug("credential stored", zap.String("host_id", hostID), zap.Duration("ttl", s.ttl))
	return nil
}

// Get returns the token stored for hostID. found is false when no credential
// exists or it has expired.
func (s *Store) Get(ctx context.Context, hostID string) (string, bool, error) {
	token, err := s.client.Get(ctx, keyPrefix+hostID).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get credential: %w", err)
	}
	return token, true, nil
}
