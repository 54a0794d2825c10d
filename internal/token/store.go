// Package token stores per-user device push tokens in Redis with a sliding
// expiration.
package token

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix is the Redis key prefix for device tokens.
const keyPrefix = "push:token:"

// ErrBlankToken is returned when a registration carries an empty token.
var ErrBlankToken = errors.New("device token cannot be blank")

// Store keeps at most one active device token per user. Tokens expire
// silently when the TTL lapses; reads refresh it (sliding expiration).
type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewStore creates a token store with the given sliding TTL.
func NewStore(redisClient *redis.Client, ttl time.Duration) *Store {
	return &Store{redis: redisClient, ttl: ttl}
}

func key(userID string) string {
	return keyPrefix + userID
}

// Register stores the user's device token. An identical token is a no-op;
// a different token replaces the stored one wholesale.
func (s *Store) Register(ctx context.Context, userID, deviceToken string) error {
	deviceToken = strings.TrimSpace(deviceToken)
	if deviceToken == "" {
		return ErrBlankToken
	}

	current, err := s.redis.Get(ctx, key(userID)).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to read device token: %w", err)
	}

	if err == nil && current == deviceToken {
		slog.Debug("Device token unchanged", "user_id", userID)
		return nil
	}

	if err == nil {
		// Evict the old token before storing the replacement.
		if delErr := s.redis.Del(ctx, key(userID)).Err(); delErr != nil {
			return fmt.Errorf("failed to evict old device token: %w", delErr)
		}
		slog.Info("Replaced device token", "user_id", userID)
	}

	if err := s.redis.Set(ctx, key(userID), deviceToken, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store device token: %w", err)
	}

	slog.Info("Registered device token", "user_id", userID, "ttl", s.ttl.String())
	return nil
}

// Get returns the user's current token, refreshing its TTL. A missing token
// returns ("", false, nil): the user may be on a live stream instead, or may
// never have registered a device.
func (s *Store) Get(ctx context.Context, userID string) (string, bool, error) {
	deviceToken, err := s.redis.GetEx(ctx, key(userID), s.ttl).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read device token: %w", err)
	}
	return deviceToken, true, nil
}

// Delete removes the user's token, if any.
func (s *Store) Delete(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete device token: %w", err)
	}
	return nil
}
