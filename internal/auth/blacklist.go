package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistKeyPrefix = "auth:blacklist:"

// TokenBlacklist stores revoked token IDs in Redis until they would have
// expired anyway. A nil client disables revocation checks (dev mode).
type TokenBlacklist struct {
	client *redis.Client
}

// NewTokenBlacklist builds the blacklist.
func NewTokenBlacklist(client *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{client: client}
}

// Revoke marks a token ID as unusable for the given remaining lifetime.
func (b *TokenBlacklist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if b == nil || b.client == nil || tokenID == "" {
		return nil
	}
	if ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, blacklistKeyPrefix+tokenID, "1", ttl).Err()
}

// IsRevoked reports whether a token ID has been revoked.
func (b *TokenBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if b == nil || b.client == nil || tokenID == "" {
		return false, nil
	}
	_, err := b.client.Get(ctx, blacklistKeyPrefix+tokenID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
