package cache

import (
	"context"
	"fmt"
	"time"
)

// revokedTokenPrefix is the Redis key prefix for revoked refresh token IDs.
const revokedTokenPrefix = "auth:revoked:"

// RevokeRefreshToken marks the refresh token id as used until ttl elapses.
// It returns false if the token was already revoked, so two concurrent
// refreshes with the same token cannot both succeed.
func (c *Cache) RevokeRefreshToken(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		// Already expired; nothing to remember.
		return true, nil
	}
	ok, err := c.client.SetNX(ctx, revokedTokenPrefix+tokenID, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("revoke refresh token: %w", err)
	}
	return ok, nil
}

// IsRefreshTokenRevoked reports whether the refresh token id was revoked.
func (c *Cache) IsRefreshTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := c.client.Exists(ctx, revokedTokenPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("check refresh token: %w", err)
	}
	return n > 0, nil
}
