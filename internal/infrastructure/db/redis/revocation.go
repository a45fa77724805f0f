package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRevocationList remembers logged-out session tokens until they expire.
// Key format: revoked:<token_id>
type TokenRevocationList struct {
	client *redis.Client
	now    func() time.Time
}

func NewTokenRevocationList(client *redis.Client) *TokenRevocationList {
	return &TokenRevocationList{client: client, now: time.Now}
}

// Revoke marks tokenID as revoked. The key lives until the token would have
// expired on its own; already expired tokens are not stored.
func (l *TokenRevocationList) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(l.now())
	if ttl <= 0 {
		return nil
	}
	if err := l.client.Set(ctx, l.key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID has been revoked.
func (l *TokenRevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := l.client.Exists(ctx, l.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

func (l *TokenRevocationList) key(tokenID string) string {
	return "revoked:" + tokenID
}
