package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist records access tokens revoked before their natural
// expiry. Entries are keyed by the token string itself and carry a TTL
// equal to the token's remaining validity, so the registry never grows
// beyond the set of tokens that would still verify.
type TokenBlacklist struct{ RDB *redis.Client }

func NewTokenBlacklist(rdb *redis.Client) *TokenBlacklist { return &TokenBlacklist{RDB: rdb} }

// ErrBlacklistUnavailable is returned when the registry cannot be
// consulted. The auth gate treats this as an authentication failure:
// serving a possibly revoked token is worse than rejecting a valid one.
var ErrBlacklistUnavailable = errors.New("token blacklist unavailable")

const blacklistValue = "blacklisted"

// Revoke stores the token as blacklisted for ttl. A non-positive ttl is
// a no-op: an already-expired token fails verification anyway and need
// not be tracked.
func (b *TokenBlacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if b == nil || b.RDB == nil {
		return ErrBlacklistUnavailable
	}
	return b.RDB.Set(ctx, token, blacklistValue, ttl).Err()
}

// IsRevoked reports whether the token has been blacklisted. An error
// means the registry could not answer and callers must fail closed.
func (b *TokenBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	if b == nil || b.RDB == nil {
		return false, ErrBlacklistUnavailable
	}
	n, err := b.RDB.Exists(ctx, token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
