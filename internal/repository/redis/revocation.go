package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/arklim/token-revocation/internal/core/port"
	"github.com/arklim/token-revocation/internal/repository"
)

const defaultRevocationPrefix = "blacklist"

// revokedMarker is the value stored under each revoked JTI. Only key existence
// carries meaning; the value itself is never read back.
const revokedMarker = "1"

// RevocationRepository manages token revocation state backed by Redis.
// Expiry is delegated to Redis through the TTL attached on write.
type RevocationRepository struct {
	client *red.Client
	prefix string
}

// NewRevocationRepository wires a Redis client into a revocation repository.
// Keys are namespaced under keyPrefix to avoid collisions in a shared keyspace.
func NewRevocationRepository(client *red.Client, keyPrefix string) *RevocationRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultRevocationPrefix
	}

	return &RevocationRepository{client: client, prefix: prefix}
}

// MarkRevoked stores the supplied JTI with a TTL matching the remaining token
// lifetime. A zero ttl means the revocation is already lapsed: the key is
// deleted so a rewrite of a live entry still honours last-write-wins. A
// negative ttl is rejected.
func (r *RevocationRepository) MarkRevoked(ctx context.Context, jti string, ttl time.Duration) error {
	key := r.key(jti)
	if key == "" {
		return fmt.Errorf("%w: jti must not be empty", repository.ErrInvalidArgument)
	}
	if ttl < 0 {
		return fmt.Errorf("%w: ttl must not be negative", repository.ErrInvalidArgument)
	}
	if ttl == 0 {
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis del revoked jti: %w: %w", repository.ErrBackendUnreachable, err)
		}
		return nil
	}

	if err := r.client.Set(ctx, key, revokedMarker, ttl).Err(); err != nil {
		return fmt.Errorf("redis set revoked jti: %w: %w", repository.ErrBackendUnreachable, err)
	}

	return nil
}

// IsRevoked reports whether the JTI has a live revocation entry. Unknown and
// expired identifiers are a normal miss, never an error.
func (r *RevocationRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	key := r.key(jti)
	if key == "" {
		return false, fmt.Errorf("%w: jti must not be empty", repository.ErrInvalidArgument)
	}

	count, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists revoked jti: %w: %w", repository.ErrBackendUnreachable, err)
	}

	return count > 0, nil
}

func (r *RevocationRepository) key(jti string) string {
	trimmed := strings.TrimSpace(jti)
	if trimmed == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", r.prefix, trimmed)
}

var _ port.RevocationStore = (*RevocationRepository)(nil)
