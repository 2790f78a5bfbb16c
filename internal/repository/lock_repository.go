package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConversionLockRepository serialises concurrent conversion attempts for the
// same simplified enrollment using a Redis SET NX lock. The TTL bounds how
// long a crashed conversion can block retries. A nil client degrades to
// always acquiring, leaving correctness to the database unique constraint.
type ConversionLockRepository struct {
	client *redis.Client
}

// NewConversionLockRepository constructs the repository.
func NewConversionLockRepository(client *redis.Client) *ConversionLockRepository {
	return &ConversionLockRepository{client: client}
}

func lockKey(simplifiedID int64) string {
	return fmt.Sprintf("conversion:lock:%d", simplifiedID)
}

// Acquire attempts to take the lock, returning false when another conversion
// holds it.
func (r *ConversionLockRepository) Acquire(ctx context.Context, simplifiedID int64, ttl time.Duration) (bool, error) {
	if r.client == nil {
		return true, nil
	}
	ok, err := r.client.SetNX(ctx, lockKey(simplifiedID), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire conversion lock: %w", err)
	}
	return ok, nil
}

// Release frees the lock after the conversion finishes.
func (r *ConversionLockRepository) Release(ctx context.Context, simplifiedID int64) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, lockKey(simplifiedID)).Err(); err != nil {
		return fmt.Errorf("release conversion lock: %w", err)
	}
	return nil
}
