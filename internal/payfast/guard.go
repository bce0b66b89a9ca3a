package payfast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/localpop/localpop-backend/pkg/redis"
)

const replayGuardScope = "payfast-itn"

// RedisReplayGuard remembers gateway payment ids in Redis so duplicate
// notifications short-circuit before touching the database. Losing a key
// is safe: the purchase state machine stays authoritative.
type RedisReplayGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

// NewRedisReplayGuard builds a guard over the shared Redis client.
func NewRedisReplayGuard(store redis.IdempotencyStore, ttl time.Duration) (*RedisReplayGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl <= 0 {
		return nil, errors.New("ttl must be positive")
	}
	return &RedisReplayGuard{store: store, ttl: ttl}, nil
}

// CheckAndMark reports whether the payment id was already seen, marking it
// in the same round trip.
func (g *RedisReplayGuard) CheckAndMark(ctx context.Context, paymentID string) (bool, error) {
	if paymentID == "" {
		return false, errors.New("payment id is required")
	}
	key := g.store.IdempotencyKey(replayGuardScope, paymentID)
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set replay key: %w", err)
	}
	return !set, nil
}

// Delete releases a previously marked payment id so the gateway's retry of
// a failed delivery is not misread as a duplicate.
func (g *RedisReplayGuard) Delete(ctx context.Context, paymentID string) error {
	if paymentID == "" {
		return errors.New("payment id is required")
	}
	key := g.store.IdempotencyKey(replayGuardScope, paymentID)
	return g.store.Del(ctx, key)
}
