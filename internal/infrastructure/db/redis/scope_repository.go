package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/safeledger/dashboard/internal/core/ports"
)

// ScopeRepository persists the selected company of each session.
// Key format: scope:<session_id>, expiring together with the session.
type ScopeRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewScopeRepository creates a ScopeRepository wrapping the given Redis client.
func NewScopeRepository(client *redis.Client, ttl time.Duration) ports.ScopeRepository {
	return &ScopeRepository{client: client, ttl: ttl}
}

func (r *ScopeRepository) Get(ctx context.Context, sessionID string) (string, error) {
	v, err := r.client.Get(ctx, scopeKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get scope: %w", err)
	}
	return v, nil
}

func (r *ScopeRepository) Set(ctx context.Context, sessionID, companyID string) error {
	return r.client.Set(ctx, scopeKey(sessionID), companyID, r.ttl).Err()
}

func (r *ScopeRepository) Clear(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, scopeKey(sessionID)).Err()
}

func scopeKey(sessionID string) string {
	return "scope:" + sessionID
}
