package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/safeledger/dashboard/internal/core/domain"
	"github.com/safeledger/dashboard/internal/core/ports"
)

const defaultBannerTTL = 5 * time.Second

var bannerKinds = []domain.BannerKind{domain.BannerSuccess, domain.BannerError}

// BannerStore keeps the latest banner of each kind until it expires.
// Key format: banner:<session_id>:<kind>
type BannerStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBannerStore creates a BannerStore. A ttl <= 0 uses the default of five seconds.
func NewBannerStore(client *redis.Client, ttl time.Duration) ports.BannerStore {
	if ttl <= 0 {
		ttl = defaultBannerTTL
	}
	return &BannerStore{client: client, ttl: ttl}
}

func (b *BannerStore) Push(ctx context.Context, sessionID string, banner domain.Banner) error {
	return b.client.Set(ctx, bannerKey(sessionID, banner.Kind), banner.Message, b.ttl).Err()
}

func (b *BannerStore) Active(ctx context.Context, sessionID string) ([]domain.Banner, error) {
	keys := make([]string, len(bannerKinds))
	for i, k := range bannerKinds {
		keys[i] = bannerKey(sessionID, k)
	}
	vals, err := b.client.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read banners: %w", err)
	}

	out := make([]domain.Banner, 0, len(vals))
	for i, v := range vals {
		msg, ok := v.(string)
		if !ok || msg == "" {
			continue
		}
		out = append(out, domain.Banner{Kind: bannerKinds[i], Message: msg})
	}
	return out, nil
}

func bannerKey(sessionID string, kind domain.BannerKind) string {
	return "banner:" + sessionID + ":" + string(kind)
}
