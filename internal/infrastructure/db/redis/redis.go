package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const dialTimeout = 5 * time.Second

// Config holds the session store connection settings. Addr may be a plain
// host:port or a redis:// URL; in the URL form Password and DB are taken from the URL.
type Config struct {
	Addr     string
	Password string
	DB       int
}

func (c Config) options() (*redis.Options, error) {
	if strings.HasPrefix(c.Addr, "redis://") || strings.HasPrefix(c.Addr, "rediss://") {
		opt, err := redis.ParseURL(c.Addr)
		if err != nil {
			return nil, fmt.Errorf("redis url: %w", err)
		}
		return opt, nil
	}
	return &redis.Options{
		Addr:        c.Addr,
		Password:    c.Password,
		DB:          c.DB,
		DialTimeout: dialTimeout,
	}, nil
}

// Connect returns a client for the store holding sessions, scopes and banners.
// The client is closed again when the first ping fails.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	opt, err := cfg.options()
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", opt.Addr, err)
	}
	return client, nil
}
