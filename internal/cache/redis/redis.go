package redis

import (
	"context"
	"errors"
	"fmt"

	"sticker-processor/internal/cache"
	"sticker-processor/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "sticker:upload:"

// Cache stores fingerprint -> content URI mappings in Redis. Entries are
// kept without a TTL; an uploaded sticker stays deduplicated for as long as
// the remote store keeps it.
type Cache struct {
	client *redis.Client
}

func New(addr, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Cache{client: client}, nil
}

func (c *Cache) Get(ctx context.Context, fingerprint string) (domain.ContentURI, error) {
	val, err := c.client.Get(ctx, keyPrefix+fingerprint).Result()
	if errors.Is(err, redis.Nil) {
		return "", cache.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", cache.ErrDatabase, err)
	}
	return domain.ContentURI(val), nil
}

func (c *Cache) Add(ctx context.Context, fingerprint string, uri domain.ContentURI) error {
	if err := c.client.Set(ctx, keyPrefix+fingerprint, uri.String(), 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", cache.ErrDatabase, err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}
