package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"invoiceku/backend/internal/domain"
)

type RedisInvoiceListCache struct {
	client *redis.Client
}

func NewRedisInvoiceListCache(addr string, password string, db int) *RedisInvoiceListCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisInvoiceListCache{client: client}
}

func (c *RedisInvoiceListCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisInvoiceListCache) Close() error {
	return c.client.Close()
}

func (c *RedisInvoiceListCache) Get(ctx context.Context, key string) ([]domain.InvoiceVersion, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entries []domain.InvoiceVersion
	if err := json.Unmarshal([]byte(val), &entries); err != nil {
		return nil, false, err
	}
	return entries, true, nil
}

func (c *RedisInvoiceListCache) Set(ctx context.Context, key string, entries []domain.InvoiceVersion, ttl time.Duration) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func (c *RedisInvoiceListCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
