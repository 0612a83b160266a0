package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/imposter-project/imposter-expect/pkg/logger"
)

const defaultRedisExpiry = 30 * time.Minute

type RedisStoreProvider struct {
	keys     keyPrefixer
	addr     string
	password string
	expiry   time.Duration
	client   *redis.Client
}

func (p *RedisStoreProvider) InitStores(ctx context.Context) error {
	if p.addr == "" {
		return errors.New("redis address is required")
	}
	if p.expiry <= 0 {
		p.expiry = defaultRedisExpiry
	}
	p.client = redis.NewClient(&redis.Options{
		Addr:     p.addr,
		Password: p.password,
		DB:       0,
	})
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis at %s: %w", p.addr, err)
	}
	logger.Debugf("connected to redis at %s", p.addr)
	return nil
}

func (p *RedisStoreProvider) GetValue(ctx context.Context, storeName, key string) ([]byte, bool, error) {
	val, err := p.client.HGet(ctx, storeName, p.keys.apply(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("failed to get item: %w", err)
	}
	return val, true, nil
}

func (p *RedisStoreProvider) StoreValue(ctx context.Context, storeName, key string, value []byte) error {
	if err := p.client.HSet(ctx, storeName, p.keys.apply(key), value).Err(); err != nil {
		return fmt.Errorf("failed to set item: %w", err)
	}
	if err := p.client.Expire(ctx, storeName, p.expiry).Err(); err != nil {
		logger.Warnf("failed to set expiration on %s: %v", storeName, err)
	}
	return nil
}

func (p *RedisStoreProvider) GetAllValues(ctx context.Context, storeName, keyPrefix string) ([]Item, error) {
	keyPrefix = p.keys.apply(keyPrefix)
	vals, err := p.client.HGetAll(ctx, storeName).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	items := make([]Item, 0, len(vals))
	for key, val := range vals {
		if strings.HasPrefix(key, keyPrefix) {
			items = append(items, Item{Key: p.keys.remove(key), Value: []byte(val)})
		}
	}
	sortItems(items)
	return items, nil
}

func (p *RedisStoreProvider) DeleteValue(ctx context.Context, storeName, key string) error {
	if err := p.client.HDel(ctx, storeName, p.keys.apply(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

func (p *RedisStoreProvider) DeleteStore(ctx context.Context, storeName string) error {
	if err := p.client.Del(ctx, storeName).Err(); err != nil {
		return fmt.Errorf("failed to delete store: %w", err)
	}
	return nil
}
