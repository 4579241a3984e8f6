package service

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Deduper reports whether an event key is seen for the first time.
type Deduper interface {
	FirstDelivery(ctx context.Context, key string) (bool, error)
}

// RedisDeduper records delivered event keys with SETNX.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl, prefix: "trigger:"}
}

func (d *RedisDeduper) FirstDelivery(ctx context.Context, key string) (bool, error) {
	return d.client.SetNX(ctx, d.prefix+key, 1, d.ttl).Result()
}
