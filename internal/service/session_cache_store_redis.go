package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisSessionCacheStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisSessionCacheStore(client redis.UniversalClient, prefix string) *RedisSessionCacheStore {
	if prefix == "" {
		prefix = "session_cache"
	}
	return &RedisSessionCacheStore{client: client, prefix: prefix}
}

func (s *RedisSessionCacheStore) dataKey(key string) string {
	return s.prefix + ":" + key
}

func (s *RedisSessionCacheStore) indexKey() string {
	return s.prefix + ":index"
}

func (s *RedisSessionCacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.client == nil {
		return nil, false, nil
	}
	val, err := s.client.Get(ctx, s.dataKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (s *RedisSessionCacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.client == nil || ttl <= 0 {
		return nil
	}
	dataKey := s.dataKey(key)
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, dataKey, value, ttl)
	pipe.SAdd(ctx, s.indexKey(), dataKey)
	pipe.Expire(ctx, s.indexKey(), ttl+time.Minute)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisSessionCacheStore) Invalidate(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	keys, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	pipe := s.client.TxPipeline()
	if len(keys) > 0 {
		pipe.Del(ctx, keys...)
	}
	pipe.Del(ctx, s.indexKey())
	_, err = pipe.Exec(ctx)
	return err
}
