package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisOptions Redis 快取設定
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Redis 以 Redis 為後端的快取
type Redis struct {
	client *redis.Client
	ttl    time.Duration

	hits   int64
	misses int64
	errors int64
}

// NewRedis 連線並以 PING 確認可用
func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisWithClient(client, opts.TTL), nil
}

// NewRedisWithClient 使用既有的 client
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Get 取得快取值
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			atomic.AddInt64(&r.misses, 1)
			return "", ErrMiss
		}
		atomic.AddInt64(&r.errors, 1)
		return "", fmt.Errorf("failed to get cache: %w", err)
	}
	atomic.AddInt64(&r.hits, 1)
	return val, nil
}

// Set 寫入快取值
func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, r.ttl).Err(); err != nil {
		atomic.AddInt64(&r.errors, 1)
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Stats 回傳統計；Size 取自 DBSIZE，失敗時為 0
func (r *Redis) Stats() Stats {
	hits := atomic.LoadInt64(&r.hits)
	misses := atomic.LoadInt64(&r.misses)
	size, _ := r.client.DBSize(context.Background()).Result()
	return Stats{
		Backend:  "redis",
		Size:     int(size),
		Hits:     hits,
		Misses:   misses,
		Errors:   atomic.LoadInt64(&r.errors),
		HitRatio: ratio(hits, misses),
	}
}

// Close 關閉連線
func (r *Redis) Close() error {
	return r.client.Close()
}
