// Package cache 提供分類結果與網頁擷取結果的快取，後端可選記憶體或 Redis。
package cache

import (
	"context"
	"errors"
	"fmt"

	"recipe-importer/internal/infrastructure/config"
	"recipe-importer/internal/pkg/common"
)

// ErrMiss 快取未命中
var ErrMiss = errors.New("cache miss")

// Store 快取介面
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Stats 快取統計
type Stats struct {
	Backend   string  `json:"backend"`
	Size      int     `json:"size"`
	MaxSize   int     `json:"max_size,omitempty"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	Errors    int64   `json:"errors"`
	HitRatio  float64 `json:"hit_ratio"`
}

// StatsProvider 可回報統計的快取
type StatsProvider interface {
	Stats() Stats
}

// Key 以命名空間與內容雜湊組成快取鍵
func Key(namespace, content string) string {
	return fmt.Sprintf("recipe-importer:%s:%s", namespace, common.HashString(content))
}

// New 依設定建立快取；停用時回傳 Noop
func New(ctx context.Context, cfg config.CacheConfig) (Store, error) {
	if !cfg.Enabled {
		common.LogInfo("cache disabled")
		return Noop{}, nil
	}
	switch cfg.Backend {
	case "redis":
		return NewRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.TTL,
		})
	case "memory", "":
		return NewMemory(MemoryOptions{
			MaxSize:         cfg.MaxSize,
			TTL:             cfg.TTL,
			CleanupInterval: cfg.CleanupInterval,
		}), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Noop 永遠未命中的快取
type Noop struct{}

func (Noop) Get(context.Context, string) (string, error) { return "", ErrMiss }

func (Noop) Set(context.Context, string, string) error { return nil }

func ratio(hits, misses int64) float64 {
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}
