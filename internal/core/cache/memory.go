package cache

import (
	"context"
	"sync"
	"time"

	"recipe-importer/internal/pkg/common"

	"go.uber.org/zap"
)

// MemoryOptions 記憶體快取設定
type MemoryOptions struct {
	MaxSize         int
	TTL             time.Duration
	CleanupInterval time.Duration
}

// Memory 帶 TTL 與 LRU 淘汰的記憶體快取
type Memory struct {
	opts  MemoryOptions
	mu    sync.Mutex
	store map[string]entry
	stats Stats
	done  chan struct{}
	once  sync.Once
}

type entry struct {
	value       string
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// NewMemory 建立記憶體快取，CleanupInterval > 0 時啟動背景清理
func NewMemory(opts MemoryOptions) *Memory {
	if opts.MaxSize <= 0 {
		opts.MaxSize = 1000
	}
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	m := &Memory{
		opts:  opts,
		store: make(map[string]entry),
		stats: Stats{Backend: "memory", MaxSize: opts.MaxSize},
		done:  make(chan struct{}),
	}
	if opts.CleanupInterval > 0 {
		go m.startCleanup()
	}

	common.LogInfo("memory cache initialised",
		zap.Int("max_size", opts.MaxSize),
		zap.Duration("ttl", opts.TTL),
		zap.Duration("cleanup_interval", opts.CleanupInterval),
	)
	return m
}

// Get 取得快取值
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.store[key]
	if !ok {
		m.stats.Misses++
		return "", ErrMiss
	}
	now := time.Now()
	if now.After(e.expiresAt) {
		delete(m.store, key)
		m.stats.Evictions++
		m.stats.Misses++
		return "", ErrMiss
	}

	e.lastAccess = now
	e.accessCount++
	m.store[key] = e
	m.stats.Hits++
	return e.value, nil
}

// Set 寫入快取值；已滿時先清除過期項目，再以 LRU 淘汰
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.store[key]; !exists && len(m.store) >= m.opts.MaxSize {
		if evicted := m.cleanup(); evicted > 0 {
			common.LogDebug("cache cleanup", zap.Int("evicted", evicted))
		}
		if len(m.store) >= m.opts.MaxSize {
			m.evictLRU()
		}
	}

	now := time.Now()
	m.store[key] = entry{
		value:      value,
		expiresAt:  now.Add(m.opts.TTL),
		lastAccess: now,
	}
	return nil
}

// Stats 回傳統計
func (m *Memory) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.stats
	s.Size = len(m.store)
	s.HitRatio = ratio(s.Hits, s.Misses)
	return s
}

// Close 停止背景清理並清空快取
func (m *Memory) Close() error {
	m.once.Do(func() { close(m.done) })

	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = make(map[string]entry)
	common.LogInfo("memory cache closed",
		zap.Int64("hits", m.stats.Hits),
		zap.Int64("misses", m.stats.Misses),
		zap.Int64("evictions", m.stats.Evictions),
	)
	return nil
}

func (m *Memory) startCleanup() {
	ticker := time.NewTicker(m.opts.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.cleanup()
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}

// cleanup 清除過期項目，呼叫端須持有鎖
func (m *Memory) cleanup() int {
	now := time.Now()
	count := 0
	for key, e := range m.store {
		if now.After(e.expiresAt) {
			delete(m.store, key)
			count++
		}
	}
	m.stats.Evictions += int64(count)
	return count
}

// evictLRU 淘汰存取次數最少、最久未存取的項目，呼叫端須持有鎖
func (m *Memory) evictLRU() {
	var oldestKey string
	var oldestAccess time.Time
	lowestCount := 0

	for key, e := range m.store {
		if oldestKey == "" ||
			e.accessCount < lowestCount ||
			(e.accessCount == lowestCount && e.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = e.lastAccess
			lowestCount = e.accessCount
		}
	}
	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.Evictions++
	}
}
