package checklist

import (
	"context"
	"sync"
	"time"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// MemoryStore 記憶體勾選狀態儲存，支援 TTL、容量上限與定期清理
type MemoryStore struct {
	ttl     time.Duration
	maxSize int

	mu    sync.RWMutex
	store map[string]memoryEntry
	stats memoryStats

	done      chan struct{}
	closeOnce sync.Once
}

// memoryEntry 儲存條目
type memoryEntry struct {
	state       map[string]bool
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// memoryStats 儲存統計
type memoryStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewMemoryStore 創建記憶體儲存並啟動清理協程
func NewMemoryStore(cfg *config.ChecklistConfig) *MemoryStore {
	m := &MemoryStore{
		ttl:     cfg.TTL,
		maxSize: cfg.MaxSize,
		store:   make(map[string]memoryEntry),
		done:    make(chan struct{}),
	}

	if cfg.CleanupInterval > 0 {
		go m.startCleanup(cfg.CleanupInterval)
	}

	common.LogInfo("勾選狀態記憶體儲存已初始化",
		zap.Int("最大容量", cfg.MaxSize),
		zap.Duration("存活時間", cfg.TTL),
		zap.Duration("清理間隔", cfg.CleanupInterval),
	)
	return m
}

// Get 取得勾選狀態
func (m *MemoryStore) Get(ctx context.Context, listKey string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.store[listKey]
	if !ok {
		m.stats.misses++
		return map[string]bool{}, nil
	}
	if m.expired(entry, time.Now()) {
		delete(m.store, listKey)
		m.stats.evictions++
		m.stats.misses++
		return map[string]bool{}, nil
	}

	entry.lastAccess = time.Now()
	entry.accessCount++
	m.store[listKey] = entry
	m.stats.hits++
	return copyState(entry.state), nil
}

// Set 覆寫勾選狀態，容量已滿時先清理過期項目再淘汰最少使用者
func (m *MemoryStore) Set(ctx context.Context, listKey string, state map[string]bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.store[listKey]; !exists && m.maxSize > 0 && len(m.store) >= m.maxSize {
		if evicted := m.cleanup(); evicted > 0 {
			common.LogDebug("勾選狀態清理執行", zap.Int("清理數量", evicted))
		}
		for len(m.store) >= m.maxSize {
			m.evictLRU()
		}
	}

	now := time.Now()
	entry := memoryEntry{
		state:      copyState(state),
		lastAccess: now,
	}
	if m.ttl > 0 {
		entry.expiresAt = now.Add(m.ttl)
	}
	if prev, ok := m.store[listKey]; ok {
		entry.accessCount = prev.accessCount
	}
	m.store[listKey] = entry
	return nil
}

// Clear 刪除勾選狀態
func (m *MemoryStore) Clear(ctx context.Context, listKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, listKey)
	return nil
}

// Len 目前儲存的清單數量
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

// GetStats 取得儲存統計資訊
func (m *MemoryStore) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"size":      len(m.store),
		"max_size":  m.maxSize,
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"evictions": m.stats.evictions,
	}
}

// Close 停止清理協程並清空儲存
func (m *MemoryStore) Close() error {
	m.closeOnce.Do(func() {
		close(m.done)

		m.mu.Lock()
		m.store = make(map[string]memoryEntry)
		stats := m.stats
		m.mu.Unlock()

		common.LogInfo("勾選狀態記憶體儲存已關閉",
			zap.Int64("命中次數", stats.hits),
			zap.Int64("未命中次數", stats.misses),
			zap.Int64("淘汰次數", stats.evictions),
		)
	})
	return nil
}

func (m *MemoryStore) expired(entry memoryEntry, now time.Time) bool {
	return !entry.expiresAt.IsZero() && now.After(entry.expiresAt)
}

// startCleanup 定期清理過期項目
func (m *MemoryStore) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.mu.Lock()
			count := m.cleanup()
			size := len(m.store)
			m.mu.Unlock()

			if count > 0 {
				common.LogInfo("Cleaned up expired checklists",
					zap.Int("count", count),
					zap.Int("remaining_size", size),
				)
			}
		}
	}
}

// cleanup 清理過期項目，呼叫者須持有寫鎖
func (m *MemoryStore) cleanup() int {
	now := time.Now()
	count := 0
	for key, entry := range m.store {
		if m.expired(entry, now) {
			delete(m.store, key)
			count++
			m.stats.evictions++
		}
	}
	return count
}

// evictLRU 淘汰存取次數最少、最久未存取的項目，呼叫者須持有寫鎖
func (m *MemoryStore) evictLRU() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestAccessCount int

	for key, entry := range m.store {
		if oldestKey == "" ||
			entry.accessCount < lowestAccessCount ||
			(entry.accessCount == lowestAccessCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestAccessCount = entry.accessCount
		}
	}

	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.evictions++
		common.LogDebug("勾選狀態已淘汰(LRU)", zap.String("list_key", oldestKey))
	}
}
