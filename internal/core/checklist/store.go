package checklist

import (
	"context"
	"fmt"

	"meal-planner/internal/infrastructure/config"
)

// Store 勾選狀態的鍵值儲存，值為「正規化食材名稱 → 是否已勾選」
//
// 不存在的 listKey 回傳空 map 而非錯誤。
type Store interface {
	Get(ctx context.Context, listKey string) (map[string]bool, error)
	Set(ctx context.Context, listKey string, state map[string]bool) error
	Clear(ctx context.Context, listKey string) error
	Close() error
}

// Pinger 可檢查連線狀態的儲存後端
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewStore 依設定選擇儲存後端
func NewStore(ctx context.Context, cfg *config.ChecklistConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		s, err := NewRedisStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendSQLite:
		s, err := OpenSQLite(ctx, cfg.SQLitePath, cfg.TTL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendMemory, "":
		return NewMemoryStore(cfg), nil
	default:
		return nil, fmt.Errorf("unknown checklist backend %q", cfg.Backend)
	}
}

// copyState 複製狀態並只保留已勾選的項目
func copyState(state map[string]bool) map[string]bool {
	out := make(map[string]bool, len(state))
	for k, v := range state {
		if v {
			out[k] = true
		}
	}
	return out
}
