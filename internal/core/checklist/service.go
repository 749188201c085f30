package checklist

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"sync"

	"meal-planner/internal/pkg/common"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// MaxListKeyLength 清單鍵最大長度
const MaxListKeyLength = 128

// Service 勾選狀態服務
type Service struct {
	store Store

	// Toggle 與 SetItem 為讀取後寫入，需序列化
	mu sync.Mutex

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

// NewService 創建勾選狀態服務
func NewService(store Store) *Service {
	return &Service{
		store:   store,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Store 底層儲存
func (s *Service) Store() Store {
	return s.store
}

// NewListKey 產生新的清單鍵（ULID）
func (s *Service) NewListKey() string {
	s.entropyMu.Lock()
	defer s.entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), s.entropy).String()
}

// ValidateListKey 清單鍵須為 1 到 128 個英數字、底線或連字號
func ValidateListKey(key string) error {
	if key == "" {
		return common.ErrInvalidListKey.Wrap(fmt.Errorf("list key is required"))
	}
	if len(key) > MaxListKeyLength {
		return common.ErrInvalidListKey.Wrap(fmt.Errorf("list key exceeds %d characters", MaxListKeyLength))
	}
	for _, r := range key {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '-') {
			return common.ErrInvalidListKey.Wrap(fmt.Errorf("list key contains invalid character %q", r))
		}
	}
	return nil
}

// State 取得清單的勾選狀態
func (s *Service) State(ctx context.Context, listKey string) (map[string]bool, error) {
	if err := ValidateListKey(listKey); err != nil {
		return nil, err
	}
	state, err := s.store.Get(ctx, listKey)
	if err != nil {
		return nil, common.ErrChecklistStore.Wrap(err)
	}
	return state, nil
}

// Replace 以新狀態覆寫整份清單
func (s *Service) Replace(ctx context.Context, listKey string, state map[string]bool) (map[string]bool, error) {
	if err := ValidateListKey(listKey); err != nil {
		return nil, err
	}
	clean := make(map[string]bool, len(state))
	for item, checked := range state {
		item = strings.TrimSpace(item)
		if item == "" {
			return nil, common.NewValidationError("item name must not be empty")
		}
		if checked {
			clean[item] = true
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Set(ctx, listKey, clean); err != nil {
		return nil, common.ErrChecklistStore.Wrap(err)
	}
	return clean, nil
}

// SetItem 設定單一項目的勾選狀態
func (s *Service) SetItem(ctx context.Context, listKey, item string, checked bool) (map[string]bool, error) {
	return s.update(ctx, listKey, item, func(bool) bool { return checked })
}

// Toggle 切換單一項目的勾選狀態，回傳切換後的值
func (s *Service) Toggle(ctx context.Context, listKey, item string) (bool, error) {
	var result bool
	_, err := s.update(ctx, listKey, item, func(current bool) bool {
		result = !current
		return result
	})
	return result, err
}

// Clear 清除整份清單
func (s *Service) Clear(ctx context.Context, listKey string) error {
	if err := ValidateListKey(listKey); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Clear(ctx, listKey); err != nil {
		return common.ErrChecklistStore.Wrap(err)
	}
	common.LogDebug("勾選狀態已清除", zap.String("list_key", listKey))
	return nil
}

// update 在鎖內讀取、修改並寫回
func (s *Service) update(ctx context.Context, listKey, item string, next func(bool) bool) (map[string]bool, error) {
	if err := ValidateListKey(listKey); err != nil {
		return nil, err
	}
	item = strings.TrimSpace(item)
	if item == "" {
		return nil, common.NewValidationError("item is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.Get(ctx, listKey)
	if err != nil {
		return nil, common.ErrChecklistStore.Wrap(err)
	}
	if next(state[item]) {
		state[item] = true
	} else {
		delete(state, item)
	}
	if err := s.store.Set(ctx, listKey, state); err != nil {
		return nil, common.ErrChecklistStore.Wrap(err)
	}
	return state, nil
}
