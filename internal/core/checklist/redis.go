package checklist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"meal-planner/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
)

// RedisStore 以 Redis 儲存勾選狀態，每個清單一個 JSON 值
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore 創建 Redis 儲存並測試連線
func NewRedisStore(ctx context.Context, cfg *config.ChecklistConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, ttl: cfg.TTL}, nil
}

// Get 取得勾選狀態
func (s *RedisStore) Get(ctx context.Context, listKey string) (map[string]bool, error) {
	data, err := s.client.Get(ctx, s.key(listKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return map[string]bool{}, nil
		}
		return nil, fmt.Errorf("failed to get checklist: %w", err)
	}

	var state map[string]bool
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checklist: %w", err)
	}
	return copyState(state), nil
}

// Set 覆寫勾選狀態，TTL 為 0 時不過期
func (s *RedisStore) Set(ctx context.Context, listKey string, state map[string]bool) error {
	data, err := json.Marshal(copyState(state))
	if err != nil {
		return fmt.Errorf("failed to marshal checklist: %w", err)
	}
	if err := s.client.Set(ctx, s.key(listKey), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set checklist: %w", err)
	}
	return nil
}

// Clear 刪除勾選狀態
func (s *RedisStore) Clear(ctx context.Context, listKey string) error {
	if err := s.client.Del(ctx, s.key(listKey)).Err(); err != nil {
		return fmt.Errorf("failed to clear checklist: %w", err)
	}
	return nil
}

// Ping 檢查 Redis 連線
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// key 生成 Redis 鍵
func (s *RedisStore) key(listKey string) string {
	return fmt.Sprintf("checklist:%s", listKey)
}
