package checklist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// SQLiteStore 以 SQLite 儲存勾選狀態
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
}

// OpenSQLite 開啟 SQLite 資料庫並啟用 WAL，ttl 為 0 時不過期
func OpenSQLite(ctx context.Context, path string, ttl time.Duration) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db, ttl: ttl}
	if n, err := s.Purge(ctx); err != nil {
		db.Close()
		return nil, err
	} else if n > 0 {
		common.LogInfo("已清除過期的勾選狀態", zap.Int64("count", n))
	}
	return s, nil
}

// initSchema 建立資料表
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS checklists (
	list_key TEXT PRIMARY KEY,
	state TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_checklists_updated_at ON checklists(updated_at);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to init checklist schema: %w", err)
	}
	return nil
}

// Get 取得勾選狀態，過期的資料視為不存在
func (s *SQLiteStore) Get(ctx context.Context, listKey string) (map[string]bool, error) {
	var raw string
	var updatedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT state, updated_at FROM checklists WHERE list_key = ?`, listKey,
	).Scan(&raw, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checklist: %w", err)
	}

	if s.ttl > 0 && time.Since(time.UnixMilli(updatedAt)) > s.ttl {
		return map[string]bool{}, nil
	}

	var state map[string]bool
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checklist: %w", err)
	}
	return copyState(state), nil
}

// Set 覆寫勾選狀態
func (s *SQLiteStore) Set(ctx context.Context, listKey string, state map[string]bool) error {
	data, err := json.Marshal(copyState(state))
	if err != nil {
		return fmt.Errorf("failed to marshal checklist: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO checklists (list_key, state, updated_at) VALUES (?, ?, ?)
ON CONFLICT(list_key) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		listKey, string(data), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to set checklist: %w", err)
	}
	return nil
}

// Clear 刪除勾選狀態
func (s *SQLiteStore) Clear(ctx context.Context, listKey string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM checklists WHERE list_key = ?`, listKey); err != nil {
		return fmt.Errorf("failed to clear checklist: %w", err)
	}
	return nil
}

// Purge 刪除過期資料，回傳刪除筆數
func (s *SQLiteStore) Purge(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-s.ttl).UnixMilli()
	res, err := s.db.ExecContext(ctx, `DELETE FROM checklists WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge checklists: %w", err)
	}
	return res.RowsAffected()
}

// Ping 檢查資料庫連線
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close 關閉資料庫
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
