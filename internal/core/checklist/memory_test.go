package checklist

import (
	"context"
	"testing"
	"time"

	"meal-planner/internal/infrastructure/config"
)

func newTestMemoryStore(t *testing.T, cfg config.ChecklistConfig) *MemoryStore {
	t.Helper()
	m := NewMemoryStore(&cfg)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestMemoryStoreContract(t *testing.T) {
	m := newTestMemoryStore(t, config.ChecklistConfig{TTL: time.Hour, MaxSize: 100})
	testStoreContract(t, m, "")
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	m := newTestMemoryStore(t, config.ChecklistConfig{TTL: 30 * time.Millisecond, MaxSize: 100})

	if err := m.Set(ctx, "k", map[string]bool{"egg": true}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(60 * time.Millisecond)

	got, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected expired state to be empty, got %v", got)
	}
	if m.Len() != 0 {
		t.Errorf("Expected expired entry to be removed, got %d entries", m.Len())
	}
}

func TestMemoryStoreZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	m := newTestMemoryStore(t, config.ChecklistConfig{MaxSize: 10})

	_ = m.Set(ctx, "k", map[string]bool{"egg": true})
	time.Sleep(10 * time.Millisecond)
	if got, _ := m.Get(ctx, "k"); !got["egg"] {
		t.Error("Expected state to persist without a ttl")
	}
}

func TestMemoryStoreEvictsLeastUsed(t *testing.T) {
	ctx := context.Background()
	m := newTestMemoryStore(t, config.ChecklistConfig{TTL: time.Hour, MaxSize: 2})

	_ = m.Set(ctx, "a", map[string]bool{"a": true})
	_ = m.Set(ctx, "b", map[string]bool{"b": true})
	if _, err := m.Get(ctx, "a"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	_ = m.Set(ctx, "c", map[string]bool{"c": true})

	if m.Len() != 2 {
		t.Fatalf("Expected 2 entries, got %d", m.Len())
	}
	if got, _ := m.Get(ctx, "b"); len(got) != 0 {
		t.Errorf("Expected b to be evicted, got %v", got)
	}
	if got, _ := m.Get(ctx, "a"); !got["a"] {
		t.Error("Expected a to survive eviction")
	}
	if got, _ := m.Get(ctx, "c"); !got["c"] {
		t.Error("Expected c to be stored")
	}

	// 覆寫既有鍵不觸發淘汰
	_ = m.Set(ctx, "a", map[string]bool{"x": true})
	if m.Len() != 2 {
		t.Errorf("Expected overwrite not to evict, got %d entries", m.Len())
	}
}

func TestMemoryStoreCleanupLoop(t *testing.T) {
	ctx := context.Background()
	m := newTestMemoryStore(t, config.ChecklistConfig{
		TTL:             20 * time.Millisecond,
		MaxSize:         100,
		CleanupInterval: 10 * time.Millisecond,
	})

	for _, key := range []string{"a", "b", "c"} {
		_ = m.Set(ctx, key, map[string]bool{key: true})
	}

	if !waitFor(t, time.Second, func() bool { return m.Len() == 0 }) {
		t.Errorf("Expected cleanup to remove expired entries, %d remain", m.Len())
	}

	stats := m.GetStats()
	if stats["evictions"].(int64) < 3 {
		t.Errorf("Expected at least 3 evictions, got %v", stats["evictions"])
	}
}

func TestMemoryStoreCloseIsIdempotent(t *testing.T) {
	m := NewMemoryStore(&config.ChecklistConfig{MaxSize: 1, CleanupInterval: time.Millisecond})
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
