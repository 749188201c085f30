package mealsource

import (
	"context"
	"sync"
	"sync/atomic"

	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// PoolStatus 工作池狀態
type PoolStatus struct {
	Workers        int   `json:"workers"`
	InFlight       int64 `json:"in_flight"`
	ProcessedCount int64 `json:"processed_count"`
	FailedCount    int64 `json:"failed_count"`
}

// Pool 限制同時執行數量的工作池
type Pool struct {
	workers   int
	inFlight  int64
	processed int64
	failed    int64
}

// NewPool 創建工作池，workers 小於 1 時使用 1
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Run 以最多 workers 個協程執行 fn(0..n-1)，回傳依索引排列的錯誤
//
// 單一任務失敗不影響其他任務；ctx 取消後尚未開始的任務回傳 ctx.Err()。
func (p *Pool) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) []error {
	errs := make([]error, n)
	if n == 0 {
		return errs
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(p.workers, n); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				atomic.AddInt64(&p.inFlight, 1)
				err := fn(ctx, i)
				atomic.AddInt64(&p.inFlight, -1)
				atomic.AddInt64(&p.processed, 1)
				if err != nil {
					atomic.AddInt64(&p.failed, 1)
				}
				errs[i] = err
			}
		}()
	}

	next := 0
feed:
	for ; next < n; next++ {
		select {
		case jobs <- next:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if next < n {
		common.LogWarn("工作池已取消，剩餘任務未執行",
			zap.Int("skipped", n-next),
			zap.Error(ctx.Err()),
		)
		for i := next; i < n; i++ {
			errs[i] = ctx.Err()
		}
	}
	return errs
}

// Status 取得工作池狀態
func (p *Pool) Status() PoolStatus {
	return PoolStatus{
		Workers:        p.workers,
		InFlight:       atomic.LoadInt64(&p.inFlight),
		ProcessedCount: atomic.LoadInt64(&p.processed),
		FailedCount:    atomic.LoadInt64(&p.failed),
	}
}
