package mealsource

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolRunKeepsOrderAndLimitsConcurrency(t *testing.T) {
	p := NewPool(3)
	var active, maxActive int64

	errs := p.Run(context.Background(), 10, func(ctx context.Context, i int) error {
		n := atomic.AddInt64(&active, 1)
		for {
			m := atomic.LoadInt64(&maxActive)
			if n <= m || atomic.CompareAndSwapInt64(&maxActive, m, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt64(&active, -1)
		if i%4 == 0 {
			return errors.New("failed")
		}
		return nil
	})

	if len(errs) != 10 {
		t.Fatalf("Expected 10 results, got %d", len(errs))
	}
	for i, err := range errs {
		if (i%4 == 0) != (err != nil) {
			t.Errorf("Unexpected error at index %d: %v", i, err)
		}
	}
	if maxActive > 3 {
		t.Errorf("Expected at most 3 concurrent jobs, saw %d", maxActive)
	}

	status := p.Status()
	if status.Workers != 3 || status.ProcessedCount != 10 || status.FailedCount != 3 || status.InFlight != 0 {
		t.Errorf("Unexpected status %+v", status)
	}
}

func TestPoolRunCancelled(t *testing.T) {
	p := NewPool(1)
	ctx, cancel := context.WithCancel(context.Background())

	errs := p.Run(ctx, 5, func(ctx context.Context, i int) error {
		if i == 0 {
			cancel()
			return nil
		}
		return ctx.Err()
	})

	if errs[0] != nil {
		t.Errorf("Expected the first job to succeed, got %v", errs[0])
	}
	for i, err := range errs[1:] {
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected job %d to report cancellation, got %v", i+1, err)
		}
	}
}

func TestPoolRunEmptyAndDefaults(t *testing.T) {
	p := NewPool(0)
	if p.Status().Workers != 1 {
		t.Errorf("Expected at least one worker, got %d", p.Status().Workers)
	}
	if errs := p.Run(context.Background(), 0, nil); len(errs) != 0 {
		t.Errorf("Expected no results, got %v", errs)
	}
}
