package mealsource

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"meal-planner/internal/core/shopping"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"
)

type fakeMealServer struct {
	mu        sync.Mutex
	calls     map[string]int
	active    int64
	maxActive int64
	authOK    int64
}

func (f *fakeMealServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n := atomic.AddInt64(&f.active, 1)
	defer atomic.AddInt64(&f.active, -1)
	for {
		m := atomic.LoadInt64(&f.maxActive)
		if n <= m || atomic.CompareAndSwapInt64(&f.maxActive, m, n) {
			break
		}
	}
	if r.Header.Get("Authorization") == "Bearer secret-token-123" {
		atomic.AddInt64(&f.authOK, 1)
	}

	id := strings.TrimPrefix(r.URL.Path, "/meals/")
	f.mu.Lock()
	f.calls[id]++
	calls := f.calls[id]
	f.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	switch id {
	case "missing":
		w.WriteHeader(http.StatusNotFound)
		return
	case "broken":
		w.WriteHeader(http.StatusInternalServerError)
		return
	case "flaky":
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
	case "garbage":
		w.Write([]byte("{not json"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(shopping.Meal{
		Name:        "Meal " + id,
		Day:         "monday",
		MealType:    "dinner",
		Ingredients: []string{"1 cup rice", "2 eggs"},
	})
}

func newTestClient(t *testing.T) (*Client, *fakeMealServer) {
	t.Helper()
	fake := &fakeMealServer{calls: make(map[string]int)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c := NewClient(&config.MealSourceConfig{
		Enabled:    true,
		BaseURL:    srv.URL + "/",
		APIKey:     "secret-token-123",
		Timeout:    2 * time.Second,
		Workers:    3,
		MaxRetries: 2,
	})
	return c, fake
}

func TestFetchMeal(t *testing.T) {
	c, fake := newTestClient(t)

	meal, err := c.FetchMeal(context.Background(), "m1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if meal.ID != "m1" || meal.Name != "Meal m1" || len(meal.Ingredients) != 2 {
		t.Errorf("Unexpected meal %+v", meal)
	}
	if atomic.LoadInt64(&fake.authOK) != 1 {
		t.Error("Expected bearer token to be sent")
	}
}

func TestFetchMealErrors(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	_, err := c.FetchMeal(ctx, "missing")
	if !errors.Is(err, ErrMealNotFound) {
		t.Errorf("Expected ErrMealNotFound, got %v", err)
	}
	if errors.Is(err, common.ErrMealSourceError) {
		t.Error("Expected a missing meal not to be reported as an upstream failure")
	}
	if _, err := c.FetchMeal(ctx, "broken"); !errors.Is(err, common.ErrMealSourceError) {
		t.Errorf("Expected ErrMealSourceError for a failing upstream, got %v", err)
	}
	if _, err := c.FetchMeal(ctx, "garbage"); !errors.Is(err, common.ErrMealSourceError) {
		t.Errorf("Expected ErrMealSourceError for an invalid body, got %v", err)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if fake.calls["broken"] != 3 {
		t.Errorf("Expected 1 call plus 2 retries for broken, got %d", fake.calls["broken"])
	}
	if fake.calls["missing"] != 1 {
		t.Errorf("Expected no retries on 404, got %d calls", fake.calls["missing"])
	}
}

func TestFetchMealRetriesTransientFailure(t *testing.T) {
	c, _ := newTestClient(t)
	meal, err := c.FetchMeal(context.Background(), "flaky")
	if err != nil {
		t.Fatalf("Expected retry to succeed, got %v", err)
	}
	if meal.Name != "Meal flaky" {
		t.Errorf("Unexpected meal %+v", meal)
	}
}

func TestFetchMeals(t *testing.T) {
	c, fake := newTestClient(t)
	ids := []string{"a", "missing", "b", "c", "a", "d", "e", "garbage"}

	results := c.FetchMeals(context.Background(), ids)
	if len(results) != len(ids) {
		t.Fatalf("Expected %d results, got %d", len(ids), len(results))
	}
	for i, r := range results {
		if r.ID != ids[i] {
			t.Errorf("Expected result %d to be %q, got %q", i, ids[i], r.ID)
		}
	}

	if got := Failed(results); !reflect.DeepEqual(got, []string{"missing", "garbage"}) {
		t.Errorf("Expected failed [missing garbage], got %v", got)
	}
	if got := Meals(results); len(got) != 6 {
		t.Errorf("Expected 6 meals, got %d", len(got))
	}
	if maxActive := atomic.LoadInt64(&fake.maxActive); maxActive > 3 {
		t.Errorf("Expected at most 3 concurrent requests, saw %d", maxActive)
	}

	fake.mu.Lock()
	if fake.calls["a"] != 1 {
		t.Errorf("Expected duplicate ids to be fetched once, got %d", fake.calls["a"])
	}
	fake.mu.Unlock()

	if st := c.Status(); st.Workers != 3 || st.ProcessedCount != 7 || st.FailedCount != 2 {
		t.Errorf("Unexpected pool status %+v", st)
	}
}
