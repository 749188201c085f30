package mealsource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"meal-planner/internal/core/shopping"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrMealNotFound 上游找不到餐點
var ErrMealNotFound = errors.New("meal not found")

// Result 單一餐點的抓取結果，Meal 與 Err 擇一
type Result struct {
	ID   string
	Meal *shopping.Meal
	Err  error
}

// Client 上游餐點服務客戶端
type Client struct {
	client *resty.Client
	pool   *Pool
}

// NewClient 創建餐點服務客戶端
func NewClient(cfg *config.MealSourceConfig) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || (r != nil && r.StatusCode() >= http.StatusInternalServerError)
		})
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}

	common.LogInfo("餐點服務客戶端已初始化",
		zap.String("base_url", cfg.BaseURL),
		zap.String("api_key", config.MaskSecret(cfg.APIKey)),
		zap.Int("workers", cfg.Workers),
		zap.Int("max_retries", cfg.MaxRetries),
	)

	return &Client{
		client: client,
		pool:   NewPool(cfg.Workers),
	}
}

// FetchMeal 取得單一餐點
func (c *Client) FetchMeal(ctx context.Context, id string) (*shopping.Meal, error) {
	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Get("/meals/{id}")

	attempt := 1
	if resp != nil && resp.Request != nil && resp.Request.Attempt > 0 {
		attempt = resp.Request.Attempt
	}

	meal, err := decodeMeal(id, resp, err)
	common.LogUpstreamCall(id, attempt, time.Since(start), err)
	return meal, err
}

// FetchMeals 以工作池並行取得餐點，結果依輸入順序排列
//
// 重複的 ID 只抓取一次；單一餐點失敗不影響其他餐點。
func (c *Client) FetchMeals(ctx context.Context, ids []string) []Result {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]int, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = len(unique)
			unique = append(unique, id)
		}
	}

	meals := make([]*shopping.Meal, len(unique))
	errs := c.pool.Run(ctx, len(unique), func(ctx context.Context, i int) error {
		meal, err := c.FetchMeal(ctx, unique[i])
		meals[i] = meal
		return err
	})

	results := make([]Result, len(ids))
	for i, id := range ids {
		j := seen[id]
		results[i] = Result{ID: id, Meal: meals[j], Err: errs[j]}
	}
	return results
}

// Status 工作池狀態
func (c *Client) Status() PoolStatus {
	return c.pool.Status()
}

// Meals 取出成功的餐點
func Meals(results []Result) []shopping.Meal {
	out := make([]shopping.Meal, 0, len(results))
	for _, r := range results {
		if r.Err == nil && r.Meal != nil {
			out = append(out, *r.Meal)
		}
	}
	return out
}

// Failed 回傳需要重試的餐點 ID
func Failed(results []Result) []string {
	var ids []string
	for _, r := range results {
		if r.Err != nil {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// decodeMeal 解析上游回應
func decodeMeal(id string, resp *resty.Response, err error) (*shopping.Meal, error) {
	if err != nil {
		return nil, common.ErrMealSourceError.Wrap(fmt.Errorf("failed to fetch meal %s: %w", id, err))
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, fmt.Errorf("meal %s: %w", id, ErrMealNotFound)
	case resp.StatusCode() != http.StatusOK:
		return nil, common.ErrMealSourceError.Wrap(fmt.Errorf("status %d for meal %s", resp.StatusCode(), id))
	}

	var meal shopping.Meal
	if err := common.ParseJSONBytes(resp.Body(), &meal); err != nil {
		return nil, common.ErrMealSourceError.Wrap(fmt.Errorf("failed to parse meal %s: %w", id, err))
	}
	if meal.ID == "" {
		meal.ID = id
	}
	return &meal, nil
}
