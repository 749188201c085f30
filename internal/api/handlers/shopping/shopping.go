package shopping

import (
	"errors"
	"net/http"

	"meal-planner/internal/api/handlers"
	"meal-planner/internal/core/checklist"
	"meal-planner/internal/core/mealsource"
	shoppingService "meal-planner/internal/core/shopping"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 單次請求的上限
const (
	maxLines   = 500
	maxMeals   = 100
	maxMealIDs = 50
)

// ParseRequest 解析食材行
type ParseRequest struct {
	Lines []string `json:"lines" binding:"required"`
}

// ParseResponse 解析結果，與輸入行一一對應
type ParseResponse struct {
	Ingredients []shoppingService.ParsedIngredient `json:"ingredients"`
}

// ListRequest 產生購物清單，meals 與 meal_ids 可同時提供
type ListRequest struct {
	Meals   []shoppingService.Meal `json:"meals,omitempty"`
	MealIDs []string               `json:"meal_ids,omitempty"`
	ListKey string                 `json:"list_key,omitempty"`
}

// FailedMeal 取得失敗的餐點
type FailedMeal struct {
	ID        string `json:"id"`
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
}

// ListResponse 購物清單
type ListResponse struct {
	*shoppingService.List
	ListKey     string       `json:"list_key,omitempty"`
	FailedMeals []FailedMeal `json:"failed_meals"`
}

// Handler 購物清單處理器
type Handler struct {
	shopping  *shoppingService.Service
	checklist *checklist.Service
	meals     *mealsource.Client
}

// NewHandler 創建購物清單處理器，meals 為 nil 時不支援 meal_ids
func NewHandler(shopping *shoppingService.Service, checklist *checklist.Service, meals *mealsource.Client) *Handler {
	return &Handler{shopping: shopping, checklist: checklist, meals: meals}
}

// HandleParse 解析自由文字食材行
func (h *Handler) HandleParse(c *gin.Context) {
	var req ParseRequest
	if err := handlers.BindJSON(c, &req); err != nil {
		common.WriteError(c, err)
		return
	}
	if len(req.Lines) > maxLines {
		common.WriteError(c, common.NewValidationError("too many lines"))
		return
	}

	parsed := make([]shoppingService.ParsedIngredient, len(req.Lines))
	for i, line := range req.Lines {
		parsed[i] = h.shopping.ParseLine(line)
	}
	c.JSON(http.StatusOK, ParseResponse{Ingredients: parsed})
}

// HandleShoppingList 合併餐點食材並產生分類清單
func (h *Handler) HandleShoppingList(c *gin.Context) {
	var req ListRequest
	if err := handlers.BindJSON(c, &req); err != nil {
		common.WriteError(c, err)
		return
	}
	if len(req.Meals) > maxMeals || len(req.MealIDs) > maxMealIDs {
		common.WriteError(c, common.NewValidationError("too many meals"))
		return
	}

	ctx := c.Request.Context()
	meals := req.Meals
	failed := []FailedMeal{}

	if len(req.MealIDs) > 0 {
		if h.meals == nil {
			common.WriteError(c, common.ErrMealSourceDisabled)
			return
		}
		results := h.meals.FetchMeals(ctx, req.MealIDs)
		meals = append(meals, mealsource.Meals(results)...)
		seen := make(map[string]bool)
		for _, r := range results {
			if r.Err == nil || seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			failed = append(failed, FailedMeal{
				ID:        r.ID,
				Error:     r.Err.Error(),
				Retryable: !errors.Is(r.Err, mealsource.ErrMealNotFound),
			})
		}
		if err := ctx.Err(); err != nil {
			common.WriteError(c, common.ErrGatewayTimeout.Wrap(err))
			return
		}
	}

	var checked map[string]bool
	if req.ListKey != "" {
		state, err := h.checklist.State(ctx, req.ListKey)
		if err != nil {
			common.WriteError(c, err)
			return
		}
		checked = state
	}

	list := h.shopping.BuildList(meals, checked)
	if len(failed) > 0 {
		common.LogWarn("部分餐點取得失敗",
			zap.Int("failed", len(failed)),
			zap.Int("meals", len(meals)),
			zap.String("request_id", common.RequestID(c)),
		)
	}

	c.JSON(http.StatusOK, ListResponse{
		List:        list,
		ListKey:     req.ListKey,
		FailedMeals: failed,
	})
}
