package meal

import (
	"net/http"

	"meal-planner/internal/api/handlers"
	"meal-planner/internal/core/mealsource"
	"meal-planner/internal/core/shopping"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// ImportRequest 匯入食譜網頁
type ImportRequest struct {
	URL string `json:"url" binding:"required"`
}

// ImportResponse 匯入的餐點與解析後的食材
type ImportResponse struct {
	Meal        *shopping.Meal              `json:"meal"`
	Ingredients []shopping.ParsedIngredient `json:"ingredients"`
}

// Handler 餐點處理器
type Handler struct {
	importer *mealsource.Importer
	shopping *shopping.Service
}

// NewHandler 創建餐點處理器
func NewHandler(importer *mealsource.Importer, shopping *shopping.Service) *Handler {
	return &Handler{importer: importer, shopping: shopping}
}

// HandleImport 從食譜網址匯入餐點
func (h *Handler) HandleImport(c *gin.Context) {
	var req ImportRequest
	if err := handlers.BindJSON(c, &req); err != nil {
		common.WriteError(c, err)
		return
	}

	meal, err := h.importer.ImportRecipe(c.Request.Context(), req.URL)
	if err != nil {
		common.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, ImportResponse{
		Meal:        meal,
		Ingredients: h.shopping.ParseLines(meal.Ingredients),
	})
}
