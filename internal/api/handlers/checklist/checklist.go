package checklist

import (
	"net/http"

	"meal-planner/internal/api/handlers"
	checklistService "meal-planner/internal/core/checklist"
	"meal-planner/internal/core/shopping"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StateRequest 覆寫整份清單
type StateRequest struct {
	Checked map[string]bool `json:"checked" binding:"required"`
}

// ItemRequest 設定或切換單一項目
type ItemRequest struct {
	Item    string `json:"item" binding:"required"`
	Checked *bool  `json:"checked,omitempty"`
}

// StateResponse 清單勾選狀態
type StateResponse struct {
	ListKey string          `json:"list_key"`
	Checked map[string]bool `json:"checked"`
}

// ToggleResponse 切換結果
type ToggleResponse struct {
	ListKey string `json:"list_key"`
	Item    string `json:"item"`
	Checked bool   `json:"checked"`
}

// Handler 勾選狀態處理器
type Handler struct {
	checklist *checklistService.Service
	shopping  *shopping.Service
}

// NewHandler 創建勾選狀態處理器
func NewHandler(checklist *checklistService.Service, shopping *shopping.Service) *Handler {
	return &Handler{checklist: checklist, shopping: shopping}
}

// HandleCreate 產生新的清單鍵
func (h *Handler) HandleCreate(c *gin.Context) {
	key := h.checklist.NewListKey()
	common.LogInfo("建立勾選清單",
		zap.String("list_key", key),
		zap.String("request_id", common.RequestID(c)),
	)
	c.JSON(http.StatusCreated, StateResponse{ListKey: key, Checked: map[string]bool{}})
}

// HandleGet 取得勾選狀態
func (h *Handler) HandleGet(c *gin.Context) {
	key := c.Param("key")
	state, err := h.checklist.State(c.Request.Context(), key)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, StateResponse{ListKey: key, Checked: state})
}

// HandleReplace 覆寫勾選狀態，項目名稱會正規化為清單項目鍵
func (h *Handler) HandleReplace(c *gin.Context) {
	var req StateRequest
	if err := handlers.BindJSON(c, &req); err != nil {
		common.WriteError(c, err)
		return
	}

	normalized := make(map[string]bool, len(req.Checked))
	for item, checked := range req.Checked {
		k := h.shopping.ItemKey(item)
		if k == "" {
			common.WriteError(c, common.NewValidationError("item name must not be empty"))
			return
		}
		normalized[k] = normalized[k] || checked
	}

	key := c.Param("key")
	state, err := h.checklist.Replace(c.Request.Context(), key, normalized)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, StateResponse{ListKey: key, Checked: state})
}

// HandleDelete 清除勾選狀態
func (h *Handler) HandleDelete(c *gin.Context) {
	if err := h.checklist.Clear(c.Request.Context(), c.Param("key")); err != nil {
		common.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleToggle 切換單一項目
func (h *Handler) HandleToggle(c *gin.Context) {
	var req ItemRequest
	if err := handlers.BindJSON(c, &req); err != nil {
		common.WriteError(c, err)
		return
	}

	key := c.Param("key")
	item := h.shopping.ItemKey(req.Item)
	checked, err := h.checklist.Toggle(c.Request.Context(), key, item)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, ToggleResponse{ListKey: key, Item: item, Checked: checked})
}

// HandleSetItem 設定單一項目
func (h *Handler) HandleSetItem(c *gin.Context) {
	var req ItemRequest
	if err := handlers.BindJSON(c, &req); err != nil {
		common.WriteError(c, err)
		return
	}
	if req.Checked == nil {
		common.WriteError(c, common.NewValidationError("checked is required"))
		return
	}

	key := c.Param("key")
	item := h.shopping.ItemKey(req.Item)
	state, err := h.checklist.SetItem(c.Request.Context(), key, item, *req.Checked)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, StateResponse{ListKey: key, Checked: state})
}
