package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"meal-planner/internal/core/checklist"
	"meal-planner/internal/core/mealsource"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// readyTimeout 就緒檢查的儲存 ping 逾時
const readyTimeout = 2 * time.Second

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status     string                 `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
	Version    string                 `json:"version"`
	Backend    string                 `json:"checklist_backend"`
	Runtime    map[string]interface{} `json:"runtime"`
	MealSource *mealsource.PoolStatus `json:"meal_source,omitempty"`
}

// Handler 健康檢查處理器
type Handler struct {
	cfg   *config.Config
	store checklist.Store
	meals *mealsource.Client
}

// NewHandler 創建健康檢查處理器，meals 可為 nil
func NewHandler(cfg *config.Config, store checklist.Store, meals *mealsource.Client) *Handler {
	return &Handler{cfg: cfg, store: store, meals: meals}
}

// HealthCheck 健康檢查
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	backend := h.cfg.Checklist.Backend
	if backend == "" {
		backend = config.BackendMemory
	}

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.cfg.App.Version,
		Backend:   backend,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if h.meals != nil {
		status := h.meals.Status()
		response.MealSource = &status
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查，儲存後端支援 ping 時一併檢查
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if p, ok := h.store.(checklist.Pinger); ok {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			common.WriteError(c, common.ErrServiceUnavailable.Wrap(err))
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
