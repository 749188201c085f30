package api

import (
	"errors"
	"time"

	checklistHandler "meal-planner/internal/api/handlers/checklist"
	"meal-planner/internal/api/handlers/health"
	mealHandler "meal-planner/internal/api/handlers/meal"
	shoppingHandler "meal-planner/internal/api/handlers/shopping"
	"meal-planner/internal/api/middleware"
	"meal-planner/internal/core/checklist"
	"meal-planner/internal/core/mealsource"
	"meal-planner/internal/core/shopping"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services 路由使用的服務，Meals 可為 nil（未設定上游餐點服務）
type Services struct {
	Shopping  *shopping.Service
	Checklist *checklist.Service
	Meals     *mealsource.Client
	Importer  *mealsource.Importer
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, svc Services) (*gin.Engine, error) {
	if svc.Shopping == nil || svc.Checklist == nil || svc.Importer == nil {
		return nil, errors.New("shopping, checklist and importer services are required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	router.NoRoute(func(c *gin.Context) {
		common.WriteError(c, common.ErrNotFound)
	})

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg, svc.Checklist.Store(), svc.Meals)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	shoppingH := shoppingHandler.NewHandler(svc.Shopping, svc.Checklist, svc.Meals)
	checklistH := checklistHandler.NewHandler(svc.Checklist, svc.Shopping)
	mealH := mealHandler.NewHandler(svc.Importer, svc.Shopping)
	dedup := middleware.NewDeduplicator(cfg.DedupWindow)

	// API 路由組
	v1 := router.Group("/api/v1")
	{
		v1.POST("/ingredients/parse", shoppingH.HandleParse)
		v1.POST("/shopping-list", shoppingH.HandleShoppingList)

		checklists := v1.Group("/checklists")
		{
			checklists.POST("", dedup.Handler(), checklistH.HandleCreate)
			checklists.GET("/:key", checklistH.HandleGet)
			checklists.PUT("/:key", checklistH.HandleReplace)
			checklists.DELETE("/:key", checklistH.HandleDelete)
			checklists.POST("/:key/toggle", checklistH.HandleToggle)
			checklists.PUT("/:key/items", checklistH.HandleSetItem)
		}

		v1.POST("/meals/import", mealH.HandleImport)
	}

	common.LogInfo("Router setup completed successfully",
		zap.String("checklist_backend", cfg.Checklist.Backend),
		zap.Bool("meal_source_enabled", svc.Meals != nil),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, nil
}
