package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meal-planner/internal/api"
	"meal-planner/internal/core/checklist"
	"meal-planner/internal/core/mealsource"
	"meal-planner/internal/core/shopping"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("checklist_backend", cfg.Checklist.Backend),
		zap.Bool("meal_source_enabled", cfg.MealSource.Enabled),
		zap.String("meal_source_url", cfg.MealSource.BaseURL),
		zap.String("meal_source_api_key", config.MaskSecret(cfg.MealSource.APIKey)),
		zap.String("catalog_path", cfg.Catalog.Path),
	)

	catalog, err := shopping.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		common.LogFatal("Failed to load catalog", zap.Error(err))
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := checklist.NewStore(startCtx, &cfg.Checklist)
	cancelStart()
	if err != nil {
		common.LogFatal("Failed to initialize checklist store", zap.Error(err))
	}
	defer store.Close()

	services := api.Services{
		Shopping:  shopping.NewService(catalog),
		Checklist: checklist.NewService(store),
		Importer:  mealsource.NewImporter(cfg.MealSource.Timeout),
	}
	if cfg.MealSource.Enabled {
		services.Meals = mealsource.NewClient(&cfg.MealSource)
	}

	router, err := api.SetupRouter(cfg, services)
	if err != nil {
		common.LogFatal("Failed to setup router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}
