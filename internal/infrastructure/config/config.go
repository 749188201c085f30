package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Checklist 儲存後端
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	Checklist   ChecklistConfig  `mapstructure:"checklist"`
	MealSource  MealSourceConfig `mapstructure:"meal_source"`
	Catalog     CatalogConfig    `mapstructure:"catalog"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
	LogFile     string           `mapstructure:"log_file"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// ChecklistConfig 勾選狀態儲存設定
type ChecklistConfig struct {
	Backend         string        `mapstructure:"backend"`
	TTL             time.Duration `mapstructure:"ttl"`
	MaxSize         int           `mapstructure:"max_size"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	SQLitePath      string        `mapstructure:"sqlite_path"`
}

// MealSourceConfig 上游餐點服務設定
type MealSourceConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Workers    int           `mapstructure:"workers"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// CatalogConfig 食材詞彙表設定，Path 為空時使用內建詞彙表
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 不存在時直接使用環境變數
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	// 設定預設值
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	_ = v.BindEnv("checklist.backend", "CHECKLIST_BACKEND")
	_ = v.BindEnv("checklist.redis_addr", "REDIS_ADDR")
	_ = v.BindEnv("checklist.redis_password", "REDIS_PASSWORD")
	_ = v.BindEnv("checklist.sqlite_path", "CHECKLIST_SQLITE_PATH")
	_ = v.BindEnv("meal_source.enabled", "MEAL_SOURCE_ENABLED")
	_ = v.BindEnv("meal_source.base_url", "MEAL_SOURCE_URL")
	_ = v.BindEnv("meal_source.api_key", "MEAL_SOURCE_API_KEY")
	_ = v.BindEnv("catalog.path", "CATALOG_PATH")
	_ = v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	_ = v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	_ = v.BindEnv("dedup_window", "DEDUP_WINDOW")
	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("log_file", "LOG_FILE")
	_ = v.BindEnv("server.port", "PORT")

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.Checklist.Backend = strings.ToLower(strings.TrimSpace(config.Checklist.Backend))

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// MaskSecret 遮罩密鑰，只顯示前後各 4 個字符
func MaskSecret(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "meal-planner")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.max_body_bytes", 2<<20) // 2MB

	// 勾選狀態設定
	v.SetDefault("checklist.backend", BackendMemory)
	v.SetDefault("checklist.ttl", "720h")
	v.SetDefault("checklist.max_size", 10000)
	v.SetDefault("checklist.cleanup_interval", "10m")
	v.SetDefault("checklist.redis_addr", "localhost:6379")
	v.SetDefault("checklist.redis_db", 0)
	v.SetDefault("checklist.sqlite_path", "data/checklists.db")

	// 上游餐點服務設定
	v.SetDefault("meal_source.enabled", false)
	v.SetDefault("meal_source.timeout", "10s")
	v.SetDefault("meal_source.workers", 3)
	v.SetDefault("meal_source.max_retries", 2)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server port is required")
	}
	if config.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("invalid server max body bytes")
	}

	// 驗證勾選狀態設定
	switch config.Checklist.Backend {
	case BackendMemory:
		if config.Checklist.MaxSize <= 0 {
			return fmt.Errorf("invalid checklist max size")
		}
		if config.Checklist.CleanupInterval <= 0 {
			return fmt.Errorf("invalid checklist cleanup interval")
		}
	case BackendRedis:
		if config.Checklist.RedisAddr == "" {
			return fmt.Errorf("redis address is required for the redis checklist backend")
		}
	case BackendSQLite:
		if config.Checklist.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required for the sqlite checklist backend")
		}
	default:
		return fmt.Errorf("unknown checklist backend %q", config.Checklist.Backend)
	}
	if config.Checklist.TTL < 0 {
		return fmt.Errorf("invalid checklist ttl")
	}

	// 驗證上游餐點服務設定
	if config.MealSource.Enabled {
		if config.MealSource.BaseURL == "" {
			return fmt.Errorf("meal source base url is required when the meal source is enabled")
		}
		if config.MealSource.Workers <= 0 {
			return fmt.Errorf("invalid meal source workers")
		}
		if config.MealSource.MaxRetries < 0 {
			return fmt.Errorf("invalid meal source max retries")
		}
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit")
	}

	return nil
}
