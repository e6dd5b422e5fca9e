package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	OpenRouter  OpenRouterConfig `mapstructure:"openrouter"`
	Classifier  ClassifierConfig `mapstructure:"classifier"`
	Boundary    BoundaryConfig   `mapstructure:"boundary"`
	Web         WebConfig        `mapstructure:"web"`
	OCR         OCRConfig        `mapstructure:"ocr"`
	Cache       CacheConfig      `mapstructure:"cache"`
	Queue       QueueConfig      `mapstructure:"queue"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	Image       ImageConfig      `mapstructure:"image"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
	LogDir      string           `mapstructure:"log_dir"`
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
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// OpenRouterConfig OpenRouter 配置，用於 LLM 行分類
type OpenRouterConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// ClassifierConfig 行分類器設定
type ClassifierConfig struct {
	// Model 為 "rule" 或 "llm"
	Model     string  `mapstructure:"model"`
	Threshold float64 `mapstructure:"threshold"`
}

// BoundaryConfig 多食譜切分的權重與門檻
type BoundaryConfig struct {
	TitleConfidence  float64 `mapstructure:"title_confidence"`
	MinTitleGap      int     `mapstructure:"min_title_gap"`
	MinEndMarkerGap  int     `mapstructure:"min_end_marker_gap"`
	TitleWindow      int     `mapstructure:"title_window"`
	ConfidenceWeight float64 `mapstructure:"confidence_weight"`
	PositionWeight   float64 `mapstructure:"position_weight"`
	CapitalWeight    float64 `mapstructure:"capital_weight"`
	WordCountWeight  float64 `mapstructure:"word_count_weight"`
	CapitalizedRatio float64 `mapstructure:"capitalized_ratio"`
	MinTitleWords    int     `mapstructure:"min_title_words"`
	MaxTitleWords    int     `mapstructure:"max_title_words"`
}

// WebConfig 網頁抓取設定
type WebConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// OCRConfig 外部 OCR 指令設定
type OCRConfig struct {
	Command string        `mapstructure:"command"`
	Args    []string      `mapstructure:"args"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Backend 為 "memory" 或 "redis"
	Backend         string        `mapstructure:"backend"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// QueueConfig 匯入任務隊列設定
type QueueConfig struct {
	Workers int           `mapstructure:"workers"`
	MaxSize int           `mapstructure:"max_size"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// ImageConfig 圖片配置
type ImageConfig struct {
	MaxSizeBytes int64         `mapstructure:"max_size_bytes"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 可有可無
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnv(v, "openrouter.api_key", "OPENROUTER_API_KEY")
	bindEnv(v, "openrouter.model", "OPENROUTER_MODEL")
	bindEnv(v, "openrouter.max_tokens", "MODEL_MAX_TOKENS")
	bindEnv(v, "classifier.model", "CLASSIFIER_MODEL")
	bindEnv(v, "classifier.threshold", "CLASSIFIER_THRESHOLD")
	bindEnv(v, "cache.enabled", "CACHE_ENABLED")
	bindEnv(v, "cache.backend", "CACHE_BACKEND")
	bindEnv(v, "cache.redis_addr", "REDIS_ADDR")
	bindEnv(v, "cache.redis_password", "REDIS_PASSWORD")
	bindEnv(v, "ocr.command", "OCR_COMMAND")
	bindEnv(v, "rate_limit.enabled", "RATE_LIMIT_ENABLED")
	bindEnv(v, "rate_limit.requests", "RATE_LIMIT_REQUESTS")
	bindEnv(v, "rate_limit.window", "RATE_LIMIT_WINDOW")
	bindEnv(v, "dedup_window", "DEDUP_WINDOW")
	bindEnv(v, "log_level", "LOG_LEVEL")
	bindEnv(v, "server.port", "PORT")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Default 回傳只含預設值的設定，供 CLI 與測試使用
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	// 預設值都是合法型別，Unmarshal 不會失敗
	_ = v.Unmarshal(&config)
	return &config
}

func bindEnv(v *viper.Viper, key, env string) {
	_ = v.BindEnv(key, env)
}

// MaskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func MaskAPIKey(key string) string {
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
	v.SetDefault("app.name", "recipe-importer")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 12*1024*1024)

	// OpenRouter 設定
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter.model", "qwen/qwen2.5-72b-instruct:free")
	v.SetDefault("openrouter.max_tokens", 60)
	v.SetDefault("openrouter.timeout", "20s")

	// 分類器設定
	v.SetDefault("classifier.model", "rule")
	v.SetDefault("classifier.threshold", 0.65)

	// 切分設定
	v.SetDefault("boundary.title_confidence", 0.5)
	v.SetDefault("boundary.min_title_gap", 3)
	v.SetDefault("boundary.min_end_marker_gap", 5)
	v.SetDefault("boundary.title_window", 5)
	v.SetDefault("boundary.confidence_weight", 0.4)
	v.SetDefault("boundary.position_weight", 0.2)
	v.SetDefault("boundary.capital_weight", 0.2)
	v.SetDefault("boundary.word_count_weight", 0.2)
	v.SetDefault("boundary.capitalized_ratio", 0.6)
	v.SetDefault("boundary.min_title_words", 2)
	v.SetDefault("boundary.max_title_words", 10)

	// 網頁抓取
	v.SetDefault("web.timeout", "15s")
	v.SetDefault("web.user_agent", "Mozilla/5.0 (compatible; recipe-importer/1.0)")
	v.SetDefault("web.max_body_bytes", 5*1024*1024)

	// OCR
	v.SetDefault("ocr.command", "tesseract")
	v.SetDefault("ocr.args", []string{"stdin", "stdout"})
	v.SetDefault("ocr.timeout", "30s")

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// 隊列設定
	v.SetDefault("queue.workers", 4)
	v.SetDefault("queue.max_size", 100)
	v.SetDefault("queue.timeout", "90s")

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	// 圖片設定
	v.SetDefault("image.max_size_bytes", 10*1024*1024) // 10MB
	v.SetDefault("image.fetch_timeout", "15s")

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "logs")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	switch config.Classifier.Model {
	case "rule":
	case "llm":
		if config.OpenRouter.APIKey == "" {
			return fmt.Errorf("openrouter api key is required for the llm classifier")
		}
	default:
		return fmt.Errorf("unknown classifier model %q", config.Classifier.Model)
	}
	if config.Classifier.Threshold < 0 || config.Classifier.Threshold > 1 {
		return fmt.Errorf("classifier threshold must be within [0,1]")
	}

	b := config.Boundary
	if b.TitleConfidence < 0 || b.TitleConfidence > 1 {
		return fmt.Errorf("boundary title confidence must be within [0,1]")
	}
	if b.MinTitleGap < 0 || b.MinEndMarkerGap < 0 || b.TitleWindow <= 0 {
		return fmt.Errorf("invalid boundary windows")
	}
	if b.MinTitleWords > b.MaxTitleWords {
		return fmt.Errorf("boundary min title words exceeds max title words")
	}

	if config.Cache.Enabled {
		switch config.Cache.Backend {
		case "memory":
			if config.Cache.MaxSize <= 0 {
				return fmt.Errorf("invalid cache max size")
			}
			if config.Cache.CleanupInterval <= 0 {
				return fmt.Errorf("invalid cache cleanup interval")
			}
		case "redis":
			if config.Cache.RedisAddr == "" {
				return fmt.Errorf("redis address is required")
			}
		default:
			return fmt.Errorf("unknown cache backend %q", config.Cache.Backend)
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
	}

	if config.Queue.Workers <= 0 {
		return fmt.Errorf("invalid queue workers")
	}
	if config.Queue.MaxSize <= 0 {
		return fmt.Errorf("invalid queue max size")
	}

	return nil
}
