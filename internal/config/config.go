package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AppInfo 对应 'app' 部分，包含应用程序的基本信息。
type AppInfo struct {
	Name        string `yaml:"name"`        // 应用程序名称
	Version     string `yaml:"version"`     // 应用程序版本
	Environment string `yaml:"environment"` // 运行环境 (例如: "development", "production")
}

// LoggerConfig 定义了日志记录器的配置。
type LoggerConfig struct {
	Level string `yaml:"level"` // 日志级别 (例如: "info", "debug", "warn", "error")
}

// ServerConfig 定义了 HTTP 服务器与文件上传的配置。
type ServerConfig struct {
	Address     string `yaml:"address"`     // 监听地址 (例如: ":8080")
	UploadDir   string `yaml:"uploadDir"`   // 上传文件的保存目录
	MaxFileSize int64  `yaml:"maxFileSize"` // 上传文件的最大字节数
}

// OpenAIConfig 包含了 OpenAI 模型的配置。
type OpenAIConfig struct {
	APIKey  string `yaml:"apiKey"`  // OpenAI API 密钥
	Model   string `yaml:"model"`   // 模型名称
	BaseURL string `yaml:"baseURL"` // 可选的服务基础 URL
}

// GeminiConfig 包含了 Gemini 模型的配置。
type GeminiConfig struct {
	APIKey string `yaml:"apiKey"` // Gemini API 密钥
	Model  string `yaml:"model"`  // 模型名称
}

// OllamaConfig 包含了 Ollama 模型的配置。
type OllamaConfig struct {
	Model   string `yaml:"model"`   // 模型名称
	BaseURL string `yaml:"baseURL"` // Ollama 服务地址
}

// LLMConfig 包含了不同LLM提供商的配置。
type LLMConfig struct {
	Provider string       `yaml:"provider"` // LLM提供商 (例如: "openai", "gemini", "ollama")
	OpenAI   OpenAIConfig `yaml:"openai"`
	Gemini   GeminiConfig `yaml:"gemini"`
	Ollama   OllamaConfig `yaml:"ollama"`
}

// EmbeddingConfig 包含了不同Embedding提供商的配置。
type EmbeddingConfig struct {
	Provider string       `yaml:"provider"` // Embedding提供商
	OpenAI   OpenAIConfig `yaml:"openai"`
	Gemini   GeminiConfig `yaml:"gemini"`
	Ollama   OllamaConfig `yaml:"ollama"`
}

// EmbeddingCacheConfig 定义了嵌入向量缓存的配置。
type EmbeddingCacheConfig struct {
	Capacity int    `yaml:"capacity"` // 缓存的最大条目数
	TTL      string `yaml:"ttl"`      // 条目存活时间 (例如: "10m")，空字符串表示不过期
}

// RAGConfig 定义了检索与索引的配置。
type RAGConfig struct {
	TopK              int                  `yaml:"topK"`              // 检索返回的最大分块数
	ChunkSize         int                  `yaml:"chunkSize"`         // 分块的 token 数量
	ChunkOverlap      int                  `yaml:"chunkOverlap"`      // 相邻分块的重叠 token 数量
	MemoryTokenBudget int                  `yaml:"memoryTokenBudget"` // 对话记忆的 token 预算
	EmbeddingCache    EmbeddingCacheConfig `yaml:"embeddingCache"`
}

// BillingConfig 定义了计费的配置。
type BillingConfig struct {
	StripeKey    string `yaml:"stripeKey"`    // Stripe API 密钥
	ChargeAmount int64  `yaml:"chargeAmount"` // 每次扣费的金额（最小货币单位）
	ChargeEvery  int    `yaml:"chargeEvery"`  // 每多少个问题扣费一次
	Currency     string `yaml:"currency"`     // 货币代码 (例如: "usd")
}

// TokenBucketConfig 定义了令牌桶算法的配置。
type TokenBucketConfig struct {
	Rate     float64 `yaml:"rate"` // 每秒速率
	Capacity int     `yaml:"capacity"`
}

// FixedWindowConfig 定义了固定窗口计数器算法的配置。
type FixedWindowConfig struct {
	Limit  int    `yaml:"limit"`
	Window string `yaml:"window"` // 例如: "1m", "30s"
}

// RateLimiterConfig 定义了限流器的配置。
type RateLimiterConfig struct {
	Enabled     bool              `yaml:"enabled"`
	Algorithm   string            `yaml:"algorithm"` // 支持: "tokenBucket", "fixedWindow"
	TokenBucket TokenBucketConfig `yaml:"tokenBucket"`
	FixedWindow FixedWindowConfig `yaml:"fixedWindow"`
}

// CircuitBreakerConfig 定义了熔断器的配置。
type CircuitBreakerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	FailureThreshold uint32 `yaml:"failureThreshold"`
	SuccessThreshold uint32 `yaml:"successThreshold"`
	Timeout          string `yaml:"timeout"` // 例如: "30s"
}

// MiddlewareConfig 包含所有中间件的配置。
type MiddlewareConfig struct {
	RateLimiter    RateLimiterConfig    `yaml:"rateLimiter"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker"`
}

// AppConfig 是整个 YAML 文件的根结构，包含了应用程序的所有配置。
type AppConfig struct {
	App        AppInfo          `yaml:"app"`
	Logger     LoggerConfig     `yaml:"logger"`
	Server     ServerConfig     `yaml:"server"`
	LLM        LLMConfig        `yaml:"llm"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	RAG        RAGConfig        `yaml:"rag"`
	Billing    BillingConfig    `yaml:"billing"`
	Middleware MiddlewareConfig `yaml:"middleware"`
}

// LoadConfig 函数从指定路径加载并解析 YAML 配置文件，并填充缺省值。
func LoadConfig(path string) (*AppConfig, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取 YAML 文件 '%s': %w", path, err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
		return nil, fmt.Errorf("无法解析 YAML 文件 '%s': %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults 为未配置的字段填充缺省值。
func (c *AppConfig) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Server.UploadDir == "" {
		c.Server.UploadDir = "uploads"
	}
	if c.Server.MaxFileSize <= 0 {
		c.Server.MaxFileSize = 10 << 20 // 10 MiB
	}
	if c.RAG.TopK <= 0 {
		c.RAG.TopK = 3
	}
	if c.RAG.ChunkSize <= 0 {
		c.RAG.ChunkSize = 1024
	}
	if c.RAG.ChunkOverlap <= 0 {
		c.RAG.ChunkOverlap = 256
	}
	if c.RAG.MemoryTokenBudget <= 0 {
		c.RAG.MemoryTokenBudget = 3000
	}
	if c.RAG.EmbeddingCache.Capacity <= 0 {
		c.RAG.EmbeddingCache.Capacity = 1024
	}
	if c.Billing.ChargeAmount <= 0 {
		c.Billing.ChargeAmount = 100
	}
	if c.Billing.ChargeEvery <= 0 {
		c.Billing.ChargeEvery = 5
	}
	if c.Billing.Currency == "" {
		c.Billing.Currency = "usd"
	}
}
