package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/slotkit/core"
)

// Config 是服务的完整配置（YAML + 环境变量）。
//
// 分层约定：
//   - 结构化配置（端点、路径、阈值）来自 YAML 文件
//   - 密钥只来自环境变量（.env 由 godotenv 尽力加载），不进配置文件
//   - 必需项缺失是启动期致命错误（CONFIG），进程不得开始服务
type Config struct {
	Server ServerConfig `yaml:"server"`
	Models ModelsConfig `yaml:"models"`

	VidTower VidTowerConfig `yaml:"vidtower"`
	YouTube  YouTubeConfig  `yaml:"youtube"`
	Redis    RedisConfig    `yaml:"redis"`
	Feast    FeastConfig    `yaml:"feast"`
	Rerank   RerankConfig   `yaml:"rerank"`
}

// ServerConfig HTTP 服务配置。
type ServerConfig struct {
	// Addr 监听地址，默认 ":8000"
	Addr string `yaml:"addr"`
}

// ModelsConfig 本地模型权重文件路径。三个路径都必须存在。
type ModelsConfig struct {
	EncoderWeights string `yaml:"encoder_weights"`
	EntityLexicon  string `yaml:"entity_lexicon"`
	FusionWeights  string `yaml:"fusion_weights"`
}

// VidTowerConfig 内容塔推理服务配置。
type VidTowerConfig struct {
	Endpoint       string `yaml:"endpoint"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// YouTubeConfig 频道元数据协作方配置。APIKey 只来自环境变量 YOUTUBE_API_KEY。
type YouTubeConfig struct {
	// BaseURL 留空时使用官方端点
	BaseURL        string `yaml:"base_url"`
	MaxVideos      int    `yaml:"max_videos"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`

	APIKey string `yaml:"-"`
}

// RedisConfig 通道嵌入缓存配置。Addr 留空时禁用缓存。
type RedisConfig struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// FeastConfig 频道统计特征服务配置。Host 留空时禁用。
type FeastConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Project string `yaml:"project"`
}

// RerankConfig 时段排名配置。
type RerankConfig struct {
	// TopK 返回的时段数，默认 3
	TopK int `yaml:"top_k"`

	// SlotRule 时段过滤规则（CEL 表达式），空则不过滤
	SlotRule string `yaml:"slot_rule"`
}

// Timeout 返回内容塔请求超时时间。
func (c *VidTowerConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Timeout 返回元数据请求超时时间。
func (c *YouTubeConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheTTL 返回通道嵌入缓存 TTL。
func (c *RedisConfig) CacheTTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return time.Hour
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

// Load 加载并校验配置。
//
// 顺序：.env（尽力而为）→ YAML 文件 → 环境变量覆盖 → 默认值 → 校验。
func Load(path string) (*Config, error) {
	// .env 缺失不是错误，生产环境变量直接来自进程环境
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleConfig, core.ErrorCodeConfig,
			fmt.Sprintf("read config %s: %v", path, err))
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, core.NewDomainError(core.ModuleConfig, core.ErrorCodeConfig,
			fmt.Sprintf("parse config %s: %v", path, err))
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	c.YouTube.APIKey = os.Getenv("YOUTUBE_API_KEY")
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.Redis.Addr = addr
	}
	if endpoint := os.Getenv("VIDTOWER_ENDPOINT"); endpoint != "" {
		c.VidTower.Endpoint = endpoint
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.YouTube.MaxVideos <= 0 {
		c.YouTube.MaxVideos = 10
	}
	if c.Rerank.TopK <= 0 {
		c.Rerank.TopK = 3
	}
}

func (c *Config) validate() error {
	if c.YouTube.APIKey == "" {
		return core.NewDomainError(core.ModuleConfig, core.ErrorCodeConfig,
			"YOUTUBE_API_KEY is required")
	}
	if c.VidTower.Endpoint == "" {
		return core.NewDomainError(core.ModuleConfig, core.ErrorCodeConfig,
			"vidtower.endpoint is required")
	}
	for name, path := range map[string]string{
		"models.encoder_weights": c.Models.EncoderWeights,
		"models.entity_lexicon":  c.Models.EntityLexicon,
		"models.fusion_weights":  c.Models.FusionWeights,
	} {
		if path == "" {
			return core.NewDomainError(core.ModuleConfig, core.ErrorCodeConfig,
				fmt.Sprintf("%s is required", name))
		}
		if _, err := os.Stat(path); err != nil {
			return core.NewDomainError(core.ModuleConfig, core.ErrorCodeConfig,
				fmt.Sprintf("%s: %v", name, err))
		}
	}
	return nil
}
