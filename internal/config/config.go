package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	LLM     LLMConfig     `yaml:"llm"`
	Models  ModelsConfig  `yaml:"models"`
	Routing RoutingConfig `yaml:"routing"`
	Search  SearchConfig  `yaml:"search"`
	Elastic ElasticConfig `yaml:"elastic"`
	Vector  VectorConfig  `yaml:"vector"`
	Redis   RedisConfig   `yaml:"redis"`
	CORS    CORSConfig    `yaml:"cors"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Name string `yaml:"name"`
}

// LLMConfig 模型服务配置
type LLMConfig struct {
	// APIBase 模型服务地址，如 http://gpu.qrgraph.com:9308/v1
	APIBase string `yaml:"apiBase"`
	APIKey  string `yaml:"apiKey"`
	// TimeoutSeconds 单次调用超时，0 表示不限制
	TimeoutSeconds int `yaml:"timeoutSeconds"`
}

// ModelsConfig 各环节使用的后端模型名
type ModelsConfig struct {
	QA         string `yaml:"qa"`         // 政务问答模型
	Classifier string `yaml:"classifier"` // 问题分类模型
	General    string `yaml:"general"`    // 通用对话模型
	Formatter  string `yaml:"formatter"`  // 答案整理模型
}

// RoutingConfig 路由配置
type RoutingConfig struct {
	// AutoAgent 是否启用自动路由（检索 + 分类 + 分发）
	AutoAgent bool `yaml:"autoAgent"`
	// CondenseHistory 多轮对话时是否先改写为独立问题
	CondenseHistory bool `yaml:"condenseHistory"`
}

// SearchConfig 知识库检索配置
type SearchConfig struct {
	// Endpoint 检索服务地址，网关通过 POST <endpoint>/search 调用
	Endpoint string `yaml:"endpoint"`
	// Threshold 命中得分阈值，低于阈值的结果被丢弃
	Threshold float64 `yaml:"threshold"`
	// CacheTTLHours 高置信命中在 Redis 中的缓存时长
	CacheTTLHours int `yaml:"cacheTtlHours"`
}

// ElasticConfig Elasticsearch 配置（search-server、qa-indexer 使用）
type ElasticConfig struct {
	Addr  string `yaml:"addr"`
	Index string `yaml:"index"`
}

// VectorConfig 向量召回配置（search-server 可选能力）
type VectorConfig struct {
	// DataFile QA 数据文件（JSONL），启动时加载进内存向量库；为空则关闭向量召回
	DataFile string `yaml:"dataFile"`
	// EmbeddingModel 向量化模型名
	EmbeddingModel string `yaml:"embeddingModel"`
	// TopK 召回条数
	TopK int `yaml:"topK"`
	// MinScore 最低相似度
	MinScore float64 `yaml:"minScore"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	// Enabled 为 false 时不连接 Redis，答案缓存退化为直查
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins     []string `yaml:"allowOrigins"`
	AllowMethods     []string `yaml:"allowMethods"`
	AllowHeaders     []string `yaml:"allowHeaders"`
	AllowCredentials bool     `yaml:"allowCredentials"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// LoadConfig 加载配置文件
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// applyDefaults 填充缺省值
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 9306
	}
	if cfg.Search.Threshold == 0 {
		cfg.Search.Threshold = 25
	}
	if cfg.Search.CacheTTLHours == 0 {
		cfg.Search.CacheTTLHours = 24
	}
	if cfg.Elastic.Index == "" {
		cfg.Elastic.Index = "government_data"
	}
	if cfg.Vector.TopK == 0 {
		cfg.Vector.TopK = 10
	}
	if cfg.Models.Formatter == "" {
		cfg.Models.Formatter = "chatglm-6b"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
