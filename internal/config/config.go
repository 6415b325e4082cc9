package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/contexta-ai/contexta/internal/core"
)

// ServerConfig holds the listen addresses for the two HTTP surfaces.
type ServerConfig struct {
	APIAddr    string `yaml:"api_addr"`
	IngestAddr string `yaml:"ingest_addr"`
}

// OpenAIConfig configures the embedding and chat providers. The API key is
// never stored in the file; it is read from the environment variable named
// by APIKeyEnv.
type OpenAIConfig struct {
	APIKeyEnv      string `yaml:"api_key_env"`
	BaseURL        string `yaml:"base_url"`
	EmbeddingModel string `yaml:"embedding_model"`
	ChatModel      string `yaml:"chat_model"`
	TimeoutSecs    int    `yaml:"timeout_secs"`
}

// MilvusConfig contains connection details for a Milvus vector store.
type MilvusConfig struct {
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	Collection string `yaml:"collection"`
}

// StoreConfig selects and configures the vector store implementation.
type StoreConfig struct {
	Type   string       `yaml:"type"`
	Milvus MilvusConfig `yaml:"milvus"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	MaxTokens int `yaml:"max_tokens"`
	Overlap   int `yaml:"overlap"`
}

// CallbackConfig configures completion notification delivery.
type CallbackConfig struct {
	MaxRetries  int `yaml:"max_retries"`
	BackoffSecs int `yaml:"backoff_secs"`
	TimeoutSecs int `yaml:"timeout_secs"`
}

// QueryConfig holds the defaults applied when a query omits its knobs.
type QueryConfig struct {
	TopK             int `yaml:"top_k"`
	RerankTopK       int `yaml:"rerank_top_k"`
	MaxContextLength int `yaml:"max_context_length"`
}

// TelegramConfig enables the optional Telegram query surface. The bot token
// is read from the environment variable named by TokenEnv.
type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	TokenEnv string `yaml:"token_env"`
}

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Store    StoreConfig    `yaml:"store"`
	Chunker  ChunkerConfig  `yaml:"chunker"`
	Callback CallbackConfig `yaml:"callback"`
	Query    QueryConfig    `yaml:"query"`
	Telegram TelegramConfig `yaml:"telegram"`
	LogLevel string         `yaml:"log_level"`
}

// Load reads a config from path. A missing file is not an error: defaults
// are returned so the service can run from environment variables alone.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := &Config{}
			applyDefaults(cfg)
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", core.ErrInvalidInput, path, err)
	}
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// APIKey resolves the OpenAI API key from the configured environment
// variable. Empty means the provider is not configured.
func (c *Config) APIKey() string {
	return os.Getenv(c.OpenAI.APIKeyEnv)
}

// TelegramToken resolves the bot token from the configured environment
// variable.
func (c *Config) TelegramToken() string {
	return os.Getenv(c.Telegram.TokenEnv)
}

// MilvusAddr joins host and port into the address the client dials.
func (c *Config) MilvusAddr() string {
	return c.Store.Milvus.Host + ":" + c.Store.Milvus.Port
}

func applyDefaults(cfg *Config) {
	if cfg.Server.APIAddr == "" {
		cfg.Server.APIAddr = ":8080"
	}
	if cfg.Server.IngestAddr == "" {
		cfg.Server.IngestAddr = ":8081"
	}
	if cfg.OpenAI.APIKeyEnv == "" {
		cfg.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.OpenAI.EmbeddingModel == "" {
		cfg.OpenAI.EmbeddingModel = "text-embedding-3-large"
	}
	if cfg.OpenAI.ChatModel == "" {
		cfg.OpenAI.ChatModel = "gpt-4o-mini"
	}
	if cfg.OpenAI.TimeoutSecs == 0 {
		cfg.OpenAI.TimeoutSecs = 120
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = "milvus"
	}
	if cfg.Store.Milvus.Host == "" {
		cfg.Store.Milvus.Host = "localhost"
	}
	if cfg.Store.Milvus.Port == "" {
		cfg.Store.Milvus.Port = "19530"
	}
	if cfg.Store.Milvus.Collection == "" {
		cfg.Store.Milvus.Collection = "contexta_documents"
	}
	if cfg.Chunker.MaxTokens == 0 {
		cfg.Chunker.MaxTokens = 500
	}
	if cfg.Chunker.Overlap == 0 {
		cfg.Chunker.Overlap = 100
	}
	if cfg.Callback.MaxRetries == 0 {
		cfg.Callback.MaxRetries = 3
	}
	if cfg.Callback.BackoffSecs == 0 {
		cfg.Callback.BackoffSecs = 2
	}
	if cfg.Callback.TimeoutSecs == 0 {
		cfg.Callback.TimeoutSecs = 5
	}
	if cfg.Query.TopK == 0 {
		cfg.Query.TopK = 10
	}
	if cfg.Query.RerankTopK == 0 {
		cfg.Query.RerankTopK = 5
	}
	if cfg.Query.MaxContextLength == 0 {
		cfg.Query.MaxContextLength = 3000
	}
	if cfg.Telegram.TokenEnv == "" {
		cfg.Telegram.TokenEnv = "TG_BOT_TOKEN"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// applyEnvOverrides lets deployment environments adjust connection details
// without editing the file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MILVUS_HOST"); v != "" {
		cfg.Store.Milvus.Host = v
	}
	if v := os.Getenv("MILVUS_PORT"); v != "" {
		cfg.Store.Milvus.Port = v
	}
	if v := os.Getenv("STORE_TYPE"); v != "" {
		cfg.Store.Type = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.OpenAI.EmbeddingModel = v
	}
	if v := os.Getenv("CHAT_MODEL"); v != "" {
		cfg.OpenAI.ChatModel = v
	}
	if v := os.Getenv("API_ADDR"); v != "" {
		cfg.Server.APIAddr = v
	}
	if v := os.Getenv("INGEST_ADDR"); v != "" {
		cfg.Server.IngestAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
