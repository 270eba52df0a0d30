// Package config provides application-wide configuration loaded from env
// vars with an optional YAML overlay. All fields have safe defaults so the
// binary runs locally against Ollama without any setup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// BackendConfig holds the per-capability endpoints of one LLM backend.
type BackendConfig struct {
	ChatURL     string `yaml:"chat_url"`
	ChatModel   string `yaml:"chat_model"`
	EmbedURL    string `yaml:"embed_url"`
	EmbedModel  string `yaml:"embed_model"`
	RerankURL   string `yaml:"rerank_url"`   // empty → rerank unsupported
	RerankModel string `yaml:"rerank_model"` //
	APIKey      string `yaml:"api_key"`
}

// Config holds runtime configuration for the assistant.
type Config struct {
	// Server
	Host string `yaml:"host"` // HOST — default "0.0.0.0"
	Port int    `yaml:"port"` // PORT — default 8080

	// Provider routing
	HostProvider string        `yaml:"host_provider"` // HOST_PROVIDER — default "ollama"
	Ollama       BackendConfig `yaml:"ollama"`
	Ionos        BackendConfig `yaml:"ionos"`
	Opea         BackendConfig `yaml:"opea"`

	// Capability timeouts. Chat is ~30x the utility timeout because
	// generation latency dominates. YAML overlays express these in whole
	// seconds, matching the env vars.
	ChatTimeout         time.Duration `yaml:"-"` // CHAT_TIMEOUT_SECONDS — default 300s
	EmbedTimeout        time.Duration `yaml:"-"` // EMBED_TIMEOUT_SECONDS — default 10s
	ChatTimeoutSeconds  int           `yaml:"chat_timeout_seconds"`
	EmbedTimeoutSeconds int           `yaml:"embed_timeout_seconds"`

	// Retrieval
	TargetDim         int    `yaml:"target_dim"`         // TARGET_EMBEDDING_DIM — default 1024
	RetrievalTopK     int    `yaml:"retrieval_top_k"`    // RETRIEVAL_TOP_K — default 5
	RerankEnabled     bool   `yaml:"rerank_enabled"`     // RERANK_ENABLED — default false
	RerankProvider    string `yaml:"rerank_provider"`    // RERANK_PROVIDER — default "opea"
	DefaultCollection string `yaml:"default_collection"` // DEFAULT_COLLECTION — default "machine-docs"
	VectorDBPath      string `yaml:"vectordb_path"`      // VECTORDB_PATH — default "./data/vectordb"

	// Intent
	ChartIntentEnabled bool `yaml:"chart_intent_enabled"` // CHART_INTENT_ENABLED — default true

	// Live data
	PostgresDSN      string `yaml:"postgres_dsn"`      // POSTGRES_DSN
	PostgresPassword string `yaml:"postgres_password"` // POSTGRES_PASSWORD
	AlertAPIURL      string `yaml:"alert_api_url"`     // ALERT_API_URL
	AlertAPIKey      string `yaml:"alert_api_key"`     // ALERT_API_KEY
}

// Load reads configuration from environment variables, applying defaults
// for missing values.
func Load() Config {
	return Config{
		Host:         envOr("HOST", "0.0.0.0"),
		Port:         envIntOr("PORT", 8080),
		HostProvider: envOr("HOST_PROVIDER", "ollama"),
		Ollama: BackendConfig{
			ChatURL:    envOr("OLLAMA_CHAT_URL", "http://localhost:11434/v1"),
			ChatModel:  envOr("OLLAMA_CHAT_MODEL", "llama3.1:8b"),
			EmbedURL:   envOr("OLLAMA_EMBED_URL", "http://localhost:11434/v1"),
			EmbedModel: envOr("OLLAMA_EMBED_MODEL", "nomic-embed-text"),
		},
		Ionos: BackendConfig{
			ChatURL:    envOr("IONOS_CHAT_URL", "https://openai.inference.de-txl.ionos.com/v1"),
			ChatModel:  envOr("IONOS_CHAT_MODEL", "meta-llama/Meta-Llama-3.1-8B-Instruct"),
			EmbedURL:   envOr("IONOS_EMBED_URL", "https://openai.inference.de-txl.ionos.com/v1"),
			EmbedModel: envOr("IONOS_EMBED_MODEL", "BAAI/bge-large-en-v1.5"),
			APIKey:     os.Getenv("IONOS_API_KEY"),
		},
		Opea: BackendConfig{
			ChatURL:     envOr("OPEA_CHAT_URL", "http://localhost:8888/v1"),
			ChatModel:   envOr("OPEA_CHAT_MODEL", "Intel/neural-chat-7b-v3-3"),
			EmbedURL:    envOr("OPEA_EMBED_URL", "http://localhost:6000/v1"),
			EmbedModel:  envOr("OPEA_EMBED_MODEL", "BAAI/bge-base-en-v1.5"),
			RerankURL:   envOr("OPEA_RERANK_URL", "http://localhost:8000/v1"),
			RerankModel: envOr("OPEA_RERANK_MODEL", "BAAI/bge-reranker-base"),
			APIKey:      os.Getenv("OPEA_API_KEY"),
		},
		ChatTimeout:        time.Duration(envIntOr("CHAT_TIMEOUT_SECONDS", 300)) * time.Second,
		EmbedTimeout:       time.Duration(envIntOr("EMBED_TIMEOUT_SECONDS", 10)) * time.Second,
		TargetDim:          envIntOr("TARGET_EMBEDDING_DIM", 1024),
		RetrievalTopK:      envIntOr("RETRIEVAL_TOP_K", 5),
		RerankEnabled:      envBoolOr("RERANK_ENABLED", false),
		RerankProvider:     envOr("RERANK_PROVIDER", "opea"),
		DefaultCollection:  envOr("DEFAULT_COLLECTION", "machine-docs"),
		VectorDBPath:       envOr("VECTORDB_PATH", "./data/vectordb"),
		ChartIntentEnabled: envBoolOr("CHART_INTENT_ENABLED", true),
		PostgresDSN:        envOr("POSTGRES_DSN", "postgres://postgres@localhost:5432/timeseries"),
		PostgresPassword:   os.Getenv("POSTGRES_PASSWORD"),
		AlertAPIURL:        envOr("ALERT_API_URL", "http://localhost:9080/alerts"),
		AlertAPIKey:        os.Getenv("ALERT_API_KEY"),
	}
}

// LoadFile returns Load() with the YAML file at path overlaid on top.
// Fields present in the file replace the env/default values.
func LoadFile(path string) (Config, error) {
	cfg := Load()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.ChatTimeoutSeconds > 0 {
		cfg.ChatTimeout = time.Duration(cfg.ChatTimeoutSeconds) * time.Second
	}
	if cfg.EmbedTimeoutSeconds > 0 {
		cfg.EmbedTimeout = time.Duration(cfg.EmbedTimeoutSeconds) * time.Second
	}
	return cfg, nil
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envIntOr parses an integer env var, falling back on missing or invalid values.
func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// envBoolOr parses a boolean env var, falling back on missing or invalid values.
func envBoolOr(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
