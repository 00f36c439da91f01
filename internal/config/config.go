package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
	ProviderOllama = "ollama"
)

type Config struct {
	Server  ServerConfig
	LLM     LLMConfig
	Neo4j   Neo4jConfig
	Cypher  CypherConfig
	Catalog CatalogConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port            string        `envconfig:"SERVER_PORT" default:"8000"`
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"150s"`
	RequestTimeout  time.Duration `envconfig:"SERVER_REQUEST_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

type LLMConfig struct {
	Provider   string `envconfig:"LLM_PROVIDER" default:"ollama"`
	APIKey     string `envconfig:"LLM_API_KEY"`
	Endpoint   string `envconfig:"LLM_ENDPOINT"`
	Model      string `envconfig:"LLM_MODEL"`
	APIVersion string `envconfig:"LLM_API_VERSION" default:"2024-06-01"`
	// Timeout bounds a single generation call.
	Timeout     time.Duration `envconfig:"LLM_TIMEOUT" default:"60s"`
	MaxRetries  int           `envconfig:"LLM_MAX_RETRIES" default:"0"`
	Temperature float64       `envconfig:"LLM_TEMPERATURE" default:"0"`
	MaxTokens   int64         `envconfig:"LLM_MAX_TOKENS" default:"256"`
	// ToolMode asks the model to answer through the emit_cypher function tool.
	ToolMode bool `envconfig:"LLM_TOOL_MODE" default:"false"`
}

type Neo4jConfig struct {
	URI      string `envconfig:"NEO4J_URI" default:"bolt://localhost:7687"`
	Username string `envconfig:"NEO4J_USERNAME" default:"neo4j"`
	Password string `envconfig:"NEO4J_PASSWORD"`
	Database string `envconfig:"NEO4J_DATABASE" default:"neo4j"`
	// QueryTimeout is the server-side transaction timeout for one query.
	QueryTimeout   time.Duration `envconfig:"NEO4J_QUERY_TIMEOUT" default:"30s"`
	ConnectTimeout time.Duration `envconfig:"NEO4J_CONNECT_TIMEOUT" default:"10s"`
	MaxPoolSize    int           `envconfig:"NEO4J_MAX_POOL_SIZE" default:"50"`
	VerifyOnStart  bool          `envconfig:"NEO4J_VERIFY_ON_START" default:"true"`
}

type CypherConfig struct {
	ReadOnly      bool `envconfig:"CYPHER_READ_ONLY" default:"true"`
	EnforceSchema bool `envconfig:"CYPHER_ENFORCE_SCHEMA" default:"false"`
}

type CatalogConfig struct {
	Path string `envconfig:"CATALOG_PATH"`
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"text"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	slog.Info("configuration loaded successfully", "llm_provider", cfg.LLM.Provider, "llm_model", cfg.LLM.Model)
	return &cfg, nil
}

// Validate checks cross-field constraints and fills provider-specific
// defaults for the LLM endpoint and model.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.Endpoint == "" {
			c.LLM.Endpoint = "https://api.openai.com/v1"
		}
		if c.LLM.Model == "" {
			c.LLM.Model = "gpt-4o-mini"
		}
	case ProviderAzure:
		if c.LLM.Endpoint == "" {
			return fmt.Errorf("LLM_ENDPOINT is required for provider %q", c.LLM.Provider)
		}
		if c.LLM.Model == "" {
			c.LLM.Model = "gpt-4o"
		}
	case ProviderOllama:
		if c.LLM.Endpoint == "" {
			c.LLM.Endpoint = "http://localhost:11434/v1"
		}
		if c.LLM.Model == "" {
			c.LLM.Model = "deepseek-coder:1.3b"
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q (want %s, %s or %s)", c.LLM.Provider, ProviderOpenAI, ProviderAzure, ProviderOllama)
	}

	if c.LLM.APIKey == "" && c.LLM.Provider != ProviderOllama {
		return fmt.Errorf("LLM_API_KEY is required for provider %q", c.LLM.Provider)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive")
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("LLM_MAX_RETRIES must not be negative")
	}
	if c.Neo4j.QueryTimeout <= 0 {
		return fmt.Errorf("NEO4J_QUERY_TIMEOUT must be positive")
	}
	if c.Neo4j.URI == "" {
		return fmt.Errorf("NEO4J_URI is required")
	}
	return nil
}
