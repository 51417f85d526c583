package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration, loaded once at startup.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	LLM       LLMConfig       `yaml:"llm"`
	Assistant AssistantConfig `yaml:"assistant"`
	Import    ImportConfig    `yaml:"import"`
	Logger    LoggerConfig    `yaml:"logger"`
	StyleFile string          `yaml:"style_file"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig selects the backing store. A postgres:// DSN targets
// PostgreSQL; anything else is treated as a SQLite path.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type LLMConfig struct {
	OpenAIKey     string `yaml:"openai_key"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
	AnthropicKey  string `yaml:"anthropic_key"`
	OllamaURL     string `yaml:"ollama_url"`
	Model         string `yaml:"model"`
}

// AssistantConfig bounds one chat round-trip through the dispatcher.
type AssistantConfig struct {
	SystemPromptFile string        `yaml:"system_prompt_file"`
	MaxRounds        int           `yaml:"max_rounds"`
	TokenBudget      int           `yaml:"token_budget"`
	MaxAttempts      int           `yaml:"max_attempts"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	RatePerMinute    int           `yaml:"rate_per_minute"`
}

// ImportConfig configures job-URL ingestion. When the scrape API key is set,
// the hosted scraping service is used; otherwise plain HTTP fetch.
type ImportConfig struct {
	ScrapeAPIKey string `yaml:"scrape_api_key"`
	ScrapeAPIURL string `yaml:"scrape_api_url"`
}

type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads and validates a YAML config file, applying defaults for
// unset fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a config with sensible defaults for local use.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Addr: ":8000"},
		Database: DatabaseConfig{DSN: "data/jobpilot.db"},
		LLM:      LLMConfig{Model: "gpt-4"},
		Assistant: AssistantConfig{
			MaxRounds:      5,
			TokenBudget:    24000,
			MaxAttempts:    3,
			RequestTimeout: 60 * time.Second,
		},
		Logger: LoggerConfig{Level: "info", Format: "text", Output: "stderr"},
	}
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Database.DSN == "" {
		c.Database.DSN = d.Database.DSN
	}
	if c.LLM.Model == "" {
		c.LLM.Model = d.LLM.Model
	}
	if c.Assistant.MaxRounds <= 0 {
		c.Assistant.MaxRounds = d.Assistant.MaxRounds
	}
	if c.Assistant.TokenBudget <= 0 {
		c.Assistant.TokenBudget = d.Assistant.TokenBudget
	}
	if c.Assistant.MaxAttempts <= 0 {
		c.Assistant.MaxAttempts = d.Assistant.MaxAttempts
	}
	if c.Assistant.RequestTimeout <= 0 {
		c.Assistant.RequestTimeout = d.Assistant.RequestTimeout
	}
}

func (c *Config) Validate() error {
	if c.Assistant.MaxRounds > 25 {
		return fmt.Errorf("assistant.max_rounds %d is unreasonably high", c.Assistant.MaxRounds)
	}
	switch c.Logger.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logger.format %q: must be text or json", c.Logger.Format)
	}
	return nil
}
