package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider names accepted for the AI backend pair.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

// DBConfig holds the knowledge store connection settings.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// DSN renders the pgx connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

// OllamaConfig configures the self-hosted backend pair.
type OllamaConfig struct {
	URL            string  `yaml:"url"`
	EmbedModel     string  `yaml:"embed_model"`
	GenModel       string  `yaml:"gen_model"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	GenerateRPS    float64 `yaml:"generate_rps"`
}

// OpenAIConfig configures the OpenAI-compatible backend pair.
type OpenAIConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	EmbedModel     string `yaml:"embed_model"`
	GenModel       string `yaml:"gen_model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// CacheConfig bounds the per-scope answer cache. Size 0 disables it.
type CacheConfig struct {
	Size       int `yaml:"size"`
	TTLMinutes int `yaml:"ttl_minutes"`
}

// AlertConfig points at the notification sink. Empty URL disables alerting.
type AlertConfig struct {
	WebhookURL     string `yaml:"webhook_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Config is the full service configuration. Values load from an optional
// YAML file first, then environment variables override field by field.
type Config struct {
	Env  string `yaml:"env"`
	Port string `yaml:"port"`

	DB     DBConfig     `yaml:"db"`
	AI     string       `yaml:"ai_provider"`
	Ollama OllamaConfig `yaml:"ollama"`
	OpenAI OpenAIConfig `yaml:"openai"`
	Cache  CacheConfig  `yaml:"cache"`
	Alerts AlertConfig  `yaml:"alerts"`

	AnswerMaxTokens int  `yaml:"answer_max_tokens"`
	OTelEnabled     bool `yaml:"otel_enabled"`
}

func defaults() *Config {
	return &Config{
		Env:  "development",
		Port: "9020",
		DB: DBConfig{
			Host:     "knowledge-db",
			Port:     "5432",
			User:     "insight_user",
			Password: "insight_password",
			Name:     "insight_db",
			MaxConns: 10,
			MinConns: 2,
		},
		AI: ProviderOllama,
		Ollama: OllamaConfig{
			URL:            "http://ollama:11434",
			EmbedModel:     "embeddinggemma",
			GenModel:       "gemma3:4b",
			TimeoutSeconds: 60,
			GenerateRPS:    2,
		},
		OpenAI: OpenAIConfig{
			BaseURL:        "https://api.openai.com/v1",
			EmbedModel:     "text-embedding-3-small",
			GenModel:       "gpt-4o-mini",
			TimeoutSeconds: 60,
		},
		Cache: CacheConfig{
			Size:       256,
			TTLMinutes: 10,
		},
		Alerts: AlertConfig{
			TimeoutSeconds: 5,
		},
		AnswerMaxTokens: 768,
	}
}

// Load builds the configuration. configPath may be empty; a missing file at
// a non-empty path is an error, because an operator asked for it.
func Load(configPath string) (*Config, error) {
	cfg := defaults()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Env, "ENV")
	setString(&c.Port, "PORT")

	setString(&c.DB.Host, "DB_HOST")
	setString(&c.DB.Port, "DB_PORT")
	setString(&c.DB.User, "DB_USER")
	c.DB.Password = getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", c.DB.Password)
	setString(&c.DB.Name, "DB_NAME")
	setInt(&c.DB.MaxConns, "DB_MAX_CONNS")
	setInt(&c.DB.MinConns, "DB_MIN_CONNS")

	setString(&c.AI, "AI_PROVIDER")

	setString(&c.Ollama.URL, "OLLAMA_URL")
	setString(&c.Ollama.EmbedModel, "OLLAMA_EMBED_MODEL")
	setString(&c.Ollama.GenModel, "OLLAMA_GEN_MODEL")
	setInt(&c.Ollama.TimeoutSeconds, "OLLAMA_TIMEOUT")
	setFloat(&c.Ollama.GenerateRPS, "OLLAMA_GENERATE_RPS")

	c.OpenAI.APIKey = getSecret("OPENAI_API_KEY", "OPENAI_API_KEY_FILE", c.OpenAI.APIKey)
	setString(&c.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&c.OpenAI.EmbedModel, "OPENAI_EMBED_MODEL")
	setString(&c.OpenAI.GenModel, "OPENAI_GEN_MODEL")
	setInt(&c.OpenAI.TimeoutSeconds, "OPENAI_TIMEOUT")

	setInt(&c.Cache.Size, "ANSWER_CACHE_SIZE")
	setInt(&c.Cache.TTLMinutes, "ANSWER_CACHE_TTL_MINUTES")

	setString(&c.Alerts.WebhookURL, "ALERT_WEBHOOK_URL")
	setInt(&c.Alerts.TimeoutSeconds, "ALERT_TIMEOUT")

	setInt(&c.AnswerMaxTokens, "ANSWER_MAX_TOKENS")
	setBool(&c.OTelEnabled, "OTEL_ENABLED")
}

// Validate rejects configurations the engine cannot start with.
func (c *Config) Validate() error {
	switch c.AI {
	case ProviderOllama, ProviderOpenAI, ProviderNone:
	default:
		return fmt.Errorf("unknown ai_provider %q", c.AI)
	}
	if c.AI == ProviderOpenAI && c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai provider selected but no api key configured")
	}
	if c.AnswerMaxTokens <= 0 {
		return fmt.Errorf("answer_max_tokens must be positive, got %d", c.AnswerMaxTokens)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache size must be non-negative, got %d", c.Cache.Size)
	}
	return nil
}

func setString(dst *string, key string) {
	if value, ok := os.LookupEnv(key); ok {
		*dst = value
	}
}

func setInt(dst *int, key string) {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*dst = parsed
		}
	}
}

func setFloat(dst *float64, key string) {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			*dst = parsed
		}
	}
}

func setBool(dst *bool, key string) {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*dst = parsed
		}
	}
}

// getSecret resolves a secret from the environment directly or from a file
// referenced by a companion *_FILE variable.
func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		if content, err := os.ReadFile(filePath); err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}
