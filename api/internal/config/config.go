package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port      string `yaml:"port"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	ModelProvider    string        `yaml:"model_provider"`
	ModelTimeout     time.Duration `yaml:"model_timeout"`
	ModelTemperature float64       `yaml:"model_temperature"`

	OpenAIAPIKey    string `yaml:"openai_api_key"`
	OpenAIModel     string `yaml:"openai_model"`
	OpenAIBaseURL   string `yaml:"openai_base_url"`
	GeminiAPIKey    string `yaml:"gemini_api_key"`
	GeminiModel     string `yaml:"gemini_model"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	AnthropicModel  string `yaml:"anthropic_model"`

	RateLimit    int           `yaml:"rate_limit"`
	RateInterval time.Duration `yaml:"rate_interval"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	DatabaseURL string        `yaml:"database_url"`
	CacheSize   int           `yaml:"cache_size"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`

	AllowedOrigin  string `yaml:"allowed_origin"`
	FallbackStatus int    `yaml:"fallback_status"`
	PromptDir      string `yaml:"prompt_dir"`
	MaxBodyBytes   int64  `yaml:"max_body_bytes"`
}

func Default() *Config {
	return &Config{
		Port:      "8000",
		LogLevel:  "info",
		LogFormat: "json",

		ModelProvider:    "gpt",
		ModelTimeout:     30 * time.Second,
		ModelTemperature: 0.3,

		OpenAIModel:    "gpt-4o-mini",
		GeminiModel:    "gemini-2.5-flash",
		AnthropicModel: "claude-sonnet-4-5",

		RateLimit:    20,
		RateInterval: time.Minute,

		CacheSize: 512,
		CacheTTL:  time.Hour,

		FallbackStatus: 422,
		MaxBodyBytes:   1 << 20,
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

func getEnvFloat(k string, def float64) (float64, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return f, nil
}

func getEnvDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}

// Load layers defaults, the optional YAML file at path and the environment,
// later sources winning. An empty path falls back to COPYCHECK_CONFIG.
// Missing API keys are not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("COPYCHECK_CONFIG")
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)

	c.ModelProvider = getEnv("MODEL_PROVIDER", c.ModelProvider)
	c.OpenAIAPIKey = getEnv("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.OpenAIModel = getEnv("OPENAI_MODEL", c.OpenAIModel)
	c.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", c.OpenAIBaseURL)
	c.GeminiAPIKey = getEnv("GEMINI_API_KEY", c.GeminiAPIKey)
	c.GeminiModel = getEnv("GEMINI_MODEL", c.GeminiModel)
	c.AnthropicAPIKey = getEnv("ANTHROPIC_API_KEY", c.AnthropicAPIKey)
	c.AnthropicModel = getEnv("ANTHROPIC_MODEL", c.AnthropicModel)

	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.AllowedOrigin = getEnv("ALLOWED_ORIGIN", c.AllowedOrigin)
	c.PromptDir = getEnv("PROMPT_DIR", c.PromptDir)

	var err error
	if c.ModelTimeout, err = getEnvDuration("MODEL_TIMEOUT", c.ModelTimeout); err != nil {
		return err
	}
	if c.ModelTemperature, err = getEnvFloat("MODEL_TEMPERATURE", c.ModelTemperature); err != nil {
		return err
	}
	if c.RateLimit, err = getEnvInt("RATE_LIMIT", c.RateLimit); err != nil {
		return err
	}
	if c.RateInterval, err = getEnvDuration("RATE_INTERVAL", c.RateInterval); err != nil {
		return err
	}
	if c.RedisDB, err = getEnvInt("REDIS_DB", c.RedisDB); err != nil {
		return err
	}
	if c.CacheSize, err = getEnvInt("CACHE_SIZE", c.CacheSize); err != nil {
		return err
	}
	if c.CacheTTL, err = getEnvDuration("CACHE_TTL", c.CacheTTL); err != nil {
		return err
	}
	if c.FallbackStatus, err = getEnvInt("FALLBACK_STATUS", c.FallbackStatus); err != nil {
		return err
	}
	maxBody, err := getEnvInt("MAX_BODY_BYTES", int(c.MaxBodyBytes))
	if err != nil {
		return err
	}
	c.MaxBodyBytes = int64(maxBody)
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	switch c.ModelProvider {
	case "gpt", "openai", "gemini", "google", "claude", "anthropic":
	default:
		errs = append(errs, fmt.Errorf("unknown model provider %q", c.ModelProvider))
	}
	if c.FallbackStatus < 200 || c.FallbackStatus > 599 {
		errs = append(errs, fmt.Errorf("fallback status %d is not an HTTP status", c.FallbackStatus))
	}
	if c.RateLimit < 1 {
		errs = append(errs, errors.New("rate limit must be positive"))
	}
	if c.RateInterval <= 0 {
		errs = append(errs, errors.New("rate interval must be positive"))
	}
	if c.ModelTemperature < 0 || c.ModelTemperature > 2 {
		errs = append(errs, fmt.Errorf("model temperature %.2f out of range", c.ModelTemperature))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for Port.
func (c *Config) Addr() string { return ":" + c.Port }

// APIKey and Model return the credentials of the configured provider.
func (c *Config) APIKey() string {
	switch c.ModelProvider {
	case "gemini", "google":
		return c.GeminiAPIKey
	case "claude", "anthropic":
		return c.AnthropicAPIKey
	default:
		return c.OpenAIAPIKey
	}
}

func (c *Config) Model() string {
	switch c.ModelProvider {
	case "gemini", "google":
		return c.GeminiModel
	case "claude", "anthropic":
		return c.AnthropicModel
	default:
		return c.OpenAIModel
	}
}
