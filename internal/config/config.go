package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendGemini = "gemini"
	BackendOllama = "ollama"
)

// Config holds all configuration for the server and tools.
// Values are read by viper from an optional config.yaml or the environment.
type Config struct {
	Port        string `mapstructure:"PORT"`
	PublicURL   string `mapstructure:"PUBLIC_URL"`
	CORSOrigins string `mapstructure:"CORS_ORIGINS"`

	AIBackend          string `mapstructure:"AI_BACKEND"`
	APIKey             string `mapstructure:"API_KEY"`
	GeminiAPIKey       string `mapstructure:"GEMINI_API_KEY"`
	GeminiSearchModel  string `mapstructure:"GEMINI_SEARCH_MODEL"`
	GeminiAdvisorModel string `mapstructure:"GEMINI_ADVISOR_MODEL"`
	OllamaHost         string `mapstructure:"OLLAMA_HOST"`
	OllamaModel        string `mapstructure:"OLLAMA_MODEL"`

	SourcesFile           string `mapstructure:"SOURCES_FILE"`
	SyncTimeoutSeconds    int    `mapstructure:"SYNC_TIMEOUT_SECONDS"`
	ReminderThresholdDays int    `mapstructure:"REMINDER_THRESHOLD_DAYS"`
	UserBio               string `mapstructure:"USER_BIO"`
	Seed                  bool   `mapstructure:"SEED"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

var defaults = map[string]any{
	"PORT":                    "8081",
	"PUBLIC_URL":              "http://localhost:4200",
	"CORS_ORIGINS":            "",
	"AI_BACKEND":              BackendGemini,
	"API_KEY":                 "",
	"GEMINI_API_KEY":          "",
	"GEMINI_SEARCH_MODEL":     "gemini-3-pro-preview",
	"GEMINI_ADVISOR_MODEL":    "gemini-3-flash-preview",
	"OLLAMA_HOST":             "http://localhost:11434",
	"OLLAMA_MODEL":            "qwen2.5:14b",
	"SOURCES_FILE":            "",
	"SYNC_TIMEOUT_SECONDS":    90,
	"REMINDER_THRESHOLD_DAYS": 3,
	"USER_BIO":                "",
	"SEED":                    true,
	"LOG_LEVEL":               "info",
	"LOG_FORMAT":              "json",
}

// Load reads .env (when present), then config.yaml from path (when present),
// then the environment, which wins.
func Load(path string) (Config, error) {
	// .env is optional; real environment variables are never overridden.
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	if path != "" {
		v.AddConfigPath(path)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	c.AIBackend = strings.ToLower(strings.TrimSpace(c.AIBackend))
	switch c.AIBackend {
	case BackendGemini, BackendOllama:
	default:
		return fmt.Errorf("AI_BACKEND must be %q or %q, got %q", BackendGemini, BackendOllama, c.AIBackend)
	}
	if c.Port == "" {
		return errors.New("PORT is not set")
	}
	if c.SyncTimeoutSeconds <= 0 {
		return fmt.Errorf("SYNC_TIMEOUT_SECONDS must be positive, got %d", c.SyncTimeoutSeconds)
	}
	if c.ReminderThresholdDays < 0 {
		c.ReminderThresholdDays = 0
	}
	return nil
}

// GeminiKey prefers API_KEY and falls back to GEMINI_API_KEY.
func (c Config) GeminiKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	return c.GeminiAPIKey
}

func (c Config) SyncTimeout() time.Duration {
	return time.Duration(c.SyncTimeoutSeconds) * time.Second
}

// AllowedOrigins splits CORS_ORIGINS. PUBLIC_URL is always allowed.
func (c Config) AllowedOrigins() []string {
	var out []string
	seen := map[string]bool{}
	add := func(o string) {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" || seen[o] {
			return
		}
		seen[o] = true
		out = append(out, o)
	}
	add(c.PublicURL)
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		add(o)
	}
	return out
}
