package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config stores runtime configuration for the orchestrator.
type Config struct {
	Server  ServerConfig
	Bot     BotConfig
	Redis   RedisConfig
	OpenAI  OpenAIConfig
	Rules   RulesConfig
	Session SessionConfig
}

type ServerConfig struct {
	Port string
}

type BotConfig struct {
	Names []string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

type RulesConfig struct {
	Path           string
	IterationLimit int
}

type SessionConfig struct {
	TTL time.Duration
}

// Load resolves configuration from environment variables and defaults.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Port: envOrDefault("VOXBOT_PORT", "8080"),
		},
		Bot: BotConfig{
			Names: splitList(os.Getenv("VOXBOT_BOT_NAMES")),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(os.Getenv("VOXBOT_REDIS_ADDR")),
			Password: os.Getenv("VOXBOT_REDIS_PASSWORD"),
			DB:       envOrDefaultInt("VOXBOT_REDIS_DB", 0),
		},
		OpenAI: OpenAIConfig{
			APIKey: strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
			Model:  strings.TrimSpace(os.Getenv("VOXBOT_OPENAI_MODEL")),
		},
		Rules: RulesConfig{
			Path:           strings.TrimSpace(os.Getenv("VOXBOT_SUBSTITUTIONS_FILE")),
			IterationLimit: envOrDefaultInt("VOXBOT_RULE_ITERATION_LIMIT", 10),
		},
		Session: SessionConfig{
			TTL: time.Duration(envOrDefaultInt("VOXBOT_SESSION_TTL_HOURS", 24)) * time.Hour,
		},
	}

	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = 24 * time.Hour
	}
	if cfg.Rules.IterationLimit <= 0 {
		cfg.Rules.IterationLimit = 10
	}

	return cfg, nil
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
