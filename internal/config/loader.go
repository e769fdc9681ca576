package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// EVENTWISE_LLM_ENABLED or EVENTWISE_STORE_REDIS_ADDR.
const EnvPrefix = "EVENTWISE"

// Load reads configuration in priority order: defaults, then the file (an
// explicit path, or eventwise.yaml in . or $HOME/.eventwise), then env.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("eventwise")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.eventwise")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.redis.addr", "")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.key_prefix", "eventwise")
	v.SetDefault("store.redis.ttl", "24h")

	v.SetDefault("archive.enabled", true)
	v.SetDefault("archive.path", "eventwise.db")

	v.SetDefault("planner.policy", "flexible")
	v.SetDefault("planner.history_window", 10)
	v.SetDefault("planner.turn_timeout", "90s")
	v.SetDefault("planner.generation_timeout", "60s")

	v.SetDefault("llm.enabled", false)
	v.SetDefault("llm.log_calls", false)
	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("llm.endpoint", "http://localhost:11434")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "llama3.2")
	v.SetDefault("llm.timeout_ms", 10000)
	v.SetDefault("llm.max_retries", 1)
	v.SetDefault("llm.dialogue_timeout_ms", 0)
	v.SetDefault("llm.confirm_timeout_ms", 0)

	v.SetDefault("services.azure_images.endpoint", "")
	v.SetDefault("services.azure_images.api_key", "")
	v.SetDefault("services.azure_images.deployment", "dall-e-3")
	v.SetDefault("services.azure_images.api_version", "2024-02-01")
	v.SetDefault("services.qloo.endpoint", "https://hackathon.api.qloo.com")
	v.SetDefault("services.qloo.api_key", "")
	v.SetDefault("services.youtube.endpoint", "")
	v.SetDefault("services.youtube.api_key", "")
	v.SetDefault("services.unsplash.endpoint", "https://api.unsplash.com")
	v.SetDefault("services.unsplash.api_key", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
