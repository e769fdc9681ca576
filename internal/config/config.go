// Package config loads application configuration from defaults, an
// optional YAML file and EVENTWISE_* environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/alexanderramin/eventwise/internal/completeness"
	"github.com/alexanderramin/eventwise/internal/generation"
	"github.com/alexanderramin/eventwise/internal/llm"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Planner  PlannerConfig  `mapstructure:"planner"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Services ServicesConfig `mapstructure:"services"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StoreConfig selects where live sessions are kept.
type StoreConfig struct {
	Backend string      `mapstructure:"backend"` // memory | redis
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// ArchiveConfig controls the sqlite chat archive.
type ArchiveConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// PlannerConfig tunes the conversation engine.
type PlannerConfig struct {
	Policy            string        `mapstructure:"policy"`
	HistoryWindow     int           `mapstructure:"history_window"`
	TurnTimeout       time.Duration `mapstructure:"turn_timeout"`
	GenerationTimeout time.Duration `mapstructure:"generation_timeout"`
}

// LLMConfig mirrors llm.LLMConfig with per-task timeout overrides.
type LLMConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	LogCalls         bool   `mapstructure:"log_calls"`
	Provider         string `mapstructure:"provider"`
	Endpoint         string `mapstructure:"endpoint"`
	APIKey           string `mapstructure:"api_key"`
	Model            string `mapstructure:"model"`
	TimeoutMs        int    `mapstructure:"timeout_ms"`
	MaxRetries       int    `mapstructure:"max_retries"`
	DialogueTimeout  int    `mapstructure:"dialogue_timeout_ms"`
	ConfirmTimeoutMs int    `mapstructure:"confirm_timeout_ms"`
}

// ServicesConfig holds credentials for the recommendation sources.
type ServicesConfig struct {
	AzureImages AzureImagesConfig `mapstructure:"azure_images"`
	Qloo        EndpointKey       `mapstructure:"qloo"`
	YouTube     EndpointKey       `mapstructure:"youtube"`
	Unsplash    EndpointKey       `mapstructure:"unsplash"`
}

type AzureImagesConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	APIKey     string `mapstructure:"api_key"`
	Deployment string `mapstructure:"deployment"`
	APIVersion string `mapstructure:"api_version"`
}

type EndpointKey struct {
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate reports values that cannot be wired.
func (c *Config) Validate() error {
	if _, err := completeness.PolicyByName(c.Planner.Policy); err != nil {
		return err
	}
	switch c.Store.Backend {
	case "memory":
	case "redis":
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Planner.TurnTimeout <= 0 || c.Planner.GenerationTimeout <= 0 {
		return fmt.Errorf("planner timeouts must be positive")
	}
	if c.LLM.Enabled {
		return c.LLMSettings().Validate()
	}
	return nil
}

// LLMSettings converts the llm section into the client configuration.
func (c *Config) LLMSettings() llm.LLMConfig {
	out := llm.DefaultConfig()
	out.Enabled = c.LLM.Enabled
	out.LogCalls = c.LLM.LogCalls
	out.Provider = llm.Provider(c.LLM.Provider)
	out.Endpoint = c.LLM.Endpoint
	out.APIKey = c.LLM.APIKey
	out.Model = c.LLM.Model
	out.TimeoutMs = c.LLM.TimeoutMs
	out.MaxRetries = c.LLM.MaxRetries
	out = out.WithTaskTimeout(llm.TaskDialogue, c.LLM.DialogueTimeout)
	out = out.WithTaskTimeout(llm.TaskConfirm, c.LLM.ConfirmTimeoutMs)
	return out
}

// Policy resolves the configured completeness policy.
func (c *Config) Policy() completeness.Policy {
	p, err := completeness.PolicyByName(c.Planner.Policy)
	if err != nil {
		return completeness.FlexiblePolicy()
	}
	return p
}

func (c *Config) ImageConfig() generation.ImageConfig {
	a := c.Services.AzureImages
	return generation.ImageConfig{Endpoint: a.Endpoint, APIKey: a.APIKey, Deployment: a.Deployment, APIVersion: a.APIVersion}
}

func (c *Config) QlooConfig() generation.QlooConfig {
	return generation.QlooConfig{Endpoint: c.Services.Qloo.Endpoint, APIKey: c.Services.Qloo.APIKey}
}

func (c *Config) YouTubeConfig() generation.YouTubeConfig {
	return generation.YouTubeConfig{Endpoint: c.Services.YouTube.Endpoint, APIKey: c.Services.YouTube.APIKey}
}

func (c *Config) UnsplashConfig() generation.UnsplashConfig {
	return generation.UnsplashConfig{Endpoint: c.Services.Unsplash.Endpoint, AccessKey: c.Services.Unsplash.APIKey}
}
