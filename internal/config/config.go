// Package config holds the explicit configuration value threaded through
// construction, plus logger setup.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider names for the LLM backend.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds all configuration values.
type Config struct {
	// LLM backend
	LLMProvider     string `yaml:"llm_provider"`
	LLMModel        string `yaml:"llm_model"`
	OllamaHost      string `yaml:"ollama_host"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`

	// Vision model used for screenshot transcription
	VisionModel string `yaml:"vision_model"`

	// Chunking
	MaxChunkChars int `yaml:"max_chunk_chars"`

	// HTTP server
	ListenAddr string `yaml:"listen_addr"`

	// Logging
	LogFile  string     `yaml:"log_file"`
	LogLevel slog.Level `yaml:"-"`

	// Raw log level string from file/env, parsed into LogLevel.
	LogLevelName string `yaml:"log_level"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		LLMProvider:   ProviderOllama,
		LLMModel:      "llama3.1:8b",
		OllamaHost:    "http://localhost:11434",
		VisionModel:   "llava",
		MaxChunkChars: 12000,
		ListenAddr:    ":8000",
		LogFile:       "/tmp/chatlens.log",
		LogLevel:      slog.LevelInfo,
		LogLevelName:  "INFO",
	}
}

// Load reads configuration from the environment on top of the defaults.
func Load() Config {
	cfg := Defaults()
	applyEnv(&cfg)
	return cfg
}

// LoadFile reads a YAML config file, then applies environment overrides.
// A missing file yields env-over-defaults only.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.LLMProvider = getEnv("CHATLENS_LLM_PROVIDER", cfg.LLMProvider)
	cfg.LLMModel = getEnv("CHATLENS_LLM_MODEL", cfg.LLMModel)
	cfg.OllamaHost = getEnv("OLLAMA_HOST", cfg.OllamaHost)
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.AnthropicAPIKey = getEnv("ANTHROPIC_API_KEY", cfg.AnthropicAPIKey)
	cfg.VisionModel = getEnv("CHATLENS_VISION_MODEL", cfg.VisionModel)
	cfg.ListenAddr = getEnv("CHATLENS_LISTEN_ADDR", cfg.ListenAddr)
	cfg.LogFile = getEnv("CHATLENS_LOG_FILE", cfg.LogFile)
	cfg.LogLevelName = getEnv("CHATLENS_LOG_LEVEL", cfg.LogLevelName)
	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)

	if v := os.Getenv("CHATLENS_MAX_CHUNK_CHARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxChunkChars = n
		}
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
