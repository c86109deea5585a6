package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	LLM LLMConfig
	Log LogConfig
}

// LLMConfig holds the inference-server configuration. It is fixed for the
// lifetime of a session; reconfiguring means creating a new session.
type LLMConfig struct {
	Provider     string  `mapstructure:"provider"`
	Endpoint     string  `mapstructure:"endpoint"`
	APIKey       string  `mapstructure:"api_key"`
	Model        string  `mapstructure:"model"`
	Temperature  float64 `mapstructure:"temperature"`
	MaxTokens    int     `mapstructure:"max_tokens"`
	Stream       bool    `mapstructure:"stream"`
	SystemPrompt string  `mapstructure:"system_prompt"`
}

// LogConfig holds the logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads config.yaml (or the file named by CONFIG_PATH) and merges
// FORGE_* environment variables over it. A missing config file is not an
// error; the defaults target a local Ollama.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("llm.endpoint", "http://localhost:11434")
	v.SetDefault("llm.model", "qwen2.5-coder:7b")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.stream", false)
	// Empty defaults so AutomaticEnv can populate keys absent from the file.
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.system_prompt", "")
	v.SetDefault("log.level", "info")

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("FORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
