package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Storage    StorageConfig    `mapstructure:"storage" validate:"required"`
	LLM        LLMConfig        `mapstructure:"llm" validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
}

// ServerConfig contains process-level settings shared by the CLI and the
// HTTP server.
type ServerConfig struct {
	Port      int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel  string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"omitempty,oneof=json text"`
}

// StorageConfig selects and configures the deck store.
type StorageConfig struct {
	// Driver is either "sqlite" (a local file) or "postgres".
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlite postgres"`

	// Path is the SQLite database file. Required for the sqlite driver.
	Path string `mapstructure:"path" validate:"required_if=Driver sqlite"`

	// URL is the PostgreSQL connection string. Required for the postgres driver.
	URL string `mapstructure:"url" validate:"required_if=Driver postgres"`

	// Timeout bounds every store operation.
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	// Provider is "gemini" or "openai" (any OpenAI-compatible endpoint).
	Provider string `mapstructure:"provider" validate:"required,oneof=gemini openai"`

	// Model is the provider-specific model name.
	Model string `mapstructure:"model" validate:"required"`

	APIKey string `mapstructure:"api_key"`

	// BaseURL overrides the OpenAI-compatible endpoint (e.g. a local Ollama).
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`

	MaxTokens   int     `mapstructure:"max_tokens" validate:"gt=0,lte=65536"`
	Temperature float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`

	// Timeout bounds a single completion call.
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`

	// RetryBackoff is the fixed wait before the single retry of a failed call.
	RetryBackoff time.Duration `mapstructure:"retry_backoff" validate:"gte=0"`

	// PromptTemplatePath optionally replaces the built-in prompt template.
	PromptTemplatePath string `mapstructure:"prompt_template_path" validate:"omitempty,file"`
}

// GenerationConfig tunes the generation pipeline.
type GenerationConfig struct {
	MaxChunkChars int `mapstructure:"max_chunk_chars" validate:"gt=0"`
	Workers       int `mapstructure:"workers" validate:"gt=0,lte=32"`
	DefaultCount  int `mapstructure:"default_count" validate:"gt=0"`
}
