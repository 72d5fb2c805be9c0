package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "FLASHDECK"

// Options customize where Load looks for configuration.
type Options struct {
	// ConfigFile is an explicit config file path. When empty the standard
	// search paths are used and a missing file is not an error.
	ConfigFile string

	// Offline skips the provider credential checks. Commands that never
	// call a model use it.
	Offline bool
}

// setDefaults registers default values for every key so that environment
// variables can override them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.path", defaultDatabasePath())
	v.SetDefault("storage.url", "")
	v.SetDefault("storage.timeout", 10*time.Second)

	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.model", "gemini-2.0-flash")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.max_tokens", 700)
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.retry_backoff", 2*time.Second)
	v.SetDefault("llm.prompt_template_path", "")

	v.SetDefault("generation.max_chunk_chars", 12000)
	v.SetDefault("generation.workers", 4)
	v.SetDefault("generation.default_count", 12)
}

// defaultDatabasePath returns the SQLite file location under the user's
// data directory, falling back to the working directory.
func defaultDatabasePath() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "flashdeck", "flashdeck.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "flashdeck.db"
	}
	return filepath.Join(home, ".local", "share", "flashdeck", "flashdeck.db")
}

// Load configuration from defaults, an optional YAML file and environment
// variables. Environment variables take precedence over values from config
// files. Returns a populated Config struct or an error if loading/validation fails.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("flashdeck")
		v.AddConfigPath(".")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "flashdeck"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "flashdeck"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyProviderKeyFallback(&cfg)

	if opts.Offline {
		if err := validateStruct(&cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyProviderKeyFallback fills the API key from the provider's conventional
// environment variable when FLASHDECK_LLM_API_KEY is not set.
func applyProviderKeyFallback(cfg *Config) {
	if cfg.LLM.APIKey != "" {
		return
	}
	switch cfg.LLM.Provider {
	case "gemini":
		cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// Validate checks struct tags and cross-field rules.
func Validate(cfg *Config) error {
	if err := validateStruct(cfg); err != nil {
		return err
	}

	// Gemini always needs a key; OpenAI-compatible local servers may not.
	if cfg.LLM.Provider == "gemini" && cfg.LLM.APIKey == "" {
		return errors.New("config validation failed: llm.api_key (or GEMINI_API_KEY) is required for the gemini provider")
	}
	if cfg.LLM.Provider == "openai" && cfg.LLM.APIKey == "" && cfg.LLM.BaseURL == "" {
		return errors.New("config validation failed: llm.api_key (or OPENAI_API_KEY) is required unless llm.base_url points at a local server")
	}

	return nil
}

func validateStruct(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
