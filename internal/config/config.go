// Package config loads client settings from flags, the environment, an
// optional .env file and an optional config file.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bitop-dev/mcpchat/chat"
	"github.com/bitop-dev/mcpchat/internal/logging"
	"github.com/bitop-dev/mcpchat/internal/openai"
)

const (
	BackendHTTP = "http"
	BackendSDK  = "sdk"

	DefaultEnvFile = ".env"
)

type Config struct {
	APIKey       string  `mapstructure:"openai_api_key"`
	BaseURL      string  `mapstructure:"openai_base_url"`
	Model        string  `mapstructure:"model"`
	Temperature  float64 `mapstructure:"temperature"`
	Backend      string  `mapstructure:"backend"`
	SystemPrompt string  `mapstructure:"system_prompt"`
	LogLevel     string  `mapstructure:"log_level"`
	LogFormat    string  `mapstructure:"log_format"`
}

// env maps config keys to the environment variables that set them.
var env = map[string]string{
	"openai_api_key":  "OPENAI_API_KEY",
	"openai_base_url": "OPENAI_BASE_URL",
	"model":           "MCPCHAT_MODEL",
	"temperature":     "MCPCHAT_TEMPERATURE",
	"backend":         "MCPCHAT_BACKEND",
	"system_prompt":   "MCPCHAT_SYSTEM_PROMPT",
	"log_level":       "MCPCHAT_LOG_LEVEL",
	"log_format":      "MCPCHAT_LOG_FORMAT",
}

// RegisterFlags adds the client flags to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "path to a config file (yaml, json or toml)")
	flags.String("env-file", DefaultEnvFile, "dotenv file loaded into the environment when present")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("backend", "", "model client: http or sdk")
}

// Load resolves the configuration. Precedence, highest first: flags set on
// the command line, environment (including the env file, which never
// overrides variables already set), config file, defaults.
func Load(flags *pflag.FlagSet) (Config, error) {
	envFile, configFile := DefaultEnvFile, ""
	if flags != nil {
		if f := flags.Lookup("env-file"); f != nil {
			envFile = f.Value.String()
		}
		if f := flags.Lookup("config"); f != nil {
			configFile = f.Value.String()
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetDefault("openai_base_url", openai.DefaultBaseURL)
	v.SetDefault("model", chat.DefaultModel)
	v.SetDefault("temperature", chat.DefaultTemperature)
	v.SetDefault("backend", BackendHTTP)
	v.SetDefault("system_prompt", chat.DefaultSystemPrompt)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	for key, name := range env {
		if err := v.BindEnv(key, name); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", name, err)
		}
	}
	if flags != nil {
		for key, flag := range map[string]string{"log_level": "log-level", "backend": "backend"} {
			if f := flags.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", flag, err)
				}
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	return cfg, nil
}

// Validate reports the first setting that would prevent the client from
// working.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("OPENAI_API_KEY is not set")
	}
	if c.Model == "" {
		return errors.New("model is empty")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %v is outside [0, 2]", c.Temperature)
	}
	switch c.Backend {
	case BackendHTTP, BackendSDK:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendHTTP, BackendSDK)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}
