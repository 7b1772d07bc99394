package config

import (
	"fmt"
	"time"

	"github.com/longkey1/clippyai/internal/clippy"
	"github.com/spf13/viper"
)

// Config holds the configuration for the assistant, its providers and its
// outer surfaces (clipboard watcher, HTTP API, event publishing).
type Config struct {
	Model              string   `toml:"model" mapstructure:"model"` // Format: "provider:model" (e.g., "gemini:gemini-2.0-flash")
	GeminiBaseURL      string   `toml:"gemini_base_url" mapstructure:"gemini_base_url"`
	GeminiToken        string   `toml:"gemini_token" mapstructure:"gemini_token"`
	OpenAIBaseURL      string   `toml:"openai_base_url" mapstructure:"openai_base_url"`
	OpenAIToken        string   `toml:"openai_token" mapstructure:"openai_token"`
	AnthropicBaseURL   string   `toml:"anthropic_base_url" mapstructure:"anthropic_base_url"`
	AnthropicToken     string   `toml:"anthropic_token" mapstructure:"anthropic_token"`
	OllamaHost         string   `toml:"ollama_host" mapstructure:"ollama_host"`
	PromptDirs         []string `toml:"prompt_dirs" mapstructure:"prompt_dirs"`
	ContextWindow      int      `toml:"context_window" mapstructure:"context_window"`
	PollInterval       string   `toml:"poll_interval" mapstructure:"poll_interval"`
	MinClipboardLength int      `toml:"min_clipboard_length" mapstructure:"min_clipboard_length"`
	ListenAddr         string   `toml:"listen_addr" mapstructure:"listen_addr"`
	RequestTimeout     string   `toml:"request_timeout" mapstructure:"request_timeout"`
	NATSURL            string   `toml:"nats_url" mapstructure:"nats_url"`
	NATSToken          string   `toml:"nats_token" mapstructure:"nats_token"`
	LogLevel           string   `toml:"log_level" mapstructure:"log_level"`
	KeyringService     string   `toml:"keyring_service" mapstructure:"keyring_service"`
}

// GetModel returns the model name
func (c *Config) GetModel() string {
	return c.Model
}

// GetProvider extracts provider name from the model string
func (c *Config) GetProvider() (string, error) {
	provider, _, err := clippy.ParseModelString(c.Model)
	return provider, err
}

// GetModelName extracts model name from the model string
func (c *Config) GetModelName() (string, error) {
	_, model, err := clippy.ParseModelString(c.Model)
	return model, err
}

// GetPollInterval parses poll_interval, falling back to one second.
func (c *Config) GetPollInterval() time.Duration {
	return parseDuration(c.PollInterval, time.Second)
}

// GetRequestTimeout parses request_timeout, falling back to two minutes.
func (c *Config) GetRequestTimeout() time.Duration {
	return parseDuration(c.RequestTimeout, 120*time.Second)
}

// GetContextWindow returns context_window, or 10 when unset or not positive.
func (c *Config) GetContextWindow() int {
	if c.ContextWindow <= 0 {
		return 10
	}
	return c.ContextWindow
}

// GetMinClipboardLength returns min_clipboard_length, or 6 when unset.
func (c *Config) GetMinClipboardLength() int {
	if c.MinClipboardLength <= 0 {
		return 6
	}
	return c.MinClipboardLength
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// NewDefaultConfig returns a new Config with default values
func NewDefaultConfig(promptDir string) *Config {
	return &Config{
		Model:              "gemini:gemini-2.0-flash",
		GeminiBaseURL:      "https://generativelanguage.googleapis.com/v1beta",
		GeminiToken:        "$GEMINI_API_KEY", // Default to env var
		OpenAIBaseURL:      "https://api.openai.com/v1",
		OpenAIToken:        "$OPENAI_API_KEY",
		AnthropicBaseURL:   "https://api.anthropic.com/v1",
		AnthropicToken:     "$ANTHROPIC_API_KEY",
		OllamaHost:         "http://localhost:11434",
		PromptDirs:         []string{promptDir},
		ContextWindow:      10,
		PollInterval:       "1s",
		MinClipboardLength: 6,
		ListenAddr:         "127.0.0.1:8000",
		RequestTimeout:     "120s",
		NATSURL:            "",
		NATSToken:          "$NATS_TOKEN",
		LogLevel:           "info",
		KeyringService:     "clippyai",
	}
}

// SetDefaults registers every field of NewDefaultConfig as a viper default.
func SetDefaults(v *viper.Viper, promptDirs []string) {
	d := NewDefaultConfig("")
	v.SetDefault("model", d.Model)
	v.SetDefault("gemini_base_url", d.GeminiBaseURL)
	v.SetDefault("gemini_token", d.GeminiToken)
	v.SetDefault("openai_base_url", d.OpenAIBaseURL)
	v.SetDefault("openai_token", d.OpenAIToken)
	v.SetDefault("anthropic_base_url", d.AnthropicBaseURL)
	v.SetDefault("anthropic_token", d.AnthropicToken)
	v.SetDefault("ollama_host", d.OllamaHost)
	v.SetDefault("prompt_dirs", promptDirs)
	v.SetDefault("context_window", d.ContextWindow)
	v.SetDefault("poll_interval", d.PollInterval)
	v.SetDefault("min_clipboard_length", d.MinClipboardLength)
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("nats_url", d.NATSURL)
	v.SetDefault("nats_token", d.NATSToken)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("keyring_service", d.KeyringService)
}

// LoadConfig loads configuration from the global viper instance
func LoadConfig() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom loads configuration from v, expanding $VAR references in tokens,
// base URLs and the NATS URL, and resolving prompt directories to absolute paths.
func LoadFrom(v *viper.Viper) (*Config, error) {
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	for _, field := range []*string{
		&config.GeminiBaseURL, &config.GeminiToken,
		&config.OpenAIBaseURL, &config.OpenAIToken,
		&config.AnthropicBaseURL, &config.AnthropicToken,
		&config.OllamaHost,
		&config.NATSURL, &config.NATSToken,
	} {
		*field = expandEnvVar(*field)
	}

	// Convert prompt directories to absolute paths
	for i, promptDir := range config.PromptDirs {
		absPath, err := resolvePath(v, promptDir)
		if err != nil {
			return nil, fmt.Errorf("error resolving prompt directory path '%s': %w", promptDir, err)
		}
		config.PromptDirs[i] = absPath
	}

	return config, nil
}
